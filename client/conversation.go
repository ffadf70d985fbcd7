package client

import (
	"context"
	"slices"
	"sync"
	"time"

	"chat-sync/contract"
	"chat-sync/domain"
	"chat-sync/errors"
)

// Conversation is the local view of one conversation, kept in ascending id
// order. The cursor is the highest id consumed so far; it only moves forward.
//
// Deletions are not pushed: a message deleted by the peer after it was
// fetched stays in the view. Deletions made through this Conversation are
// applied locally.
type Conversation struct {
	client *Client
	peer   int64

	mu       sync.Mutex
	cursor   int64
	messages []contract.Message
}

func (c *Client) Conversation(peer int64) *Conversation {
	return &Conversation{client: c, peer: peer}
}

// Bootstrap replaces the local view with the latest history page and sets
// the cursor to its highest id, or 0 when the conversation is empty.
func (v *Conversation) Bootstrap(ctx context.Context, limit int) ([]contract.Message, error) {
	history, err := v.client.History(ctx, v.peer, limit)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.messages = slices.Clone(history)
	v.cursor = 0
	if len(history) > 0 {
		v.cursor = history[len(history)-1].ID
	}
	return history, nil
}

// Poll fetches every message newer than the cursor, re-polling at once while
// the server returns full pages, and appends them to the view.
// It returns the new messages in ascending id order.
func (v *Conversation) Poll(ctx context.Context) ([]contract.Message, error) {
	var fresh []contract.Message
	for {
		cursor := v.Cursor()
		batch, err := v.client.Since(ctx, v.peer, cursor)
		if err != nil {
			return fresh, err
		}
		if len(batch) == 0 {
			return fresh, nil
		}

		v.mu.Lock()
		for _, m := range batch {
			// A concurrent Poll may already have consumed part of the batch.
			if m.ID > v.cursor {
				v.messages = append(v.messages, m)
				v.cursor = m.ID
				fresh = append(fresh, m)
			}
		}
		v.mu.Unlock()

		if len(batch) < domain.MaxPageSize {
			return fresh, nil
		}
	}
}

// Run polls every interval until ctx is done, handing each non-empty batch
// to onBatch. Transient failures are logged and retried on the next tick;
// an expired or revoked session stops the loop.
func (v *Conversation) Run(ctx context.Context, interval time.Duration, onBatch func([]contract.Message)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		batch, err := v.Poll(ctx)
		if len(batch) > 0 && onBatch != nil {
			onBatch(batch)
		}
		if err != nil {
			if errors.Is(err, errors.ErrUnauthorized) || errors.Is(err, errors.ErrMissingPeer) {
				return err
			}
			if ctx.Err() == nil {
				v.client.log.Warn("Poll failed", "peer_id", v.peer, "cursor", v.Cursor(), "error", err)
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Send posts a message. It does not touch the cursor: the message comes back
// through Poll like any other, so no lower id from the peer can be skipped.
func (v *Conversation) Send(ctx context.Context, content string) (contract.Message, error) {
	return v.client.Send(ctx, v.peer, content)
}

// Delete soft-deletes one of our messages and drops it from the local view.
func (v *Conversation) Delete(ctx context.Context, id int64) error {
	if err := v.client.Delete(ctx, id); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.messages = slices.DeleteFunc(v.messages, func(m contract.Message) bool { return m.ID == id })
	return nil
}

func (v *Conversation) Cursor() int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cursor
}

// Messages returns a copy of the local view.
func (v *Conversation) Messages() []contract.Message {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.messages)
}

func (v *Conversation) Peer() int64 {
	return v.peer
}
