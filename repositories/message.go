//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"chat-sync/domain"
	"chat-sync/errors"

	"github.com/dgraph-io/badger/v4"
)

type IMessageRepository interface {
	// StoreMessage assigns the next message id and returns the message as read back from the store.
	StoreMessage(sender, receiver domain.UserID, content string) (domain.Message, error)
	GetMessage(id domain.MessageID) (domain.Message, error)
	// LatestMessages selects the most recent live messages and returns them in ascending id order.
	LatestMessages(key domain.ConversationKey, limit int) ([]domain.Message, error)
	// MessagesSince returns live messages with an id strictly greater than sinceID, ascending.
	MessagesSince(key domain.ConversationKey, sinceID domain.MessageID, limit int) ([]domain.Message, error)
	// SoftDelete flags the message as deleted when actor is its sender and it is still live.
	// It reports whether a message was affected.
	SoftDelete(id domain.MessageID, actor domain.UserID) (bool, error)
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
	// appendMu serialises id assignment with the commit, so a message becomes
	// visible only after every message with a lower id. Pollers that advance
	// their cursor therefore never skip a message committed late.
	appendMu *sync.Mutex
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) IMessageRepository {
	return &MessageRepository{db: db, log: log, appendMu: &sync.Mutex{}}
}

func (m MessageRepository) StoreMessage(sender, receiver domain.UserID, content string) (domain.Message, error) {
	id, err := m.insert(sender, receiver, content)
	if err != nil {
		return domain.Message{}, err
	}
	return m.GetMessage(id)
}

func (m MessageRepository) insert(sender, receiver domain.UserID, content string) (domain.MessageID, error) {
	m.appendMu.Lock()
	defer m.appendMu.Unlock()

	var id domain.MessageID
	err := m.db.Update(func(txn *badger.Txn) error {
		next, err := nextCounter(txn, messageCounterKey)
		if err != nil {
			return err
		}
		id = domain.MessageID(next)

		message := domain.Message{
			ID:         id,
			SenderID:   sender,
			ReceiverID: receiver,
			Content:    content,
			CreatedAt:  time.Now().UTC(),
		}
		key := messageKey(message.Conversation(), id)
		if err = txn.Set(key, encodeMessage(message)); err != nil {
			return err
		}
		return txn.Set(messageIDKey(id), key)
	})
	if err != nil {
		return 0, errors.Unavailable(err)
	}
	return id, nil
}

func (m MessageRepository) GetMessage(id domain.MessageID) (domain.Message, error) {
	var message domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		var err error
		_, message, err = readMessage(txn, id)
		return err
	})
	return message, err
}

// LatestMessages walks the conversation backwards from its newest key.
func (m MessageRepository) LatestMessages(key domain.ConversationKey, limit int) ([]domain.Message, error) {
	messages := make([]domain.Message, 0)
	if limit <= 0 {
		return messages, nil
	}

	prefix := conversationPrefix(key)
	err := m.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// '~' sorts after every digit, so the seek lands on the highest id of the prefix.
		seekKey := append(slices.Clone(prefix), '~')
		for it.Seek(seekKey); it.ValidForPrefix(prefix) && len(messages) < limit; it.Next() {
			message, err := decodeItem(it.Item())
			if err != nil {
				return err
			}
			if message.IsDeleted() {
				continue
			}
			messages = append(messages, message)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Unavailable(err)
	}

	slices.Reverse(messages)
	return messages, nil
}

func (m MessageRepository) MessagesSince(key domain.ConversationKey, sinceID domain.MessageID, limit int) ([]domain.Message, error) {
	messages := make([]domain.Message, 0)
	if limit <= 0 {
		return messages, nil
	}

	prefix := conversationPrefix(key)
	err := m.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		// sinceID may be MaxInt64, so the seek starts on it and the loop skips it.
		for it.Seek(messageKey(key, sinceID)); it.ValidForPrefix(prefix) && len(messages) < limit; it.Next() {
			message, err := decodeItem(it.Item())
			if err != nil {
				return err
			}
			if message.ID <= sinceID || message.IsDeleted() {
				continue
			}
			messages = append(messages, message)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Unavailable(err)
	}
	return messages, nil
}

// SoftDelete relies on Badger's optimistic transactions: when two deletes of
// the same message race, the loser fails with ErrConflict and reports that
// nothing was affected, because the message is already gone for its caller.
func (m MessageRepository) SoftDelete(id domain.MessageID, actor domain.UserID) (bool, error) {
	affected := false
	err := m.db.Update(func(txn *badger.Txn) error {
		key, message, err := readMessage(txn, id)
		if errors.Is(err, errors.ErrMessageNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if message.IsDeleted() || message.SenderID != actor {
			return nil
		}

		now := time.Now().UTC()
		message.DeletedAt = &now
		if err = txn.Set(key, encodeMessage(message)); err != nil {
			return err
		}
		affected = true
		return nil
	})
	if errors.Is(err, badger.ErrConflict) {
		m.log.Debug("concurrent delete lost the race", "message_id", id, "actor", actor)
		return false, nil
	}
	if err != nil {
		return false, commitError(err)
	}
	return affected, nil
}

func readMessage(txn *badger.Txn, id domain.MessageID) ([]byte, domain.Message, error) {
	pointer, err := txn.Get(messageIDKey(id))
	if err == badger.ErrKeyNotFound {
		return nil, domain.Message{}, errors.ErrMessageNotFound
	}
	if err != nil {
		return nil, domain.Message{}, errors.Unavailable(err)
	}
	key, err := pointer.ValueCopy(nil)
	if err != nil {
		return nil, domain.Message{}, errors.Unavailable(err)
	}

	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, domain.Message{}, fmt.Errorf("%w: dangling index for message %d", errors.ErrStoreUnavailable, id)
	}
	if err != nil {
		return nil, domain.Message{}, errors.Unavailable(err)
	}
	message, err := decodeItem(item)
	if err != nil {
		return nil, domain.Message{}, errors.Unavailable(err)
	}
	return key, message, nil
}

func decodeItem(item *badger.Item) (domain.Message, error) {
	var message domain.Message
	err := item.Value(func(val []byte) error {
		var err error
		message, err = decodeMessage(val)
		return err
	})
	return message, err
}

func encodeMessage(message domain.Message) []byte {
	w := recordWriter{}
	w.putInt(messageFieldID, int64(message.ID))
	w.putInt(messageFieldSenderID, int64(message.SenderID))
	w.putInt(messageFieldReceiverID, int64(message.ReceiverID))
	w.putString(messageFieldContent, message.Content)
	w.putTime(messageFieldCreatedAt, &message.CreatedAt)
	w.putTime(messageFieldDeletedAt, message.DeletedAt)
	return w.buf
}

func decodeMessage(val []byte) (domain.Message, error) {
	var message domain.Message
	err := walkRecord(val, func(f field) {
		switch f.num {
		case messageFieldID:
			message.ID = domain.MessageID(f.i)
		case messageFieldSenderID:
			message.SenderID = domain.UserID(f.i)
		case messageFieldReceiverID:
			message.ReceiverID = domain.UserID(f.i)
		case messageFieldContent:
			message.Content = f.s
		case messageFieldCreatedAt:
			message.CreatedAt = *f.asTime()
		case messageFieldDeletedAt:
			message.DeletedAt = f.asTime()
		}
	})
	return message, err
}
