package services

import (
	"context"
	"log/slog"

	"chat-sync/auth"
	"chat-sync/domain"
	"chat-sync/errors"
	"chat-sync/observability"
	"chat-sync/repositories"

	"github.com/samber/lo"
)

// IChatService exposes the conversation operations available to an authenticated caller.
// All message reads are scoped by the conversation key of caller and peer.
type IChatService interface {
	ListPeers(ctx context.Context, caller domain.Identity) ([]domain.Peer, error)
	History(ctx context.Context, caller domain.Identity, peer domain.UserID, limit int) ([]domain.Message, error)
	Since(ctx context.Context, caller domain.Identity, peer domain.UserID, sinceID domain.MessageID) ([]domain.Message, error)
	Send(ctx context.Context, caller domain.Identity, to domain.UserID, content string) (domain.Message, error)
	Delete(ctx context.Context, caller domain.Identity, id domain.MessageID) error
}

type ChatService struct {
	users    repositories.IUserRepository
	messages repositories.IMessageRepository
	log      *slog.Logger
}

func NewChatService(users repositories.IUserRepository, messages repositories.IMessageRepository, log *slog.Logger) IChatService {
	return &ChatService{users: users, messages: messages, log: log}
}

func (s *ChatService) ListPeers(ctx context.Context, caller domain.Identity) ([]domain.Peer, error) {
	users, err := s.users.ListUsers(caller.UserID)
	if err != nil {
		s.log.ErrorContext(ctx, "Unable to list users", "user_id", caller.UserID, "error", err)
		return nil, err
	}
	return lo.Map(users, func(u domain.User, _ int) domain.Peer {
		return domain.Peer{ID: u.ID, Handle: u.Handle}
	}), nil
}

// History returns the most recent messages of the conversation in ascending id order.
// The limit is clamped into [1, MaxPageSize].
func (s *ChatService) History(ctx context.Context, caller domain.Identity, peer domain.UserID, limit int) ([]domain.Message, error) {
	key, err := s.conversation(caller, peer)
	if err != nil {
		return nil, err
	}

	messages, err := s.messages.LatestMessages(key, lo.Clamp(limit, 1, domain.MaxPageSize))
	if err != nil {
		s.log.ErrorContext(ctx, "Unable to fetch history", "user_id", caller.UserID, "peer_id", peer, "error", err)
		return nil, err
	}
	observability.SyncBatchSize.WithLabelValues("history").Observe(float64(len(messages)))
	return messages, nil
}

// Since returns at most MaxPageSize messages with an id greater than sinceID.
// Callers drain larger backlogs by polling again from the last id returned.
func (s *ChatService) Since(ctx context.Context, caller domain.Identity, peer domain.UserID, sinceID domain.MessageID) ([]domain.Message, error) {
	key, err := s.conversation(caller, peer)
	if err != nil {
		return nil, err
	}

	messages, err := s.messages.MessagesSince(key, max(sinceID, 0), domain.MaxPageSize)
	if err != nil {
		s.log.ErrorContext(ctx, "Unable to fetch new messages", "user_id", caller.UserID, "peer_id", peer, "since_id", sinceID, "error", err)
		return nil, err
	}
	observability.SyncBatchSize.WithLabelValues("since").Observe(float64(len(messages)))
	return messages, nil
}

// Send validates the content before touching the store, then appends the message.
// Retried sends are not deduplicated.
func (s *ChatService) Send(ctx context.Context, caller domain.Identity, to domain.UserID, content string) (domain.Message, error) {
	content, err := auth.NormalizeContent(content)
	if err != nil {
		return domain.Message{}, err
	}
	if to <= 0 {
		return domain.Message{}, errors.ErrUnknownReceiver
	}

	if _, err := s.users.GetUserByID(to); err != nil {
		if errors.Is(err, errors.ErrUserNotFound) {
			return domain.Message{}, errors.ErrUnknownReceiver
		}
		s.log.ErrorContext(ctx, "Unable to check receiver", "peer_id", to, "error", err)
		return domain.Message{}, err
	}

	message, err := s.messages.StoreMessage(caller.UserID, to, content)
	if err != nil {
		s.log.ErrorContext(ctx, "Unable to store message", "user_id", caller.UserID, "peer_id", to, "error", err)
		return domain.Message{}, err
	}
	observability.MessagesSent.Inc()
	return message, nil
}

// Delete soft-deletes a message sent by the caller. Absent, foreign and
// already deleted messages are reported identically.
func (s *ChatService) Delete(ctx context.Context, caller domain.Identity, id domain.MessageID) error {
	if id <= 0 {
		return errors.ErrNotFoundOrForbidden
	}

	affected, err := s.messages.SoftDelete(id, caller.UserID)
	if err != nil {
		s.log.ErrorContext(ctx, "Unable to delete message", "user_id", caller.UserID, "message_id", id, "error", err)
		return err
	}
	if !affected {
		return errors.ErrNotFoundOrForbidden
	}
	observability.MessagesDeleted.Inc()
	return nil
}

func (s *ChatService) conversation(caller domain.Identity, peer domain.UserID) (domain.ConversationKey, error) {
	if peer <= 0 {
		return domain.ConversationKey{}, errors.ErrMissingPeer
	}
	if _, err := s.users.GetUserByID(peer); err != nil {
		if errors.Is(err, errors.ErrUserNotFound) {
			return domain.ConversationKey{}, errors.ErrMissingPeer
		}
		return domain.ConversationKey{}, err
	}
	return domain.NewConversationKey(caller.UserID, peer), nil
}
