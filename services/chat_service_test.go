package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"chat-sync/domain"
	"chat-sync/errors"
	"chat-sync/mocks"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	alice = domain.Identity{UserID: 1, Handle: "alice", Role: domain.DefaultRole}
	bob   = domain.User{ID: 2, Handle: "bob", Role: domain.DefaultRole}
)

func newChatService(t *testing.T) (IChatService, *mocks.MockIUserRepository, *mocks.MockIMessageRepository) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockIUserRepository(ctrl)
	messages := mocks.NewMockIMessageRepository(ctrl)
	return NewChatService(users, messages, logs.GetLoggerFromLevel(slog.LevelDebug)), users, messages
}

func TestChatService_ListPeers(t *testing.T) {
	req := require.New(t)
	svc, users, _ := newChatService(t)

	users.EXPECT().ListUsers(alice.UserID).Return([]domain.User{bob, {ID: 3, Handle: "carol", PasswordHash: "x"}}, nil)

	peers, err := svc.ListPeers(context.Background(), alice)
	req.NoError(err)
	req.Equal([]domain.Peer{{ID: 2, Handle: "bob"}, {ID: 3, Handle: "carol"}}, peers)
}

func TestChatService_History(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		description string
		limit       int
		wantLimit   int
	}{
		{"Should keep a limit within bounds", 50, 50},
		{"Should raise a limit below one", 0, 1},
		{"Should raise a negative limit", -5, 1},
		{"Should cap a limit above the page size", 1000, domain.MaxPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			req := require.New(t)
			svc, users, messages := newChatService(t)
			key := domain.NewConversationKey(alice.UserID, bob.ID)

			users.EXPECT().GetUserByID(bob.ID).Return(bob, nil)
			messages.EXPECT().LatestMessages(key, tt.wantLimit).Return([]domain.Message{{ID: 1}, {ID: 4}}, nil)

			got, err := svc.History(ctx, alice, bob.ID, tt.limit)
			req.NoError(err)
			req.Len(got, 2)
		})
	}

	t.Run("Should report a missing peer", func(t *testing.T) {
		req := require.New(t)
		svc, users, _ := newChatService(t)

		_, err := svc.History(ctx, alice, 0, 10)
		req.ErrorIs(err, errors.ErrMissingPeer)

		users.EXPECT().GetUserByID(domain.UserID(99)).Return(domain.User{}, errors.ErrUserNotFound)
		_, err = svc.History(ctx, alice, 99, 10)
		req.ErrorIs(err, errors.ErrMissingPeer)
	})

	t.Run("Should use the same conversation from both sides", func(t *testing.T) {
		req := require.New(t)
		svc, users, messages := newChatService(t)
		key := domain.NewConversationKey(alice.UserID, bob.ID)

		users.EXPECT().GetUserByID(bob.ID).Return(bob, nil)
		users.EXPECT().GetUserByID(alice.UserID).Return(domain.User{ID: alice.UserID, Handle: alice.Handle}, nil)
		messages.EXPECT().LatestMessages(key, 10).Return(nil, nil).Times(2)

		_, err := svc.History(ctx, alice, bob.ID, 10)
		req.NoError(err)
		_, err = svc.History(ctx, bob.Identity(), alice.UserID, 10)
		req.NoError(err)
	})
}

func TestChatService_Since(t *testing.T) {
	ctx := context.Background()

	t.Run("Should clamp a negative cursor to zero and cap the batch", func(t *testing.T) {
		req := require.New(t)
		svc, users, messages := newChatService(t)
		key := domain.NewConversationKey(alice.UserID, bob.ID)

		users.EXPECT().GetUserByID(bob.ID).Return(bob, nil)
		messages.EXPECT().MessagesSince(key, domain.MessageID(0), domain.MaxPageSize).Return([]domain.Message{{ID: 1}}, nil)

		got, err := svc.Since(ctx, alice, bob.ID, -3)
		req.NoError(err)
		req.Len(got, 1)
	})

	t.Run("Should pass the cursor through", func(t *testing.T) {
		req := require.New(t)
		svc, users, messages := newChatService(t)

		users.EXPECT().GetUserByID(bob.ID).Return(bob, nil)
		messages.EXPECT().MessagesSince(gomock.Any(), domain.MessageID(42), domain.MaxPageSize).Return(nil, nil)

		got, err := svc.Since(ctx, alice, bob.ID, 42)
		req.NoError(err)
		req.Empty(got)
	})

	t.Run("Should propagate store failures", func(t *testing.T) {
		req := require.New(t)
		svc, users, messages := newChatService(t)

		users.EXPECT().GetUserByID(bob.ID).Return(bob, nil)
		messages.EXPECT().MessagesSince(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.Unavailable(fmt.Errorf("disk failure")))

		_, err := svc.Since(ctx, alice, bob.ID, 0)
		req.ErrorIs(err, errors.ErrStoreUnavailable)
	})
}

func TestChatService_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("Should store trimmed content", func(t *testing.T) {
		req := require.New(t)
		svc, users, messages := newChatService(t)
		stored := domain.Message{ID: 1, SenderID: alice.UserID, ReceiverID: bob.ID, Content: "hi"}

		users.EXPECT().GetUserByID(bob.ID).Return(bob, nil)
		messages.EXPECT().StoreMessage(alice.UserID, bob.ID, "hi").Return(stored, nil)

		got, err := svc.Send(ctx, alice, bob.ID, "  hi \n")
		req.NoError(err)
		req.Equal(stored, got)
	})

	t.Run("Should reject invalid content before any write", func(t *testing.T) {
		req := require.New(t)
		svc, _, messages := newChatService(t)
		messages.EXPECT().StoreMessage(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.Send(ctx, alice, bob.ID, "   \t ")
		req.ErrorIs(err, errors.ErrInvalidInput)
		_, err = svc.Send(ctx, alice, bob.ID, strings.Repeat("a", domain.MaxContentLength+1))
		req.ErrorIs(err, errors.ErrInvalidInput)
	})

	t.Run("Should accept content of exactly the maximum length in characters", func(t *testing.T) {
		req := require.New(t)
		svc, users, messages := newChatService(t)
		content := strings.Repeat("é", domain.MaxContentLength)

		users.EXPECT().GetUserByID(bob.ID).Return(bob, nil)
		messages.EXPECT().StoreMessage(alice.UserID, bob.ID, content).Return(domain.Message{ID: 1, Content: content}, nil)

		_, err := svc.Send(ctx, alice, bob.ID, content)
		req.NoError(err)
	})

	t.Run("Should reject an unknown receiver", func(t *testing.T) {
		req := require.New(t)
		svc, users, _ := newChatService(t)

		_, err := svc.Send(ctx, alice, 0, "hi")
		req.ErrorIs(err, errors.ErrUnknownReceiver)

		users.EXPECT().GetUserByID(domain.UserID(77)).Return(domain.User{}, errors.ErrUserNotFound)
		_, err = svc.Send(ctx, alice, 77, "hi")
		req.ErrorIs(err, errors.ErrUnknownReceiver)
	})
}

func TestChatService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Should delete a message of the caller", func(t *testing.T) {
		req := require.New(t)
		svc, _, messages := newChatService(t)
		messages.EXPECT().SoftDelete(domain.MessageID(5), alice.UserID).Return(true, nil)

		req.NoError(svc.Delete(ctx, alice, 5))
	})

	t.Run("Should conflate absent and foreign messages", func(t *testing.T) {
		req := require.New(t)
		svc, _, messages := newChatService(t)
		messages.EXPECT().SoftDelete(domain.MessageID(5), alice.UserID).Return(false, nil)

		req.ErrorIs(svc.Delete(ctx, alice, 5), errors.ErrNotFoundOrForbidden)
		req.ErrorIs(svc.Delete(ctx, alice, 0), errors.ErrNotFoundOrForbidden)
	})
}
