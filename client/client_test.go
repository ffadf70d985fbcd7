package client_test

import (
	"context"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"chat-sync/client"
	"chat-sync/contract"
	"chat-sync/domain"
	"chat-sync/errors"
	"chat-sync/internal"
	"chat-sync/services"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	app, err := internal.NewApp(internal.Config{
		BadgerInMemory:      true,
		LogLevel:            "ERROR",
		SessionDuration:     time.Hour,
		CredentialPolicy:    services.PolicyTrustOnFirstUse,
		HistoryDefaultLimit: domain.DefaultHistoryLimit,
		AllowedOrigins:      "*",
	}, logs.GetLoggerFromLevel(slog.LevelError))
	require.NoError(t, err)
	srv := httptest.NewServer(app.HTTPHandler)
	t.Cleanup(func() {
		srv.Close()
		_ = app.Close()
	})
	return srv
}

func newClient(t *testing.T, srv *httptest.Server, handle string) (*client.Client, contract.AuthResponse) {
	t.Helper()
	c := client.New(srv.URL, srv.Client(), logs.GetLoggerFromLevel(slog.LevelError))
	auth, err := c.Authenticate(context.Background(), handle, "")
	require.NoError(t, err)
	return c, auth
}

func TestConversation_BootstrapAndPoll(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	srv := newServer(t)
	alice, aliceAuth := newClient(t, srv, "alice")
	bob, bobAuth := newClient(t, srv, "bob")

	_, err := alice.Send(ctx, bobAuth.UserID, "first")
	req.NoError(err)

	view := bob.Conversation(aliceAuth.UserID)
	history, err := view.Bootstrap(ctx, 50)
	req.NoError(err)
	req.Len(history, 1)
	req.Equal(history[0].ID, view.Cursor())

	fresh, err := view.Poll(ctx)
	req.NoError(err)
	req.Empty(fresh, "Re-polling without new messages is a no-op")

	_, err = alice.Send(ctx, bobAuth.UserID, "second")
	req.NoError(err)
	_, err = bob.Send(ctx, aliceAuth.UserID, "third")
	req.NoError(err)

	fresh, err = view.Poll(ctx)
	req.NoError(err)
	req.Len(fresh, 2)
	req.Equal("second", fresh[0].Content)
	req.Equal("third", fresh[1].Content)
	req.Equal(fresh[1].ID, view.Cursor())
	req.Len(view.Messages(), 3)
}

func TestConversation_BootstrapEmpty(t *testing.T) {
	req := require.New(t)
	srv := newServer(t)
	alice, _ := newClient(t, srv, "alice")
	_, bobAuth := newClient(t, srv, "bob")

	view := alice.Conversation(bobAuth.UserID)
	history, err := view.Bootstrap(context.Background(), 0)
	req.NoError(err)
	req.Empty(history)
	req.Equal(int64(0), view.Cursor())
}

func TestConversation_PollDrainsFullPages(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	srv := newServer(t)
	alice, aliceAuth := newClient(t, srv, "alice")
	bob, bobAuth := newClient(t, srv, "bob")

	total := 2*domain.MaxPageSize + 3
	for i := range total {
		_, err := alice.Send(ctx, bobAuth.UserID, fmt.Sprintf("m%d", i))
		req.NoError(err)
	}

	view := bob.Conversation(aliceAuth.UserID)
	fresh, err := view.Poll(ctx)
	req.NoError(err)
	req.Len(fresh, total)
	for i := 1; i < len(fresh); i++ {
		req.Greater(fresh[i].ID, fresh[i-1].ID)
	}
}

func TestConversation_Delete(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	srv := newServer(t)
	alice, aliceAuth := newClient(t, srv, "alice")
	bob, bobAuth := newClient(t, srv, "bob")

	mine := alice.Conversation(bobAuth.UserID)
	sent, err := mine.Send(ctx, "oops")
	req.NoError(err)
	_, err = mine.Poll(ctx)
	req.NoError(err)
	req.Len(mine.Messages(), 1)

	theirs := bob.Conversation(aliceAuth.UserID)
	_, err = theirs.Poll(ctx)
	req.NoError(err)

	req.ErrorIs(theirs.Delete(ctx, sent.ID), errors.ErrNotFoundOrForbidden)

	req.NoError(mine.Delete(ctx, sent.ID))
	req.Empty(mine.Messages())
	req.ErrorIs(mine.Delete(ctx, sent.ID), errors.ErrNotFoundOrForbidden)

	req.Len(theirs.Messages(), 1, "An already fetched message stays in the peer's view")
	fresh, err := theirs.Poll(ctx)
	req.NoError(err)
	req.Empty(fresh)
}

func TestConversation_Run(t *testing.T) {
	req := require.New(t)
	srv := newServer(t)
	alice, aliceAuth := newClient(t, srv, "alice")
	bob, bobAuth := newClient(t, srv, "bob")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var mu sync.Mutex
	var received []contract.Message
	done := make(chan error, 1)
	view := bob.Conversation(aliceAuth.UserID)
	go func() {
		done <- view.Run(ctx, 10*time.Millisecond, func(batch []contract.Message) {
			mu.Lock()
			defer mu.Unlock()
			received = append(received, batch...)
			if len(received) == 3 {
				cancel()
			}
		})
	}()

	for _, content := range []string{"one", "two", "three"} {
		_, err := alice.Send(context.Background(), bobAuth.UserID, content)
		req.NoError(err)
	}

	req.NoError(<-done)
	mu.Lock()
	defer mu.Unlock()
	req.Len(received, 3)
	req.Equal("three", received[2].Content)
}

func TestConversation_RunStopsOnUnauthorized(t *testing.T) {
	req := require.New(t)
	srv := newServer(t)
	c := client.New(srv.URL, srv.Client(), logs.GetLoggerFromLevel(slog.LevelError))
	c.SetToken("expired")

	err := c.Conversation(1).Run(context.Background(), time.Millisecond, nil)
	req.ErrorIs(err, errors.ErrUnauthorized)

	var apiErr *client.APIError
	req.ErrorAs(err, &apiErr)
	req.Equal(401, apiErr.Status)
}

func TestClient_MeAndPeers(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	srv := newServer(t)
	alice, aliceAuth := newClient(t, srv, "alice")
	newClient(t, srv, "bob")

	me, err := alice.Me(ctx)
	req.NoError(err)
	req.Equal(aliceAuth.UserID, me.ID)

	peers, err := alice.Peers(ctx)
	req.NoError(err)
	req.Len(peers, 1)
	req.Equal("bob", peers[0].Handle)

	_, err = alice.History(ctx, 0, 10)
	req.ErrorIs(err, errors.ErrMissingPeer)
}
