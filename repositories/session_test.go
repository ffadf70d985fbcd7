package repositories

import (
	"testing"
	"time"

	"chat-sync/domain"
	"chat-sync/errors"

	"github.com/stretchr/testify/require"
)

func Test_CreateSession_And_Get(t *testing.T) {
	req := require.New(t)
	repository := NewSessionRepository(openTestDB(t))

	created := time.Now().UTC().Truncate(time.Millisecond)
	expires := created.Add(7 * 24 * time.Hour)
	req.NoError(repository.CreateSession(domain.Session{
		TokenHash: "abc",
		UserID:    4,
		CreatedAt: created,
		ExpiresAt: &expires,
	}))

	session, err := repository.GetSession("abc")
	req.NoError(err)
	req.Equal("abc", session.TokenHash)
	req.Equal(domain.UserID(4), session.UserID)
	req.True(created.Equal(session.CreatedAt))
	req.NotNil(session.ExpiresAt)
	req.True(expires.Equal(*session.ExpiresAt))
}

func Test_Session_Without_Expiry(t *testing.T) {
	req := require.New(t)
	repository := NewSessionRepository(openTestDB(t))

	req.NoError(repository.CreateSession(domain.Session{TokenHash: "forever", UserID: 1, CreatedAt: time.Now()}))

	session, err := repository.GetSession("forever")
	req.NoError(err)
	req.Nil(session.ExpiresAt)
}

func Test_GetSession_Not_Found(t *testing.T) {
	req := require.New(t)
	repository := NewSessionRepository(openTestDB(t))

	_, err := repository.GetSession("missing")
	req.ErrorIs(err, errors.ErrSessionNotFound)
}
