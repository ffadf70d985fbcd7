package services

import (
	"fmt"
	"log/slog"
	"time"

	"chat-sync/auth"
	"chat-sync/domain"
	"chat-sync/errors"
	"chat-sync/repositories"
)

// DefaultSessionDuration is the validity window of a freshly issued token.
const DefaultSessionDuration = 7 * 24 * time.Hour

// TokenStore issues opaque bearer tokens and resolves them back to users.
// Only the SHA-256 digest of a token is ever persisted.
type TokenStore struct {
	sessions repositories.ISessionRepository
	users    repositories.IUserRepository
	log      *slog.Logger
	ttl      time.Duration
	now      func() time.Time
}

// NewTokenStore builds a store whose sessions last ttl. A ttl <= 0 issues sessions that never expire.
func NewTokenStore(sessions repositories.ISessionRepository, users repositories.IUserRepository, log *slog.Logger, ttl time.Duration) *TokenStore {
	return &TokenStore{sessions: sessions, users: users, log: log, ttl: ttl, now: time.Now}
}

// WithClock replaces the time source, used to check expiry deterministically.
func (s *TokenStore) WithClock(now func() time.Time) *TokenStore {
	s.now = now
	return s
}

// Issue creates a session for the user and returns the raw token.
// The raw value cannot be recovered afterwards.
func (s *TokenStore) Issue(userID domain.UserID) (string, error) {
	raw, err := auth.GenerateToken()
	if err != nil {
		return "", fmt.Errorf("%w: %w", errors.ErrTokenGeneration, err)
	}

	createdAt := s.now().UTC()
	session := domain.Session{
		TokenHash: auth.HashToken(raw),
		UserID:    userID,
		CreatedAt: createdAt,
	}
	if s.ttl > 0 {
		expiresAt := createdAt.Add(s.ttl)
		session.ExpiresAt = &expiresAt
	}

	if err := s.sessions.CreateSession(session); err != nil {
		s.log.Error("Unable to persist session", "user_id", userID, "error", err)
		return "", err
	}
	return raw, nil
}

// Resolve returns the identity owning a valid session for raw.
// Empty, unknown and expired tokens all report false without error;
// an error is only returned when the store itself fails.
func (s *TokenStore) Resolve(raw string) (domain.Identity, bool, error) {
	if raw == "" {
		return domain.Identity{}, false, nil
	}

	session, err := s.sessions.GetSession(auth.HashToken(raw))
	switch {
	case errors.Is(err, errors.ErrSessionNotFound):
		return domain.Identity{}, false, nil
	case err != nil:
		return domain.Identity{}, false, err
	}

	if !session.ValidAt(s.now()) {
		return domain.Identity{}, false, nil
	}

	user, err := s.users.GetUserByID(session.UserID)
	switch {
	case errors.Is(err, errors.ErrUserNotFound):
		s.log.Warn("Session references an unknown user", "user_id", session.UserID)
		return domain.Identity{}, false, nil
	case err != nil:
		return domain.Identity{}, false, err
	}
	return user.Identity(), true, nil
}
