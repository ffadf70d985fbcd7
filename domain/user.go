package domain

import "time"

const DefaultRole = "user"

type UserID int64

// User is a registered handle. Users are never deleted.
type User struct {
	ID     UserID
	Handle string
	// PasswordHash is empty for users created by the trust-on-first-use policy.
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// Identity is what a resolved session exposes to the rest of the system.
type Identity struct {
	UserID UserID
	Handle string
	Role   string
}

func (u User) Identity() Identity {
	return Identity{UserID: u.ID, Handle: u.Handle, Role: u.Role}
}

// Peer is the public view of another user.
type Peer struct {
	ID     UserID
	Handle string
}

// Session is the persisted half of a bearer token: only its hash is kept.
type Session struct {
	TokenHash string
	UserID    UserID
	CreatedAt time.Time
	// ExpiresAt nil means the session never expires.
	ExpiresAt *time.Time
}

// ValidAt reports whether the session can still be used at the given instant.
// A session is valid strictly before its expiry.
func (s Session) ValidAt(now time.Time) bool {
	return s.ExpiresAt == nil || now.Before(*s.ExpiresAt)
}
