//go:generate go run go.uber.org/mock/mockgen -source=session.go -destination=../mocks/mock_session_repository.go -package=mocks
package repositories

import (
	"time"

	"chat-sync/domain"
	"chat-sync/errors"

	"github.com/dgraph-io/badger/v4"
)

// sessionGrace keeps expired sessions on disk a little longer than their
// logical lifetime. Expiry is always decided by the caller's clock; the Badger
// TTL only reclaims space.
const sessionGrace = time.Hour

type ISessionRepository interface {
	CreateSession(session domain.Session) error
	// GetSession returns ErrSessionNotFound when no session has this hash,
	// whether or not it is still valid.
	GetSession(tokenHash string) (domain.Session, error)
}

type SessionRepository struct {
	db *badger.DB
}

func NewSessionRepository(db *badger.DB) ISessionRepository {
	return &SessionRepository{db: db}
}

func (s SessionRepository) CreateSession(session domain.Session) error {
	entry := badger.NewEntry(sessionKey(session.TokenHash), encodeSession(session))
	if session.ExpiresAt != nil {
		entry = entry.WithTTL(session.ExpiresAt.Sub(session.CreatedAt) + sessionGrace)
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(entry)
	}); err != nil {
		return errors.Unavailable(err)
	}
	return nil
}

func (s SessionRepository) GetSession(tokenHash string) (domain.Session, error) {
	var session domain.Session
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(tokenHash))
		if err == badger.ErrKeyNotFound {
			return errors.ErrSessionNotFound
		}
		if err != nil {
			return errors.Unavailable(err)
		}
		if err = item.Value(func(val []byte) error {
			session, err = decodeSession(val)
			return err
		}); err != nil {
			return errors.Unavailable(err)
		}
		return nil
	})
	if err != nil {
		return domain.Session{}, err
	}
	session.TokenHash = tokenHash
	return session, nil
}

func encodeSession(session domain.Session) []byte {
	w := recordWriter{}
	w.putInt(sessionFieldUserID, int64(session.UserID))
	w.putTime(sessionFieldCreatedAt, &session.CreatedAt)
	w.putTime(sessionFieldExpiresAt, session.ExpiresAt)
	return w.buf
}

func decodeSession(val []byte) (domain.Session, error) {
	var session domain.Session
	err := walkRecord(val, func(f field) {
		switch f.num {
		case sessionFieldUserID:
			session.UserID = domain.UserID(f.i)
		case sessionFieldCreatedAt:
			session.CreatedAt = *f.asTime()
		case sessionFieldExpiresAt:
			session.ExpiresAt = f.asTime()
		}
	})
	return session, err
}
