//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"strconv"
	"sync"
	"time"

	"chat-sync/domain"
	"chat-sync/errors"

	"github.com/dgraph-io/badger/v4"
)

type IUserRepository interface {
	CreateUser(handle, passwordHash string) (domain.User, error)
	GetUserByHandle(handle string) (domain.User, error)
	GetUserByID(id domain.UserID) (domain.User, error)
	// ListUsers returns every user but the excluded one, ordered by handle.
	ListUsers(exclude domain.UserID) ([]domain.User, error)
}

type UserRepository struct {
	db *badger.DB
	// mu serialises user creation so the id counter and the handle index move together.
	mu *sync.Mutex
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db, mu: &sync.Mutex{}}
}

// CreateUser persists a new user with the next user id.
// It fails with ErrUserAlreadyExists when the handle is taken.
func (u UserRepository) CreateUser(handle, passwordHash string) (domain.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	user := domain.User{
		Handle:       handle,
		PasswordHash: passwordHash,
		Role:         domain.DefaultRole,
		CreatedAt:    time.Now().UTC(),
	}

	err := u.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(handleKey(handle)); err == nil {
			return errors.ErrUserAlreadyExists
		} else if err != badger.ErrKeyNotFound {
			return errors.Unavailable(err)
		}

		next, err := nextCounter(txn, userCounterKey)
		if err != nil {
			return errors.Unavailable(err)
		}
		user.ID = domain.UserID(next)

		if err = txn.Set(userKey(user.ID), encodeUser(user)); err != nil {
			return errors.Unavailable(err)
		}
		if err = txn.Set(handleKey(handle), []byte(strconv.FormatInt(int64(user.ID), 10))); err != nil {
			return errors.Unavailable(err)
		}
		return nil
	})
	if err != nil {
		return domain.User{}, commitError(err)
	}
	return user, nil
}

func (u UserRepository) GetUserByHandle(handle string) (domain.User, error) {
	var user domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		id, err := lookupHandle(txn, handle)
		if err != nil {
			return err
		}
		user, err = readUser(txn, id)
		return err
	})
	return user, err
}

func (u UserRepository) GetUserByID(id domain.UserID) (domain.User, error) {
	var user domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = readUser(txn, id)
		return err
	})
	return user, err
}

// ListUsers walks the handle index, which Badger keeps sorted.
func (u UserRepository) ListUsers(exclude domain.UserID) ([]domain.User, error) {
	users := make([]domain.User, 0)
	err := u.db.View(func(txn *badger.Txn) error {
		prefix := []byte(userHandlePrefix)
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var id domain.UserID
			if err := it.Item().Value(func(val []byte) error {
				parsed, err := strconv.ParseInt(string(val), 10, 64)
				id = domain.UserID(parsed)
				return err
			}); err != nil {
				return errors.Unavailable(err)
			}
			if id == exclude {
				continue
			}
			user, err := readUser(txn, id)
			if err != nil {
				return err
			}
			users = append(users, user)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

func lookupHandle(txn *badger.Txn, handle string) (domain.UserID, error) {
	item, err := txn.Get(handleKey(handle))
	if err == badger.ErrKeyNotFound {
		return 0, errors.ErrUserNotFound
	}
	if err != nil {
		return 0, errors.Unavailable(err)
	}
	var id int64
	err = item.Value(func(val []byte) error {
		id, err = strconv.ParseInt(string(val), 10, 64)
		return err
	})
	if err != nil {
		return 0, errors.Unavailable(err)
	}
	return domain.UserID(id), nil
}

func readUser(txn *badger.Txn, id domain.UserID) (domain.User, error) {
	item, err := txn.Get(userKey(id))
	if err == badger.ErrKeyNotFound {
		return domain.User{}, errors.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, errors.Unavailable(err)
	}
	var user domain.User
	if err = item.Value(func(val []byte) error {
		user, err = decodeUser(val)
		return err
	}); err != nil {
		return domain.User{}, errors.Unavailable(err)
	}
	return user, nil
}

// commitError keeps domain errors returned from inside a transaction and
// marks everything else, including commit failures, as a storage failure.
func commitError(err error) error {
	if errors.Is(err, errors.ErrStoreUnavailable) ||
		errors.Is(err, errors.ErrUserAlreadyExists) ||
		errors.Is(err, errors.ErrUserNotFound) ||
		errors.Is(err, errors.ErrMessageNotFound) {
		return err
	}
	return errors.Unavailable(err)
}

func encodeUser(user domain.User) []byte {
	w := recordWriter{}
	w.putInt(userFieldID, int64(user.ID))
	w.putString(userFieldHandle, user.Handle)
	w.putString(userFieldPasswordHash, user.PasswordHash)
	w.putString(userFieldRole, user.Role)
	w.putTime(userFieldCreatedAt, &user.CreatedAt)
	return w.buf
}

func decodeUser(val []byte) (domain.User, error) {
	var user domain.User
	err := walkRecord(val, func(f field) {
		switch f.num {
		case userFieldID:
			user.ID = domain.UserID(f.i)
		case userFieldHandle:
			user.Handle = f.s
		case userFieldPasswordHash:
			user.PasswordHash = f.s
		case userFieldRole:
			user.Role = f.s
		case userFieldCreatedAt:
			user.CreatedAt = *f.asTime()
		}
	})
	return user, err
}
