package repositories

import (
	"encoding/binary"
	"fmt"
	"strings"

	"chat-sync/domain"

	"github.com/dgraph-io/badger/v4"
)

// Key layout. Numeric parts are zero padded to 20 digits so that
// lexicographic order in Badger matches numeric order.
//
//	counter:<name>                         -> uint64 big endian
//	user:id:<id>                           -> user record
//	user:handle:<lower(handle)>            -> user id (decimal)
//	session:<sha256 hex>                   -> session record (with TTL)
//	msg:<low user>:<high user>:<msg id>    -> message record
//	msgid:<msg id>                         -> key of the message record
const (
	userCounterKey    = "counter:user"
	messageCounterKey = "counter:msg"

	userIDPrefix     = "user:id:"
	userHandlePrefix = "user:handle:"
	sessionPrefix    = "session:"
	messagePrefix    = "msg:"
	messageIDPrefix  = "msgid:"

	paddedDigits = "%020d"
)

func userKey(id domain.UserID) []byte {
	return []byte(fmt.Sprintf(userIDPrefix+paddedDigits, id))
}

// Handles are unique case-insensitively but keep the casing chosen at creation.
func handleKey(handle string) []byte {
	return []byte(userHandlePrefix + strings.ToLower(handle))
}

func sessionKey(tokenHash string) []byte {
	return []byte(sessionPrefix + tokenHash)
}

func conversationPrefix(key domain.ConversationKey) []byte {
	low, high := key.Users()
	return []byte(fmt.Sprintf(messagePrefix+paddedDigits+":"+paddedDigits+":", low, high))
}

func messageKey(key domain.ConversationKey, id domain.MessageID) []byte {
	return append(conversationPrefix(key), []byte(fmt.Sprintf(paddedDigits, id))...)
}

func messageIDKey(id domain.MessageID) []byte {
	return []byte(fmt.Sprintf(messageIDPrefix+paddedDigits, id))
}

// nextCounter increments a persisted counter inside txn and returns the new value.
// The first value handed out is 1. Callers serialise access to a given counter.
func nextCounter(txn *badger.Txn, key string) (uint64, error) {
	var current uint64
	item, err := txn.Get([]byte(key))
	switch {
	case err == nil:
		if err = item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("corrupted counter %s", key)
			}
			current = binary.BigEndian.Uint64(val)
			return nil
		}); err != nil {
			return 0, err
		}
	case err != badger.ErrKeyNotFound:
		return 0, err
	}

	next := current + 1
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, next)
	if err = txn.Set([]byte(key), buf); err != nil {
		return 0, err
	}
	return next, nil
}
