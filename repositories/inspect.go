package repositories

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Record is a readable view of one Badger entry, used by the inspection tools.
type Record struct {
	Key       string
	Type      string
	Entity    string
	Timestamp string
	Detail    string
}

const (
	detailRunes     = 60
	timestampLayout = "2006-01-02 15:04:05"
)

// DescribeRecord decodes an entry according to the key layout. Session hashes
// are shortened and password hashes are never shown.
func DescribeRecord(key string, val []byte) Record {
	record := Record{Key: key, Type: "RAW", Entity: "-", Timestamp: "-", Detail: fmt.Sprintf("%d bytes", len(val))}

	switch {
	case strings.HasPrefix(key, "counter:"):
		record.Type = "COUNTER"
		if len(val) == 8 {
			record.Detail = strconv.FormatUint(binary.BigEndian.Uint64(val), 10)
		}
	case strings.HasPrefix(key, userIDPrefix):
		record.Type = "USER"
		if user, err := decodeUser(val); err == nil {
			record.Entity = strconv.FormatInt(int64(user.ID), 10)
			record.Timestamp = user.CreatedAt.Format(timestampLayout)
			record.Detail = fmt.Sprintf("%s (%s, password: %t)", user.Handle, user.Role, user.PasswordHash != "")
		}
	case strings.HasPrefix(key, userHandlePrefix):
		record.Type = "HANDLE"
		record.Entity = string(val)
		record.Detail = strings.TrimPrefix(key, userHandlePrefix)
	case strings.HasPrefix(key, sessionPrefix):
		record.Type = "SESSION"
		record.Key = shorten(key, len(sessionPrefix)+8) + "..."
		if session, err := decodeSession(val); err == nil {
			record.Entity = strconv.FormatInt(int64(session.UserID), 10)
			record.Timestamp = session.CreatedAt.Format(timestampLayout)
			record.Detail = "never expires"
			if session.ExpiresAt != nil {
				record.Detail = "expires " + session.ExpiresAt.Format(time.RFC3339)
			}
		}
	case strings.HasPrefix(key, messageIDPrefix):
		record.Type = "MSGINDEX"
		record.Detail = string(val)
	case strings.HasPrefix(key, messagePrefix):
		record.Type = "MESSAGE"
		if message, err := decodeMessage(val); err == nil {
			record.Entity = strconv.FormatInt(int64(message.ID), 10)
			record.Timestamp = message.CreatedAt.Format(timestampLayout)
			record.Detail = fmt.Sprintf("%d -> %d: %s", message.SenderID, message.ReceiverID, shorten(message.Content, detailRunes))
			if message.IsDeleted() {
				record.Detail += " [deleted " + message.DeletedAt.Format(timestampLayout) + "]"
			}
		}
	}
	return record
}

func shorten(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
