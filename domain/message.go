// Package domain contains core concepts of the chat system.
// This file defines Message entities and related rules.
// Messages are immutable except for their single soft-delete transition.
package domain

import (
	"time"
)

const (
	// MaxContentLength is measured in characters (runes), not bytes.
	MaxContentLength = 2000
	// MaxPageSize bounds both history pages and incremental sync batches.
	MaxPageSize = 200
	// DefaultHistoryLimit is used when a caller does not ask for a page size.
	DefaultHistoryLimit = 50
)

// MessageID is assigned by the store and strictly increases.
// It is the only ordering key of a conversation.
type MessageID int64

// Message represents a direct message between two users.
type Message struct {
	ID         MessageID
	SenderID   UserID
	ReceiverID UserID
	Content    string
	// CreatedAt is informational: two messages may share a timestamp.
	CreatedAt time.Time
	DeletedAt *time.Time
}

// Conversation returns the key of the conversation this message belongs to.
func (m Message) Conversation() ConversationKey {
	return NewConversationKey(m.SenderID, m.ReceiverID)
}

// IsDeleted reports whether the message has been soft-deleted.
func (m Message) IsDeleted() bool {
	return m.DeletedAt != nil
}

// LastID returns the highest id of an ascending batch, or fallback when the batch is empty.
func LastID(messages []Message, fallback MessageID) MessageID {
	if len(messages) == 0 {
		return fallback
	}
	return messages[len(messages)-1].ID
}
