package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConversationKey_IsSymmetric(t *testing.T) {
	req := require.New(t)

	ab := NewConversationKey(1, 2)
	ba := NewConversationKey(2, 1)

	req.Equal(ab, ba)
	req.Equal(ab.String(), ba.String())

	seen := map[ConversationKey]int{ab: 1}
	req.Equal(1, seen[ba])
}

func TestConversationKey_PeerAndContains(t *testing.T) {
	req := require.New(t)
	key := NewConversationKey(7, 3)

	low, high := key.Users()
	req.Equal(UserID(3), low)
	req.Equal(UserID(7), high)
	req.True(key.Contains(3))
	req.True(key.Contains(7))
	req.False(key.Contains(5))
	req.Equal(UserID(7), key.Peer(3))
	req.Equal(UserID(3), key.Peer(7))
}

func TestConversationKey_SelfConversation(t *testing.T) {
	req := require.New(t)
	key := NewConversationKey(4, 4)
	req.Equal(UserID(4), key.Peer(4))
	req.True(key.Contains(4))
}

func TestMessage_Conversation(t *testing.T) {
	req := require.New(t)
	m := Message{ID: 1, SenderID: 9, ReceiverID: 2}
	req.Equal(NewConversationKey(2, 9), m.Conversation())
	req.False(m.IsDeleted())
}

func TestLastID(t *testing.T) {
	req := require.New(t)
	req.Equal(MessageID(12), LastID(nil, 12))
	req.Equal(MessageID(5), LastID([]Message{{ID: 3}, {ID: 5}}, 0))
}

func TestSession_ValidAt(t *testing.T) {
	req := require.New(t)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	expiry := now.Add(time.Hour)

	session := Session{ExpiresAt: &expiry}
	req.True(session.ValidAt(now))
	req.True(session.ValidAt(expiry.Add(-time.Nanosecond)))
	req.False(session.ValidAt(expiry))
	req.False(session.ValidAt(expiry.Add(time.Second)))

	forever := Session{}
	req.True(forever.ValidAt(now.Add(100 * 365 * 24 * time.Hour)))
}
