package domain

import "fmt"

// ConversationKey identifies the unordered pair of users a message belongs to.
// The pair is normalised on construction so {a,b} and {b,a} compare equal
// and can be used directly as a map key.
type ConversationKey struct {
	low  UserID
	high UserID
}

func NewConversationKey(a, b UserID) ConversationKey {
	if a > b {
		a, b = b, a
	}
	return ConversationKey{low: a, high: b}
}

// Users returns both participants, lowest id first.
func (k ConversationKey) Users() (UserID, UserID) {
	return k.low, k.high
}

// Contains reports whether the user takes part in the conversation.
func (k ConversationKey) Contains(id UserID) bool {
	return k.low == id || k.high == id
}

// Peer returns the other participant seen from the given user.
func (k ConversationKey) Peer(of UserID) UserID {
	if k.low == of {
		return k.high
	}
	return k.low
}

func (k ConversationKey) String() string {
	return fmt.Sprintf("%d:%d", k.low, k.high)
}
