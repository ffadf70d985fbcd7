// Package contract holds the wire shapes shared by the HTTP API, the gRPC
// service and the Go client.
package contract

import (
	"time"

	"chat-sync/domain"

	"github.com/samber/lo"
)

type AuthRequest struct {
	Handle string `json:"handle"`
	// Username is accepted as an alias of Handle for older clients.
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// Login returns the handle whichever field carried it.
func (r AuthRequest) Login() string {
	return lo.Ternary(r.Handle != "", r.Handle, r.Username)
}

type AuthResponse struct {
	Token  string `json:"token"`
	UserID int64  `json:"user_id"`
	Handle string `json:"handle"`
}

type MeResponse struct {
	ID     int64  `json:"id"`
	Handle string `json:"handle"`
	Role   string `json:"role"`
}

type Peer struct {
	ID     int64  `json:"id"`
	Handle string `json:"handle"`
}

type UsersResponse struct {
	Users []Peer `json:"users"`
}

type Message struct {
	ID         int64     `json:"id"`
	SenderID   int64     `json:"sender_id"`
	ReceiverID int64     `json:"receiver_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

type MessagesResponse struct {
	Messages []Message `json:"messages"`
}

type HistoryRequest struct {
	With  int64 `json:"with"`
	Limit *int  `json:"limit,omitempty"`
}

type SinceRequest struct {
	With    int64 `json:"with"`
	SinceID int64 `json:"since_id"`
}

type SendRequest struct {
	To      int64  `json:"to"`
	Content string `json:"content"`
}

type SendResponse struct {
	OK        bool    `json:"ok"`
	MessageID int64   `json:"message_id"`
	Message   Message `json:"message"`
}

type DeleteRequest struct {
	ID int64 `json:"id"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

type Empty struct{}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func FromIdentity(identity domain.Identity) MeResponse {
	return MeResponse{ID: int64(identity.UserID), Handle: identity.Handle, Role: identity.Role}
}

func FromPeers(peers []domain.Peer) UsersResponse {
	return UsersResponse{Users: lo.Map(peers, func(p domain.Peer, _ int) Peer {
		return Peer{ID: int64(p.ID), Handle: p.Handle}
	})}
}

func FromMessage(m domain.Message) Message {
	return Message{
		ID:         int64(m.ID),
		SenderID:   int64(m.SenderID),
		ReceiverID: int64(m.ReceiverID),
		Content:    m.Content,
		CreatedAt:  m.CreatedAt,
	}
}

// FromMessages keeps an empty batch encoded as [] rather than null.
func FromMessages(messages []domain.Message) MessagesResponse {
	return MessagesResponse{Messages: lo.Map(messages, func(m domain.Message, _ int) Message {
		return FromMessage(m)
	})}
}
