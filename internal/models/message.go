package models

import "time"

// ChatMessage is a single chat line in a room.
// Once appended to a session's log it is never edited or removed.
type ChatMessage struct {
	// MessageID is unique within a room; server-assigned, or a local
	// monotonic counter for simulated messages
	MessageID int64 `json:"messageId"`

	// SenderNickname is the display name of the sender
	SenderNickname string `json:"senderNickname"`

	// Content is untrusted user text; it is only ever displayed
	Content string `json:"content"`

	// SentAt is when the message was accepted
	SentAt time.Time `json:"sentAt"`

	// UserID is the sender's user id, when known
	UserID *int64 `json:"userId,omitempty"`
}

// OutboundMessage is the body published to a room's send destination.
type OutboundMessage struct {
	Content        string `json:"content"`
	SenderNickname string `json:"senderNickname"`
}

// UserInfo identifies the signed-in user.
type UserInfo struct {
	UserID   int64  `json:"userId"`
	Nickname string `json:"nickname"`
	Email    string `json:"email,omitempty"`
}

// SignInRequest is the dev backend sign-in body
type SignInRequest struct {
	Nickname string `json:"nickname"`
}

// SignInResponse carries the issued bearer token and the user it identifies
type SignInResponse struct {
	AccessToken string   `json:"accessToken"`
	User        UserInfo `json:"user"`
}
