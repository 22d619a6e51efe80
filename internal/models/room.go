package models

import "time"

// Access levels a discussion room can be created with.
const (
	AccessPublic  = "PUBLIC"
	AccessPrivate = "PRIVATE"
)

// Room is a topical discussion room as listed by the room directory.
// It is an immutable snapshot; the session layer never mutates it.
type Room struct {
	// RoomID is the stable identifier of the room
	RoomID int64 `json:"roomId"`

	// Title is the display name of the room
	Title string `json:"title"`

	// Region is the region code the room belongs to (e.g. "BUCHEON")
	Region string `json:"region"`

	// ParticipantCount is the number of members at the time of the fetch
	ParticipantCount int `json:"participantCount"`

	// Description is an optional longer summary shown before joining
	Description string `json:"description,omitempty"`

	// AccessLevel is PUBLIC or PRIVATE
	AccessLevel string `json:"accessLevel,omitempty"`
}

// Participant is a member of a room as reported by the room-detail fetch.
type Participant struct {
	UserID   int64  `json:"userId"`
	Nickname string `json:"nickname"`
}

// RoomDetails is the one-shot snapshot used to open a session: title,
// the current proposal, the message history and the participant list.
type RoomDetails struct {
	Title        string        `json:"title"`
	Proposal     *Proposal     `json:"proposal,omitempty"`
	Messages     []ChatMessage `json:"messages"`
	Participants []Participant `json:"participants"`
}

// CreateRoomRequest is the request body for creating a new room
type CreateRoomRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Region      string `json:"region"`
	AccessLevel string `json:"accessLevel"`
}

// JoinRoomResponse is the payload returned when joining a room
type JoinRoomResponse struct {
	Members []Participant `json:"members"`
}

// Proposal status values.
const (
	ProposalPendingConsent = "PENDING_CONSENT"
	ProposalApproved       = "APPROVED"
	ProposalRejected       = "REJECTED"
)

// Proposal is the document co-authored inside a room.
type Proposal struct {
	ProposalID int64      `json:"proposalId"`
	RoomID     int64      `json:"roomId,omitempty"`
	Status     string     `json:"status"`
	Title      string     `json:"title,omitempty"`
	Content    string     `json:"content,omitempty"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

// ProposalPayload is the request body for creating a proposal
type ProposalPayload struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	RoomID  int64  `json:"roomId"`
}

// ProposalPatch is the request body for a partial proposal update.
// Nil fields are left untouched.
type ProposalPatch struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}
