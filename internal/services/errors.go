package services

import (
	"errors"
	"net/http"
)

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrNotMember        = errors.New("not a member of this room")
	ErrAlreadyMember    = errors.New("already a member of this room")
	ErrProposalNotFound = errors.New("proposal not found")
	ErrTitleRequired    = errors.New("title is required")
	ErrNicknameRequired = errors.New("nickname is required")
)

// Envelope codes for the service errors above.
const (
	CodeRoomNotFound     = "ROOM_NOT_FOUND"
	CodeNotMember        = "NOT_A_MEMBER"
	CodeAlreadyMember    = "ALREADY_JOINED"
	CodeProposalNotFound = "PROPOSAL_NOT_FOUND"
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeInternal         = "INTERNAL_ERROR"
)

// Code maps a service error to its envelope code.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return CodeRoomNotFound
	case errors.Is(err, ErrNotMember):
		return CodeNotMember
	case errors.Is(err, ErrAlreadyMember):
		return CodeAlreadyMember
	case errors.Is(err, ErrProposalNotFound):
		return CodeProposalNotFound
	case errors.Is(err, ErrTitleRequired), errors.Is(err, ErrNicknameRequired):
		return CodeInvalidRequest
	default:
		return CodeInternal
	}
}

// Status maps a service error to the HTTP status it is answered with.
func Status(err error) int {
	switch Code(err) {
	case CodeRoomNotFound, CodeProposalNotFound:
		return http.StatusNotFound
	case CodeAlreadyMember:
		return http.StatusConflict
	case CodeNotMember:
		return http.StatusForbidden
	case CodeInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
