package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/adi-253/roomline/internal/models"
	"github.com/adi-253/roomline/internal/services"
)

// RoomHandler contains HTTP handlers for the discussion-room directory.
// Every route expects Authenticate to have run first.
type RoomHandler struct {
	roomService *services.RoomService
}

// NewRoomHandler creates a new RoomHandler instance.
func NewRoomHandler(roomService *services.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

// ListRooms handles GET /api/discussion-rooms/retrieveTotal
func (h *RoomHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)
	rooms := h.roomService.ListRooms(page, size, r.URL.Query().Get("region"))
	writeSuccess(w, "rooms retrieved", rooms)
}

// MyRooms handles GET /api/discussion-rooms/retrieveMyJoined
func (h *RoomHandler) MyRooms(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	page, size := pageParams(r)
	writeSuccess(w, "joined rooms retrieved", h.roomService.MyRooms(user.UserID, page, size))
}

// CreateRoom handles POST /api/discussion-rooms/create
// The caller becomes the first member of the new room.
func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	user, _ := UserFromContext(r.Context())
	room, err := h.roomService.CreateRoom(user, req)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeSuccess(w, "room created", room)
}

// JoinRoom handles POST /api/discussion-rooms/{id}/join
func (h *RoomHandler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	roomID, ok := idParam(r, "id")
	if !ok {
		writeBadRequest(w, "invalid room id")
		return
	}

	user, _ := UserFromContext(r.Context())
	members, err := h.roomService.JoinRoom(roomID, user)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeSuccess(w, "joined room", models.JoinRoomResponse{Members: members})
}

// GetRoom handles GET /api/discussion-rooms/{id}
// Returns the title, current proposal, history and participants.
func (h *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	roomID, ok := idParam(r, "id")
	if !ok {
		writeBadRequest(w, "invalid room id")
		return
	}

	details, err := h.roomService.RoomDetails(roomID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeSuccess(w, "room retrieved", details)
}

// LeaveRoom handles DELETE /api/discussion-rooms/{id}/leave
func (h *RoomHandler) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	roomID, ok := idParam(r, "id")
	if !ok {
		writeBadRequest(w, "invalid room id")
		return
	}

	user, _ := UserFromContext(r.Context())
	if err := h.roomService.LeaveRoom(roomID, user.UserID); err != nil {
		writeFailure(w, err)
		return
	}
	writeSuccess(w, "left room", nil)
}
