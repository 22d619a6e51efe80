package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/adi-253/roomline/internal/models"
	"github.com/adi-253/roomline/internal/services"
)

// ProposalHandler serves the proposal endpoints.
type ProposalHandler struct {
	proposals *services.ProposalService
	rooms     *services.RoomService
}

func NewProposalHandler(proposals *services.ProposalService, rooms *services.RoomService) *ProposalHandler {
	return &ProposalHandler{proposals: proposals, rooms: rooms}
}

// Create handles POST /api/proposals
func (h *ProposalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload models.ProposalPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if !h.rooms.Exists(payload.RoomID) {
		writeFailure(w, services.ErrRoomNotFound)
		return
	}

	proposal, err := h.proposals.Create(payload)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeSuccess(w, "proposal created", proposal)
}

// Update handles PATCH /api/proposals/{id}
func (h *ProposalHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeBadRequest(w, "invalid proposal id")
		return
	}
	var patch models.ProposalPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	proposal, err := h.proposals.Update(id, patch)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeSuccess(w, "proposal updated", proposal)
}

// Get handles GET /api/proposals/{id}
func (h *ProposalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeBadRequest(w, "invalid proposal id")
		return
	}

	proposal, err := h.proposals.Get(id)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeSuccess(w, "proposal retrieved", proposal)
}
