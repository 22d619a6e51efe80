package websocket

import (
	"net/http"

	"github.com/adi-253/roomline/internal/auth"
	"github.com/adi-253/roomline/internal/handlers"
	"github.com/adi-253/roomline/internal/models"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// upgrader upgrades HTTP connections to WebSocket
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow connections from any origin (CORS handled by middleware)
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// TokenVerifier checks bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Handler accepts broker connections.
type Handler struct {
	hub      *Hub
	rooms    RoomChecker
	verifier TokenVerifier
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, rooms RoomChecker, verifier TokenVerifier) *Handler {
	return &Handler{hub: hub, rooms: rooms, verifier: verifier}
}

// ServeWS handles WebSocket upgrade requests at /chat.
// The bearer token comes from the Authorization header or the
// access_token query parameter and is checked before upgrading.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := handlers.BearerToken(r)
	if token == "" {
		http.Error(w, "bearer token required", http.StatusUnauthorized)
		return
	}
	claims, err := h.verifier.Verify(token)
	if err != nil {
		http.Error(w, "invalid or expired token", http.StatusUnauthorized)
		return
	}

	// Upgrade HTTP connection to WebSocket
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.hub.logger.Warn().Err(err).Msg("upgrade failed")
		return
	}

	user := models.Participant{UserID: claims.UserID, Nickname: claims.Nickname}
	client := NewClient(h.hub, h.rooms, conn, uuid.NewString(), user)
	if !h.hub.Register(client) {
		conn.Close()
		return
	}
	client.logger.Info().Int64("user_id", user.UserID).Str("nickname", user.Nickname).Msg("broker connection opened")

	// Start read/write pumps in separate goroutines
	go client.WritePump()
	go client.ReadPump()
}
