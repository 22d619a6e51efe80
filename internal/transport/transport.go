// Package transport carries a room's chat messages: a simulated in-process
// transport and a socket transport speaking to the message broker, both
// behind Transport.
package transport

import (
	"context"
	"errors"

	"github.com/adi-253/roomline/internal/models"
)

var (
	ErrNotConnected = errors.New("transport is not connected")
	ErrInvalidRoom  = errors.New("room id must be positive")
	ErrHandshake    = errors.New("broker handshake failed")
)

// Handler receives inbound messages. Handlers run on the transport's own
// goroutine, one message at a time, and must not call Disconnect.
type Handler func(models.ChatMessage)

// Transport is a publish/subscribe channel for one room at a time.
type Transport interface {
	// Connect binds the transport to roomID, dropping any previous room.
	// onConnected, when non-nil, runs every time the connection becomes
	// ready, including after an automatic reconnect.
	Connect(ctx context.Context, roomID int64, onConnected func()) error

	// Disconnect releases the connection and stops background work.
	// Calling it while disconnected is a no-op.
	Disconnect()

	// Publish sends a chat line to the connected room. The message comes
	// back through Subscribe like any other participant's.
	Publish(content, senderNickname string) error

	// Subscribe registers h and returns its idempotent unsubscribe.
	Subscribe(h Handler) (unsubscribe func())

	// Connected reports whether the transport can publish right now.
	Connected() bool
}

// Credentials supplies the bearer token, read on every (re)connect.
type Credentials interface {
	Token() string
}
