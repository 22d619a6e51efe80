package websocket

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/adi-253/roomline/internal/models"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next frame, ping or pong from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 64 * 1024

	sendBuffer = 256
)

// RoomChecker reports whether a room exists.
type RoomChecker interface {
	Exists(roomID int64) bool
}

// Client represents a single authenticated broker connection.
type Client struct {
	hub   *Hub
	rooms RoomChecker

	// WebSocket connection
	conn *websocket.Conn

	// Buffered channel of outbound frames
	send chan []byte

	closed    chan struct{}
	closeOnce sync.Once

	// ID identifies the connection in logs
	ID string

	// User is the caller the bearer token was issued to
	User models.Participant

	logger zerolog.Logger
}

// NewClient creates a new Client instance
func NewClient(hub *Hub, rooms RoomChecker, conn *websocket.Conn, id string, user models.Participant) *Client {
	return &Client{
		hub:    hub,
		rooms:  rooms,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		closed: make(chan struct{}),
		ID:     id,
		User:   user,
		logger: hub.logger.With().Str("conn_id", id).Logger(),
	}
}

// enqueue queues a frame without blocking. It reports false when the
// client is closed or its buffer is full.
func (c *Client) enqueue(frame []byte) bool {
	select {
	case <-c.closed:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.closed) })
}

func (c *Client) reply(frame models.Frame) bool {
	data, err := json.Marshal(frame)
	if err != nil {
		return false
	}
	return c.enqueue(data)
}

// fail sends an ERROR frame and closes the connection after it is flushed.
func (c *Client) fail(message string) {
	c.logger.Debug().Str("reason", message).Msg("rejecting frame")
	c.reply(models.Frame{Command: models.CommandError, Message: message})
	c.close()
}

// ReadPump pumps frames from the WebSocket connection to the hub.
// This runs in its own goroutine per client.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.close()
	}()

	alive := func() {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
	}

	c.conn.SetReadLimit(maxMessageSize)
	alive()
	c.conn.SetPongHandler(func(string) error {
		alive()
		return nil
	})
	c.conn.SetPingHandler(func(data string) error {
		alive()
		err := c.conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeWait))
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		return err
	})

	connected := false
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Debug().Err(err).Msg("read error")
			}
			return
		}
		alive()

		var frame models.Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.fail("malformed frame")
			return
		}

		if !connected && frame.Command != models.CommandConnect {
			c.fail("CONNECT required")
			return
		}

		switch frame.Command {
		case models.CommandConnect:
			connected = true
			if !c.reply(models.Frame{Command: models.CommandConnected}) {
				return
			}

		case models.CommandSubscribe:
			roomID, ok := models.ParseTopicDestination(frame.Destination)
			if !ok || !c.rooms.Exists(roomID) {
				c.fail("unknown destination " + frame.Destination)
				return
			}
			c.hub.Subscribe(c, roomID)

		case models.CommandSend:
			if !c.handleSend(frame) {
				return
			}

		case models.CommandDisconnect:
			return

		default:
			c.fail("unsupported command " + frame.Command)
			return
		}
	}
}

func (c *Client) handleSend(frame models.Frame) bool {
	roomID, ok := models.ParseSendDestination(frame.Destination)
	if !ok || !c.rooms.Exists(roomID) {
		c.fail("unknown destination " + frame.Destination)
		return false
	}

	var body models.OutboundMessage
	if err := json.Unmarshal(frame.Body, &body); err != nil {
		c.fail("malformed message body")
		return false
	}
	content := strings.TrimSpace(body.Content)
	if content == "" {
		c.fail("empty message")
		return false
	}

	sender := c.User
	if nickname := strings.TrimSpace(body.SenderNickname); nickname != "" {
		sender.Nickname = nickname
	}
	c.hub.Publish(roomID, sender, content)
	return true
}

// WritePump pumps frames from the hub to the WebSocket connection.
// This runs in its own goroutine per client.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-c.closed:
			c.flush()
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// flush writes whatever is still queued.
func (c *Client) flush() {
	for {
		select {
		case frame := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		default:
			return
		}
	}
}
