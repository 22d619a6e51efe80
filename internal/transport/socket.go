package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/adi-253/roomline/internal/failure"
	"github.com/adi-253/roomline/internal/models"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a frame to the broker
	writeWait = 10 * time.Second

	// Maximum frame size accepted from the broker
	maxFrameSize = 64 * 1024

	// Outbound frames buffered per connection
	sendBufferSize = 64

	defaultReconnectDelay   = 5 * time.Second
	defaultHeartbeat        = 4 * time.Second
	defaultHandshakeTimeout = 10 * time.Second
)

var errSendBufferFull = errors.New("send buffer full")

type SocketConfig struct {
	// URL is the broker's WebSocket endpoint
	URL         string
	Credentials Credentials

	// ReconnectDelay is the fixed pause between connection attempts
	ReconnectDelay time.Duration
	// HeartbeatIncoming is how often the broker is expected to show
	// liveness; silence for twice this long drops the connection
	HeartbeatIncoming time.Duration
	// HeartbeatOutgoing is the ping period towards the broker
	HeartbeatOutgoing time.Duration
	HandshakeTimeout  time.Duration

	Dialer *websocket.Dialer
	Logger *zerolog.Logger
}

// Socket speaks the broker frame protocol over a WebSocket. Once connected
// it keeps reconnecting with a fixed delay until Disconnect, reading the
// bearer token afresh for every attempt.
type Socket struct {
	registry

	url               string
	credentials       Credentials
	dialer            *websocket.Dialer
	reconnectDelay    time.Duration
	heartbeatIncoming time.Duration
	heartbeatOutgoing time.Duration
	handshakeTimeout  time.Duration
	logger            zerolog.Logger

	// lifecycle serializes Connect and Disconnect
	lifecycle sync.Mutex

	mu     sync.Mutex
	roomID int64
	send   chan []byte // nil unless a connection is up
	cancel context.CancelFunc
	done   chan struct{}
}

func NewSocket(cfg SocketConfig) *Socket {
	s := &Socket{
		url:               cfg.URL,
		credentials:       cfg.Credentials,
		dialer:            cfg.Dialer,
		reconnectDelay:    cfg.ReconnectDelay,
		heartbeatIncoming: cfg.HeartbeatIncoming,
		heartbeatOutgoing: cfg.HeartbeatOutgoing,
		handshakeTimeout:  cfg.HandshakeTimeout,
		logger:            cfg.Logger.With().Str("component", "transport-socket").Logger(),
	}
	if s.dialer == nil {
		s.dialer = websocket.DefaultDialer
	}
	if s.reconnectDelay <= 0 {
		s.reconnectDelay = defaultReconnectDelay
	}
	if s.heartbeatIncoming <= 0 {
		s.heartbeatIncoming = defaultHeartbeat
	}
	if s.heartbeatOutgoing <= 0 {
		s.heartbeatOutgoing = defaultHeartbeat
	}
	if s.handshakeTimeout <= 0 {
		s.handshakeTimeout = defaultHandshakeTimeout
	}
	return s
}

// Connect starts the connection loop for roomID and waits for the outcome
// of the first attempt. A failed first attempt is returned, but the loop
// keeps retrying in the background and onConnected fires once it succeeds.
// ctx bounds only the wait; the loop runs until Disconnect.
func (s *Socket) Connect(ctx context.Context, roomID int64, onConnected func()) error {
	if roomID <= 0 {
		return failure.Validation(fmt.Errorf("%w: %d", ErrInvalidRoom, roomID))
	}

	s.lifecycle.Lock()
	s.disconnect()

	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	first := make(chan error, 1)

	s.mu.Lock()
	s.roomID = roomID
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go s.run(runCtx, roomID, onConnected, first, done)
	s.lifecycle.Unlock()

	select {
	case err := <-first:
		return err
	case <-ctx.Done():
		return failure.Transport(ctx.Err())
	}
}

// Disconnect stops the loop, says goodbye to the broker and closes the socket.
func (s *Socket) Disconnect() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	s.disconnect()
}

func (s *Socket) disconnect() {
	s.mu.Lock()
	cancel, done, roomID := s.cancel, s.done, s.roomID
	s.cancel = nil
	s.done = nil
	s.roomID = 0
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.logger.Debug().Int64("roomID", roomID).Msg("disconnected")
}

func (s *Socket) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.send != nil
}

func (s *Socket) Publish(content, senderNickname string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.send == nil {
		return ErrNotConnected
	}
	body, err := json.Marshal(models.OutboundMessage{Content: content, SenderNickname: senderNickname})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	frame, err := json.Marshal(models.Frame{
		Command:     models.CommandSend,
		Destination: models.SendDestination(s.roomID),
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal frame: %w", err)
	}

	select {
	case s.send <- frame:
		return nil
	default:
		return failure.Transport(errSendBufferFull)
	}
}

func (s *Socket) run(ctx context.Context, roomID int64, onConnected func(), first chan<- error, done chan<- struct{}) {
	defer close(done)

	logger := s.logger.With().Int64("roomID", roomID).Logger()
	report := func(err error) {
		if first != nil {
			first <- err
			first = nil
		}
	}

	for attempt := 1; ; attempt++ {
		conn, err := s.dial(ctx, roomID)
		if err != nil {
			if ctx.Err() != nil {
				report(failure.Transport(ctx.Err()))
				return
			}
			logger.Warn().Err(err).Int("attempt", attempt).Msg("connect failed")
			report(err)
		} else {
			attempt = 0
			send := make(chan []byte, sendBufferSize)
			s.mu.Lock()
			s.send = send
			s.mu.Unlock()

			logger.Info().Msg("connected")
			if onConnected != nil {
				onConnected()
			}
			report(nil)

			err = s.serve(ctx, conn, roomID, send)

			s.mu.Lock()
			s.send = nil
			s.mu.Unlock()
			if ctx.Err() != nil {
				return
			}
			logger.Warn().Err(err).Msg("connection lost")
		}

		t := time.NewTimer(s.reconnectDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
}

// dial opens the socket and runs the CONNECT/SUBSCRIBE handshake.
func (s *Socket) dial(ctx context.Context, roomID int64) (*websocket.Conn, error) {
	header := http.Header{}
	if s.credentials != nil {
		if token := s.credentials.Token(); token != "" {
			header.Set("Authorization", "Bearer "+token)
		}
	}

	dialCtx, cancel := context.WithTimeout(ctx, s.handshakeTimeout)
	defer cancel()

	conn, resp, err := s.dialer.DialContext(dialCtx, s.url, header)
	if err != nil {
		if resp != nil {
			err = fmt.Errorf("%w (status %d)", err, resp.StatusCode)
		}
		return nil, failure.Transport(errors.Join(ErrHandshake, err))
	}

	// abort a stalled handshake when the loop is cancelled
	stop := context.AfterFunc(dialCtx, func() { conn.Close() })
	defer stop()

	if err := s.handshake(conn, roomID); err != nil {
		conn.Close()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, failure.Transport(errors.Join(ErrHandshake, err))
	}
	return conn, nil
}

func (s *Socket) handshake(conn *websocket.Conn, roomID int64) error {
	conn.SetReadLimit(maxFrameSize)
	deadline := time.Now().Add(s.handshakeTimeout)

	conn.SetWriteDeadline(deadline)
	if err := conn.WriteJSON(models.Frame{Command: models.CommandConnect}); err != nil {
		return fmt.Errorf("send CONNECT: %w", err)
	}

	conn.SetReadDeadline(deadline)
	var reply models.Frame
	if err := conn.ReadJSON(&reply); err != nil {
		return fmt.Errorf("read CONNECTED: %w", err)
	}
	switch reply.Command {
	case models.CommandConnected:
	case models.CommandError:
		return fmt.Errorf("broker refused connection: %s", reply.Message)
	default:
		return fmt.Errorf("unexpected %q frame", reply.Command)
	}

	if err := conn.WriteJSON(models.Frame{
		Command:     models.CommandSubscribe,
		Destination: models.TopicDestination(roomID),
	}); err != nil {
		return fmt.Errorf("send SUBSCRIBE: %w", err)
	}
	return nil
}

// serve pumps one established connection until it fails or ctx ends.
func (s *Socket) serve(ctx context.Context, conn *websocket.Conn, roomID int64, send <-chan []byte) error {
	quit := make(chan struct{})
	pumpDone := make(chan struct{})
	go s.writePump(ctx, conn, send, quit, pumpDone)

	err := s.readPump(conn, roomID)
	close(quit)
	conn.Close()
	<-pumpDone
	return err
}

// readPump delivers MESSAGE frames for the subscribed topic. Any inbound
// frame, ping or pong extends the liveness deadline.
func (s *Socket) readPump(conn *websocket.Conn, roomID int64) error {
	readWait := 2*s.heartbeatIncoming + writeWait
	alive := func() {
		conn.SetReadDeadline(time.Now().Add(readWait))
	}

	alive()
	conn.SetPongHandler(func(string) error {
		alive()
		return nil
	})
	conn.SetPingHandler(func(data string) error {
		alive()
		err := conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeWait))
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		return err
	})

	topic := models.TopicDestination(roomID)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		alive()

		var frame models.Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			s.logger.Debug().Err(err).Msg("dropping malformed frame")
			continue
		}

		switch frame.Command {
		case models.CommandMessage:
			if frame.Destination != topic {
				continue
			}
			var msg models.ChatMessage
			if err := json.Unmarshal(frame.Body, &msg); err != nil {
				s.logger.Debug().Err(err).Msg("dropping malformed message body")
				continue
			}
			s.deliver(msg)
		case models.CommandError:
			return failure.Transport(fmt.Errorf("broker error: %s", frame.Message))
		}
	}
}

// writePump is the connection's only writer of data frames.
func (s *Socket) writePump(ctx context.Context, conn *websocket.Conn, send <-chan []byte, quit <-chan struct{}, done chan<- struct{}) {
	ticker := time.NewTicker(s.heartbeatOutgoing)
	defer func() {
		ticker.Stop()
		conn.Close()
		close(done)
	}()

	for {
		select {
		case <-ctx.Done():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteJSON(models.Frame{Command: models.CommandDisconnect})
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case <-quit:
			return

		case frame := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
