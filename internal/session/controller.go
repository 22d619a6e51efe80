// Package session binds one user-facing surface to at most one live room:
// it loads the room's history, opens the transport, merges live messages
// into the log and tears everything down on leave or dismissal.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/adi-253/roomline/internal/auth"
	"github.com/adi-253/roomline/internal/directory"
	"github.com/adi-253/roomline/internal/failure"
	"github.com/adi-253/roomline/internal/models"
	"github.com/adi-253/roomline/internal/transport"
	"github.com/rs/zerolog"
)

var (
	ErrNoSession    = errors.New("no active room session")
	ErrSuperseded   = errors.New("session was replaced before it finished opening")
	ErrNotConnected = errors.New("not connected to the room")
	ErrEmptyMessage = errors.New("message is empty")
	ErrInvalidRoom  = errors.New("room id must be positive")
)

// Directory is the part of the room directory a session needs.
type Directory interface {
	JoinRoom(ctx context.Context, roomID int64) (*models.JoinRoomResponse, error)
	GetRoomDetails(ctx context.Context, roomID int64) (*models.RoomDetails, error)
	LeaveRoom(ctx context.Context, roomID int64) error
}

// Identity names the user messages are sent as.
type Identity interface {
	Nickname() string
}

type Config struct {
	Directory Directory
	Transport transport.Transport
	Identity  Identity
	Logger    *zerolog.Logger
}

// Controller owns the transport for the lifetime of each session it opens.
//
// Every session gets a generation number. Fetch results, connect results,
// inbound messages and reconnect callbacks carry the generation they were
// started under and are dropped once it is no longer current.
type Controller struct {
	directory Directory
	transport transport.Transport
	identity  Identity
	logger    zerolog.Logger

	// transportMu serializes Connect and Disconnect. Taken before mu.
	transportMu sync.Mutex

	mu          sync.Mutex
	gen         uint64
	state       Snapshot
	cancelEnter context.CancelFunc
	unsubscribe func()

	// notifyMu orders observer callbacks
	notifyMu     sync.Mutex
	observersMu  sync.Mutex
	observers    map[uint64]func(Snapshot)
	lastObserver uint64
}

func NewController(cfg Config) *Controller {
	return &Controller{
		directory: cfg.Directory,
		transport: cfg.Transport,
		identity:  cfg.Identity,
		logger:    cfg.Logger.With().Str("component", "room-session").Logger(),
		observers: make(map[uint64]func(Snapshot)),
	}
}

// Enter opens a session for roomID, replacing any current one. It returns
// once the history is loaded and the first transport connect has finished.
//
// A failed history fetch leaves the session in Failed and returns a fetch
// failure. A failed connect leaves the history readable with the status
// Disconnected and returns a transport failure; the transport keeps
// retrying and the session goes Live when it succeeds. ErrSuperseded means
// another Enter, Leave or ForceTeardown took over while this one ran.
func (c *Controller) Enter(ctx context.Context, roomID int64) error {
	if roomID <= 0 {
		return failure.Validation(fmt.Errorf("%w: %d", ErrInvalidRoom, roomID))
	}
	c.teardown()

	c.mu.Lock()
	c.gen++
	gen := c.gen
	enterCtx, cancel := context.WithCancel(ctx)
	c.cancelEnter = cancel
	c.state = Snapshot{
		RoomID:           roomID,
		Phase:            LoadingHistory,
		ConnectionStatus: Idle,
		Loading:          true,
	}
	c.mu.Unlock()
	c.notify()

	logger := c.logger.With().Int64("roomID", roomID).Logger()

	// membership problems never block entry; the details fetch decides
	if _, err := c.directory.JoinRoom(enterCtx, roomID); err != nil {
		if directory.IsAlreadyMember(err) {
			logger.Debug().Msg("already a member")
		} else {
			logger.Warn().Err(err).Msg("join failed, loading room anyway")
		}
	}

	details, err := c.directory.GetRoomDetails(enterCtx, roomID)

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		logger.Debug().Msg("dropping stale room details")
		return ErrSuperseded
	}
	if err != nil {
		c.state.Phase = Failed
		c.state.ConnectionStatus = ConnectionFailed
		c.state.Loading = false
		c.state.Error = failure.Describe(err)
		c.mu.Unlock()
		c.notify()
		logger.Warn().Err(err).Msg("failed to load room")
		return failure.Fetch(err)
	}

	c.state.Title = details.Title
	c.state.Proposal = details.Proposal
	c.state.Messages = append([]models.ChatMessage(nil), details.Messages...)
	c.state.Participants = append([]models.Participant(nil), details.Participants...)
	c.state.HistoryLoaded = true
	c.state.Loading = false
	c.state.Phase = OpeningTransport
	c.state.ConnectionStatus = Connecting
	c.state.Connecting = true
	c.unsubscribe = c.transport.Subscribe(c.messageHandler(gen))
	c.mu.Unlock()
	c.notify()
	logger.Debug().Int("history", len(details.Messages)).Msg("history loaded")

	c.transportMu.Lock()
	if !c.current(gen) {
		c.transportMu.Unlock()
		return ErrSuperseded
	}
	err = c.transport.Connect(enterCtx, roomID, c.connectedHandler(gen))
	c.transportMu.Unlock()

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return ErrSuperseded
	}
	c.state.Connecting = false
	if err != nil {
		// a background retry may already have succeeded
		if c.state.ConnectionStatus != Connected {
			c.state.ConnectionStatus = Disconnected
			c.state.Error = failure.Describe(err)
		}
		c.mu.Unlock()
		c.notify()
		logger.Warn().Err(err).Msg("transport connect failed, history stays readable")
		return failure.Transport(err)
	}
	c.state.Phase = Live
	c.state.ConnectionStatus = Connected
	c.mu.Unlock()
	c.notify()
	logger.Info().Msg("room is live")
	return nil
}

// Retry re-enters the current room, typically after a failed history load.
func (c *Controller) Retry(ctx context.Context) error {
	c.mu.Lock()
	roomID := c.state.RoomID
	c.mu.Unlock()
	if roomID == 0 {
		return ErrNoSession
	}
	return c.Enter(ctx, roomID)
}

// Send publishes text as the current user. The message reaches the log
// only when the transport delivers it back.
func (c *Controller) Send(text string) error {
	if strings.TrimSpace(text) == "" {
		return failure.Validation(ErrEmptyMessage)
	}

	c.mu.Lock()
	if c.state.RoomID == 0 {
		c.mu.Unlock()
		return ErrNoSession
	}
	if c.state.ConnectionStatus != Connected || !c.transport.Connected() {
		c.mu.Unlock()
		return ErrNotConnected
	}
	c.mu.Unlock()

	nickname := auth.AnonymousNickname
	if c.identity != nil {
		nickname = c.identity.Nickname()
	}
	if err := c.transport.Publish(text, nickname); err != nil {
		if errors.Is(err, transport.ErrNotConnected) {
			return ErrNotConnected
		}
		return err
	}
	return nil
}

// Leave asks the directory to drop the membership and, on success, tears
// the session down. On failure the session and its connection are kept
// and the error is recorded in the snapshot.
func (c *Controller) Leave(ctx context.Context) (bool, error) {
	c.mu.Lock()
	roomID, gen := c.state.RoomID, c.gen
	c.mu.Unlock()
	if roomID == 0 {
		return false, ErrNoSession
	}

	if err := c.directory.LeaveRoom(ctx, roomID); err != nil {
		c.mu.Lock()
		if c.gen == gen {
			c.state.Error = failure.Describe(err)
		}
		c.mu.Unlock()
		c.notify()
		c.logger.Warn().Err(err).Int64("roomID", roomID).Msg("leave failed, keeping session")
		return false, failure.Fetch(err)
	}

	c.logger.Info().Int64("roomID", roomID).Msg("left room")
	if c.current(gen) {
		c.teardown()
	}
	return true, nil
}

// ForceTeardown drops the session without touching room membership.
// It is the only cleanup a dismissed view needs.
func (c *Controller) ForceTeardown() {
	c.teardown()
}

// Snapshot returns the current state. A Live session whose transport has
// lost its connection reports Disconnected until it reconnects.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := c.state.clone()
	if snap.ConnectionStatus == Connected && !c.transport.Connected() {
		snap.ConnectionStatus = Disconnected
	}
	return snap
}

// Observe registers fn to receive a snapshot after every state change.
// Callbacks are serialized and must not call back into the Controller.
func (c *Controller) Observe(fn func(Snapshot)) (cancel func()) {
	c.observersMu.Lock()
	c.lastObserver++
	id := c.lastObserver
	c.observers[id] = fn
	c.observersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.observersMu.Lock()
			delete(c.observers, id)
			c.observersMu.Unlock()
		})
	}
}

func (c *Controller) notify() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.observersMu.Lock()
	if len(c.observers) == 0 {
		c.observersMu.Unlock()
		return
	}
	fns := make([]func(Snapshot), 0, len(c.observers))
	for _, fn := range c.observers {
		fns = append(fns, fn)
	}
	c.observersMu.Unlock()

	snap := c.Snapshot()
	for _, fn := range fns {
		fn(snap)
	}
}

func (c *Controller) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen == gen
}

func (c *Controller) messageHandler(gen uint64) transport.Handler {
	return func(msg models.ChatMessage) {
		c.mu.Lock()
		if c.gen != gen {
			c.mu.Unlock()
			return
		}
		c.state.Messages = append(c.state.Messages, msg)
		c.mu.Unlock()
		c.notify()
	}
}

func (c *Controller) connectedHandler(gen uint64) func() {
	return func() {
		c.mu.Lock()
		if c.gen != gen {
			c.mu.Unlock()
			return
		}
		c.state.Phase = Live
		c.state.ConnectionStatus = Connected
		c.state.Connecting = false
		c.state.Error = ""
		c.mu.Unlock()
		c.notify()
		c.logger.Debug().Uint64("generation", gen).Msg("transport connected")
	}
}

// teardown ends the current generation: it cancels a pending Enter,
// unsubscribes the live handler and disconnects the transport.
func (c *Controller) teardown() {
	c.mu.Lock()
	c.gen++
	if c.cancelEnter != nil {
		c.cancelEnter()
		c.cancelEnter = nil
	}
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	roomID := c.state.RoomID
	c.state = Snapshot{Phase: NoSession, ConnectionStatus: Disconnected}
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}

	c.transportMu.Lock()
	c.transport.Disconnect()
	c.transportMu.Unlock()

	if roomID != 0 {
		c.logger.Debug().Int64("roomID", roomID).Msg("session torn down")
	}
	c.notify()
}
