package transport

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/adi-253/roomline/internal/failure"
	"github.com/adi-253/roomline/internal/models"
	"github.com/rs/zerolog"
)

const (
	defaultMessageInterval = 30 * time.Second
	defaultPublishDelay    = 300 * time.Millisecond

	// simulated message ids continue from here so they never collide with
	// seeded history
	firstSimulatedID = 1000
)

var generatedLines = []string{
	"안녕하세요!",
	"좋은 의견이네요.",
	"이 부분은 어떻게 생각하시나요?",
	"제안서 작성이 필요할 것 같습니다.",
}

type SimulatedConfig struct {
	// MessageInterval is how often a message from a random participant
	// is generated while connected
	MessageInterval time.Duration
	// PublishDelay is the modelled latency before a published message is
	// delivered back
	PublishDelay time.Duration
	// UserID stamps messages published through this transport
	UserID int64
	Logger *zerolog.Logger
}

type outgoing struct {
	due time.Time
	msg models.ChatMessage
}

// Simulated fabricates a room's traffic in process. Published messages
// come back after PublishDelay, in publish order, and a generator adds
// a message every MessageInterval.
type Simulated struct {
	registry

	interval time.Duration
	delay    time.Duration
	userID   int64
	logger   zerolog.Logger

	// lifecycle serializes Connect and Disconnect
	lifecycle sync.Mutex

	mu     sync.Mutex
	roomID int64
	lastID int64
	queue  []outgoing
	wake   chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

func NewSimulated(cfg SimulatedConfig) *Simulated {
	s := &Simulated{
		interval: cfg.MessageInterval,
		delay:    cfg.PublishDelay,
		userID:   cfg.UserID,
		lastID:   firstSimulatedID - 1,
		logger:   cfg.Logger.With().Str("component", "transport-sim").Logger(),
	}
	if s.interval <= 0 {
		s.interval = defaultMessageInterval
	}
	if s.delay < 0 {
		s.delay = defaultPublishDelay
	}
	return s
}

// Connect is immediate: onConnected runs before Connect returns.
func (s *Simulated) Connect(ctx context.Context, roomID int64, onConnected func()) error {
	if roomID <= 0 {
		return failure.Validation(fmt.Errorf("%w: %d", ErrInvalidRoom, roomID))
	}
	if err := ctx.Err(); err != nil {
		return failure.Transport(err)
	}

	s.lifecycle.Lock()
	s.disconnect()

	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	wake := make(chan struct{}, 1)

	s.mu.Lock()
	s.roomID = roomID
	s.queue = nil
	s.wake = wake
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go s.run(runCtx, wake, done)
	s.lifecycle.Unlock()

	s.logger.Debug().Int64("roomID", roomID).Msg("connected")
	if onConnected != nil {
		onConnected()
	}
	return nil
}

// Disconnect stops the generator and drops undelivered messages.
func (s *Simulated) Disconnect() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	s.disconnect()
}

func (s *Simulated) disconnect() {
	s.mu.Lock()
	cancel, done, roomID := s.cancel, s.done, s.roomID
	s.cancel = nil
	s.done = nil
	s.roomID = 0
	s.queue = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.logger.Debug().Int64("roomID", roomID).Msg("disconnected")
}

func (s *Simulated) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *Simulated) Publish(content, senderNickname string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel == nil {
		return ErrNotConnected
	}
	userID := s.userID
	s.queue = append(s.queue, outgoing{
		due: time.Now().Add(s.delay),
		msg: models.ChatMessage{
			MessageID:      s.nextID(),
			SenderNickname: senderNickname,
			Content:        content,
			SentAt:         time.Now().UTC(),
			UserID:         &userID,
		},
	})
	select {
	case s.wake <- struct{}{}:
	default:
	}
	return nil
}

// nextID must be called with s.mu held.
func (s *Simulated) nextID() int64 {
	s.lastID++
	return s.lastID
}

func (s *Simulated) run(ctx context.Context, wake <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		var (
			timer  *time.Timer
			timerC <-chan time.Time
		)
		if due, ok := s.nextDue(); ok {
			timer = time.NewTimer(time.Until(due))
			timerC = timer.C
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-ticker.C:
			s.emit(ctx, s.generate())
		case <-wake:
		case <-timerC:
		}
		if timer != nil {
			timer.Stop()
		}

		for {
			msg, ok := s.popDue()
			if !ok {
				break
			}
			s.emit(ctx, msg)
		}
	}
}

func (s *Simulated) nextDue() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return time.Time{}, false
	}
	return s.queue[0].due, true
}

func (s *Simulated) popDue() (models.ChatMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 || s.queue[0].due.After(time.Now()) {
		return models.ChatMessage{}, false
	}
	msg := s.queue[0].msg
	s.queue = s.queue[1:]
	return msg, true
}

func (s *Simulated) emit(ctx context.Context, msg models.ChatMessage) {
	if ctx.Err() != nil {
		return
	}
	s.deliver(msg)
}

func (s *Simulated) generate() models.ChatMessage {
	s.mu.Lock()
	id := s.nextID()
	s.mu.Unlock()

	userID := rand.Int64N(1000)
	return models.ChatMessage{
		MessageID:      id,
		SenderNickname: fmt.Sprintf("사용자%d", rand.IntN(100)),
		Content:        generatedLines[rand.IntN(len(generatedLines))],
		SentAt:         time.Now().UTC(),
		UserID:         &userID,
	}
}
