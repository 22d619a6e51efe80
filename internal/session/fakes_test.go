package session

import (
	"context"
	"sync"

	"github.com/adi-253/roomline/internal/failure"
	"github.com/adi-253/roomline/internal/models"
	"github.com/adi-253/roomline/internal/transport"
)

type fakeDirectory struct {
	mu         sync.Mutex
	details    map[int64]*models.RoomDetails
	detailsErr error
	joinErr    error
	leaveErr   error
	gates      map[int64]chan struct{}
	started    chan int64
	joins      []int64
	leaves     []int64
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		details: make(map[int64]*models.RoomDetails),
		gates:   make(map[int64]chan struct{}),
		started: make(chan int64, 16),
	}
}

func (d *fakeDirectory) withRoom(roomID int64, title string, msgs ...models.ChatMessage) *fakeDirectory {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.details[roomID] = &models.RoomDetails{
		Title:        title,
		Messages:     msgs,
		Participants: []models.Participant{{UserID: 1, Nickname: "현재사용자"}, {UserID: 2, Nickname: "길동이"}},
	}
	return d
}

func (d *fakeDirectory) gate(roomID int64) chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	ch := make(chan struct{})
	d.gates[roomID] = ch
	return ch
}

func (d *fakeDirectory) set(fn func(d *fakeDirectory)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d)
}

func (d *fakeDirectory) JoinRoom(ctx context.Context, roomID int64) (*models.JoinRoomResponse, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.joins = append(d.joins, roomID)
	if d.joinErr != nil {
		return nil, d.joinErr
	}
	return &models.JoinRoomResponse{}, nil
}

// GetRoomDetails blocks on the room's gate, if any, ignoring ctx so stale
// results really arrive late.
func (d *fakeDirectory) GetRoomDetails(ctx context.Context, roomID int64) (*models.RoomDetails, error) {
	d.mu.Lock()
	gate := d.gates[roomID]
	d.mu.Unlock()

	d.started <- roomID
	if gate != nil {
		<-gate
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.detailsErr != nil {
		return nil, d.detailsErr
	}
	details, ok := d.details[roomID]
	if !ok {
		return nil, failure.Fetch(&fakeAPIError{"room not found"})
	}
	out := *details
	out.Messages = append([]models.ChatMessage(nil), details.Messages...)
	return &out, nil
}

func (d *fakeDirectory) LeaveRoom(ctx context.Context, roomID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.leaves = append(d.leaves, roomID)
	return d.leaveErr
}

func (d *fakeDirectory) leaveCalls() []int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]int64(nil), d.leaves...)
}

type fakeAPIError struct{ msg string }

func (e *fakeAPIError) Error() string { return e.msg }

type fakeTransport struct {
	mu          sync.Mutex
	handlers    []fakeHandler
	lastID      int
	connected   bool
	connectErr  error
	roomID      int64
	onConnected func()
	connects    []int64
	disconnects int
	published   []models.OutboundMessage
}

type fakeHandler struct {
	id int
	h  transport.Handler
}

func (f *fakeTransport) Connect(ctx context.Context, roomID int64, onConnected func()) error {
	f.mu.Lock()
	f.connects = append(f.connects, roomID)
	f.roomID = roomID
	f.onConnected = onConnected
	if f.connectErr != nil {
		err := f.connectErr
		f.mu.Unlock()
		return err
	}
	f.connected = true
	f.mu.Unlock()

	if onConnected != nil {
		onConnected()
	}
	return nil
}

func (f *fakeTransport) Disconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnects++
	f.connected = false
	f.onConnected = nil
	f.roomID = 0
}

func (f *fakeTransport) Publish(content, senderNickname string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.connected {
		return transport.ErrNotConnected
	}
	f.published = append(f.published, models.OutboundMessage{Content: content, SenderNickname: senderNickname})
	return nil
}

func (f *fakeTransport) Subscribe(h transport.Handler) func() {
	f.mu.Lock()
	f.lastID++
	id := f.lastID
	f.handlers = append(f.handlers, fakeHandler{id: id, h: h})
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			for i, fh := range f.handlers {
				if fh.id == id {
					f.handlers = append(f.handlers[:i:i], f.handlers[i+1:]...)
					return
				}
			}
		})
	}
}

func (f *fakeTransport) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

// emit delivers msg to every registered handler.
func (f *fakeTransport) emit(msg models.ChatMessage) {
	f.mu.Lock()
	handlers := f.handlers
	f.mu.Unlock()
	for _, fh := range handlers {
		fh.h(msg)
	}
}

// reconnect simulates the transport's background retry succeeding.
func (f *fakeTransport) reconnect() {
	f.mu.Lock()
	f.connected = true
	cb := f.onConnected
	f.mu.Unlock()
	if cb != nil {
		cb()
	}
}

func (f *fakeTransport) drop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
}

func (f *fakeTransport) set(fn func(f *fakeTransport)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeTransport) subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handlers)
}

func (f *fakeTransport) publishedMessages() []models.OutboundMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.OutboundMessage(nil), f.published...)
}

type nicknameStub string

func (n nicknameStub) Nickname() string { return string(n) }
