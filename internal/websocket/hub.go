package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/adi-253/roomline/internal/models"
	"github.com/adi-253/roomline/internal/services"
	"github.com/rs/zerolog"
)

// Hub maintains the set of active clients and fans room messages out to
// every client subscribed to the room's topic, the sender included.
type Hub struct {
	// clients is every registered connection
	clients map[*Client]struct{}

	// topics maps roomID to the clients subscribed to it
	topics map[int64]map[*Client]struct{}

	register    chan *Client
	unregister  chan *Client
	subscribe   chan subscription
	publication chan publication

	// done is closed once Run returns
	done chan struct{}

	// mu guards reads of clients and topics from outside Run
	mu sync.RWMutex

	messages *services.MessageService
	logger   zerolog.Logger
}

type subscription struct {
	client *Client
	roomID int64
}

// publication is one accepted SEND frame waiting to be stored and fanned out.
type publication struct {
	roomID  int64
	sender  models.Participant
	content string
}

// HubConfig holds the hub's collaborators.
type HubConfig struct {
	Messages *services.MessageService
	Logger   *zerolog.Logger
}

// NewHub creates a new Hub instance. Call Run to start it.
func NewHub(cfg HubConfig) *Hub {
	return &Hub{
		clients:     make(map[*Client]struct{}),
		topics:      make(map[int64]map[*Client]struct{}),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		subscribe:   make(chan subscription),
		publication: make(chan publication),
		done:        make(chan struct{}),
		messages:    cfg.Messages,
		logger:      cfg.Logger.With().Str("component", "broker").Logger(),
	}
}

// Run is the hub's event loop. It returns when ctx is done, after closing
// every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			h.mu.Unlock()
			h.logger.Debug().Str("conn_id", client.ID).Int64("user_id", client.User.UserID).Msg("client registered")

		case client := <-h.unregister:
			h.removeClient(client)

		case sub := <-h.subscribe:
			h.addSubscription(sub)

		case pub := <-h.publication:
			h.broadcast(pub)
		}
	}
}

// Register hands a connected client to the hub. It reports false once the
// hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Subscribe adds c to the topic of roomID.
func (h *Hub) Subscribe(c *Client, roomID int64) {
	select {
	case h.subscribe <- subscription{client: c, roomID: roomID}:
	case <-h.done:
	}
}

// Publish stores a message and delivers it to the room's subscribers.
func (h *Hub) Publish(roomID int64, sender models.Participant, content string) {
	select {
	case h.publication <- publication{roomID: roomID, sender: sender, content: content}:
	case <-h.done:
	}
}

// SubscriberCount returns the number of clients subscribed to a room.
func (h *Hub) SubscriberCount(roomID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[roomID])
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) addSubscription(sub subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[sub.client]; !ok {
		return
	}
	if h.topics[sub.roomID] == nil {
		h.topics[sub.roomID] = make(map[*Client]struct{})
	}
	h.topics[sub.roomID][sub.client] = struct{}{}
	h.logger.Debug().
		Str("conn_id", sub.client.ID).
		Int64("room_id", sub.roomID).
		Int("subscribers", len(h.topics[sub.roomID])).
		Msg("client subscribed")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	for roomID, subs := range h.topics {
		delete(subs, client)
		// Clean up empty topics
		if len(subs) == 0 {
			delete(h.topics, roomID)
		}
	}
	client.close()
	h.logger.Debug().Str("conn_id", client.ID).Msg("client unregistered")
}

// broadcast appends the message to the room history and sends the stored
// copy to every subscriber.
func (h *Hub) broadcast(pub publication) {
	msg := h.messages.Append(pub.roomID, pub.sender, pub.content)

	body, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to encode message")
		return
	}
	frame, err := json.Marshal(models.Frame{
		Command:     models.CommandMessage,
		Destination: models.TopicDestination(pub.roomID),
		Body:        body,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to encode frame")
		return
	}

	h.mu.RLock()
	subs := make([]*Client, 0, len(h.topics[pub.roomID]))
	for c := range h.topics[pub.roomID] {
		subs = append(subs, c)
	}
	h.mu.RUnlock()

	sent := 0
	for _, c := range subs {
		if c.enqueue(frame) {
			sent++
			continue
		}
		// Client's buffer is full, remove them
		h.removeClient(c)
	}
	h.logger.Debug().
		Int64("room_id", pub.roomID).
		Int64("message_id", msg.MessageID).
		Int("sent", sent).
		Msg("message broadcast")
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		c.close()
	}
	h.clients = make(map[*Client]struct{})
	h.topics = make(map[int64]map[*Client]struct{})
}
