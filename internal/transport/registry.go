package transport

import (
	"sync"

	"github.com/adi-253/roomline/internal/models"
)

type registration struct {
	id uint64
	h  Handler
}

// registry keeps handlers in registration order.
type registry struct {
	mu       sync.Mutex
	lastID   uint64
	handlers []registration
}

func (r *registry) Subscribe(h Handler) func() {
	r.mu.Lock()
	r.lastID++
	id := r.lastID
	r.handlers = append(r.handlers, registration{id: id, h: h})
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(id) })
	}
}

func (r *registry) remove(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, reg := range r.handlers {
		if reg.id == id {
			r.handlers = append(r.handlers[:i:i], r.handlers[i+1:]...)
			return
		}
	}
}

// deliver calls every handler registered at the time of the call.
func (r *registry) deliver(msg models.ChatMessage) {
	r.mu.Lock()
	snapshot := r.handlers
	r.mu.Unlock()

	for _, reg := range snapshot {
		reg.h(msg)
	}
}

func (r *registry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handlers)
}
