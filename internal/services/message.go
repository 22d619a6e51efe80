package services

import (
	"sync"
	"time"

	"github.com/adi-253/roomline/internal/models"
)

// MessageService stores the chat history of every room in memory.
// Message ids are assigned from one counter shared by all rooms.
type MessageService struct {
	// messages stores history per room: roomID -> messages in arrival order
	messages map[int64][]models.ChatMessage
	lastID   int64
	mu       sync.RWMutex
	now      func() time.Time
}

// NewMessageService creates a new MessageService instance
func NewMessageService() *MessageService {
	return &MessageService{
		messages: make(map[int64][]models.ChatMessage),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Append stores a new message for a room and returns it with its assigned id.
func (s *MessageService) Append(roomID int64, sender models.Participant, content string) models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	msg := models.ChatMessage{
		MessageID:      s.lastID,
		SenderNickname: sender.Nickname,
		Content:        content,
		SentAt:         s.now(),
	}
	if sender.UserID > 0 {
		uid := sender.UserID
		msg.UserID = &uid
	}
	s.messages[roomID] = append(s.messages[roomID], msg)
	return msg
}

// Import appends already-stamped messages, keeping their ids. Later Append
// calls continue after the highest imported id.
func (s *MessageService) Import(roomID int64, msgs ...models.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, msg := range msgs {
		if msg.MessageID > s.lastID {
			s.lastID = msg.MessageID
		}
		s.messages[roomID] = append(s.messages[roomID], msg)
	}
}

// History returns a copy of a room's messages in arrival order.
func (s *MessageService) History(roomID int64) []models.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.ChatMessage, len(s.messages[roomID]))
	copy(result, s.messages[roomID])
	return result
}

// DeleteRoomMessages removes all messages for a room
func (s *MessageService) DeleteRoomMessages(roomID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := len(s.messages[roomID])
	delete(s.messages, roomID)
	return count
}

// Count returns the number of messages in a room
func (s *MessageService) Count(roomID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages[roomID])
}
