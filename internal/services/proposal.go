package services

import (
	"strings"
	"sync"
	"time"

	"github.com/adi-253/roomline/internal/models"
)

// ProposalService keeps the proposal documents of every room in memory.
type ProposalService struct {
	proposals map[int64]*models.Proposal
	byRoom    map[int64]int64
	lastID    int64
	mu        sync.RWMutex
	now       func() time.Time
}

func NewProposalService() *ProposalService {
	return &ProposalService{
		proposals: make(map[int64]*models.Proposal),
		byRoom:    make(map[int64]int64),
		lastID:    100,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new proposal pending consent. It becomes the room's
// current proposal.
func (s *ProposalService) Create(payload models.ProposalPayload) (*models.Proposal, error) {
	if strings.TrimSpace(payload.Title) == "" {
		return nil, ErrTitleRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	now := s.now()
	p := &models.Proposal{
		ProposalID: s.lastID,
		RoomID:     payload.RoomID,
		Status:     models.ProposalPendingConsent,
		Title:      payload.Title,
		Content:    payload.Content,
		CreatedAt:  &now,
		UpdatedAt:  &now,
	}
	s.proposals[p.ProposalID] = p
	if payload.RoomID > 0 {
		s.byRoom[payload.RoomID] = p.ProposalID
	}
	out := *p
	return &out, nil
}

// Update applies the non-nil fields of patch.
func (s *ProposalService) Update(id int64, patch models.ProposalPatch) (*models.Proposal, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, ErrTitleRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.proposals[id]
	if !ok {
		return nil, ErrProposalNotFound
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	now := s.now()
	p.UpdatedAt = &now
	out := *p
	return &out, nil
}

func (s *ProposalService) Get(id int64) (*models.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.proposals[id]
	if !ok {
		return nil, ErrProposalNotFound
	}
	out := *p
	return &out, nil
}

// ForRoom returns the room's current proposal, or nil.
func (s *ProposalService) ForRoom(roomID int64) *models.Proposal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byRoom[roomID]
	if !ok {
		return nil
	}
	out := *s.proposals[id]
	return &out
}
