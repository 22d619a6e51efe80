package services

import (
	"sort"
	"strings"
	"sync"

	"github.com/adi-253/roomline/internal/models"
)

// room is the stored state of one discussion room.
type room struct {
	info    models.Room
	members []models.Participant
}

// RoomService handles all room-related business logic for the dev backend.
// Rooms and memberships live in memory; history and proposals are
// delegated to their own services.
type RoomService struct {
	rooms     map[int64]*room
	lastID    int64
	messages  *MessageService
	proposals *ProposalService
	mu        sync.RWMutex
}

// NewRoomService creates a new RoomService instance.
func NewRoomService(messages *MessageService, proposals *ProposalService) *RoomService {
	return &RoomService{
		rooms:     make(map[int64]*room),
		messages:  messages,
		proposals: proposals,
	}
}

// CreateRoom registers a new room with creator as its first member.
func (s *RoomService) CreateRoom(creator models.Participant, req models.CreateRoomRequest) (*models.Room, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	access := req.AccessLevel
	if access == "" {
		access = models.AccessPublic
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	r := &room{
		info: models.Room{
			RoomID:      s.lastID,
			Title:       title,
			Region:      req.Region,
			Description: req.Description,
			AccessLevel: access,
		},
	}
	if creator.UserID > 0 {
		r.members = append(r.members, creator)
	}
	s.rooms[r.info.RoomID] = r
	out := r.snapshot()
	return &out, nil
}

// AddRoom stores a room with a fixed id, replacing any room with that id.
func (s *RoomService) AddRoom(info models.Room, members ...models.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if info.RoomID > s.lastID {
		s.lastID = info.RoomID
	}
	s.rooms[info.RoomID] = &room{info: info, members: append([]models.Participant(nil), members...)}
}

// ListRooms returns one page of rooms ordered by id, optionally filtered by region.
func (s *RoomService) ListRooms(page, size int, region string) models.Page[models.Room] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []models.Room
	for _, r := range s.rooms {
		if region != "" && !strings.EqualFold(r.info.Region, region) {
			continue
		}
		all = append(all, r.snapshot())
	}
	return paginate(all, page, size)
}

// MyRooms returns one page of the rooms userID belongs to.
func (s *RoomService) MyRooms(userID int64, page, size int) models.Page[models.Room] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var mine []models.Room
	for _, r := range s.rooms {
		if r.memberIndex(userID) >= 0 {
			mine = append(mine, r.snapshot())
		}
	}
	return paginate(mine, page, size)
}

// JoinRoom adds user to the room and returns the member list.
// Joining twice yields ErrAlreadyMember.
func (s *RoomService) JoinRoom(roomID int64, user models.Participant) ([]models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	if r.memberIndex(user.UserID) >= 0 {
		return nil, ErrAlreadyMember
	}
	r.members = append(r.members, user)
	return r.memberList(), nil
}

// LeaveRoom removes userID from the room's members.
func (s *RoomService) LeaveRoom(roomID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	i := r.memberIndex(userID)
	if i < 0 {
		return ErrNotMember
	}
	r.members = append(r.members[:i], r.members[i+1:]...)
	return nil
}

// GetRoom returns a single room snapshot.
func (s *RoomService) GetRoom(roomID int64) (*models.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	out := r.snapshot()
	return &out, nil
}

// RoomDetails assembles the snapshot a client opens a session from.
func (s *RoomService) RoomDetails(roomID int64) (*models.RoomDetails, error) {
	s.mu.RLock()
	r, ok := s.rooms[roomID]
	if !ok {
		s.mu.RUnlock()
		return nil, ErrRoomNotFound
	}
	details := &models.RoomDetails{
		Title:        r.info.Title,
		Participants: r.memberList(),
	}
	s.mu.RUnlock()

	details.Messages = s.messages.History(roomID)
	details.Proposal = s.proposals.ForRoom(roomID)
	return details, nil
}

// Exists reports whether the room is known.
func (s *RoomService) Exists(roomID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[roomID]
	return ok
}

// IsMember reports whether userID belongs to the room.
func (s *RoomService) IsMember(roomID, userID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[roomID]
	return ok && r.memberIndex(userID) >= 0
}

func (r *room) snapshot() models.Room {
	out := r.info
	out.ParticipantCount = len(r.members)
	return out
}

func (r *room) memberIndex(userID int64) int {
	for i, m := range r.members {
		if m.UserID == userID {
			return i
		}
	}
	return -1
}

func (r *room) memberList() []models.Participant {
	return append([]models.Participant{}, r.members...)
}

// paginate sorts rooms by id and cuts out one zero-based page.
func paginate(rooms []models.Room, page, size int) models.Page[models.Room] {
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].RoomID < rooms[j].RoomID })
	if size <= 0 {
		size = 10
	}
	if page < 0 {
		page = 0
	}
	total := len(rooms)
	out := models.Page[models.Room]{
		Content:       []models.Room{},
		TotalElements: total,
		TotalPages:    (total + size - 1) / size,
	}
	start := page * size
	if start >= total {
		return out
	}
	end := min(start+size, total)
	out.Content = rooms[start:end]
	return out
}
