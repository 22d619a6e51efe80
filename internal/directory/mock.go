package directory

import (
	"context"
	"time"

	"github.com/adi-253/roomline/internal/failure"
	"github.com/adi-253/roomline/internal/models"
	"github.com/adi-253/roomline/internal/services"
	"github.com/rs/zerolog"
)

// Identity resolves the user the mock acts for.
type Identity interface {
	User() (models.UserInfo, bool)
}

type MockConfig struct {
	// Delay is the simulated latency of every call
	Delay time.Duration
	// Identity is optional; without a signed-in user the mock acts as
	// services.DemoUser, with FallbackUserID replacing its id when set
	Identity       Identity
	FallbackUserID int64
	Logger         *zerolog.Logger
}

// Mock is an in-process directory over seeded in-memory services. Its
// failures carry the same APIError and failure.ErrFetch tags the HTTP
// client produces.
type Mock struct {
	rooms     *services.RoomService
	messages  *services.MessageService
	proposals *services.ProposalService
	identity  Identity
	fallback  models.Participant
	delay     time.Duration
	logger    zerolog.Logger
}

// NewMock returns a mock seeded with the demo rooms.
func NewMock(cfg MockConfig) *Mock {
	messages := services.NewMessageService()
	proposals := services.NewProposalService()
	rooms := services.NewRoomService(messages, proposals)
	services.Seed(rooms, messages, proposals)

	fallback := services.DemoUser
	if cfg.FallbackUserID > 0 {
		fallback.UserID = cfg.FallbackUserID
	}
	return &Mock{
		rooms:     rooms,
		messages:  messages,
		proposals: proposals,
		identity:  cfg.Identity,
		fallback:  fallback,
		delay:     cfg.Delay,
		logger:    cfg.Logger.With().Str("component", "directory-mock").Logger(),
	}
}

// Messages exposes the mock's history store.
func (m *Mock) Messages() *services.MessageService {
	return m.messages
}

func (m *Mock) user() models.Participant {
	if m.identity != nil {
		if u, ok := m.identity.User(); ok {
			return models.Participant{UserID: u.UserID, Nickname: u.Nickname}
		}
	}
	return m.fallback
}

// wait models network latency. It honours ctx.
func (m *Mock) wait(ctx context.Context) error {
	if m.delay <= 0 {
		return failure.Fetch(ctx.Err())
	}
	t := time.NewTimer(m.delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return failure.Fetch(ctx.Err())
	}
}

func (m *Mock) fail(err error) error {
	return failure.Fetch(&APIError{
		Code:    services.Code(err),
		Message: err.Error(),
		Status:  services.Status(err),
	})
}

func (m *Mock) ListRooms(ctx context.Context, page, size int, region string) (*models.Page[models.Room], error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	out := m.rooms.ListRooms(page, size, region)
	return &out, nil
}

func (m *Mock) GetMyRooms(ctx context.Context, page, size int) (*models.Page[models.Room], error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	out := m.rooms.MyRooms(m.user().UserID, page, size)
	return &out, nil
}

func (m *Mock) CreateRoom(ctx context.Context, req models.CreateRoomRequest) (*models.Room, error) {
	if err := ValidateCreateRoom(req); err != nil {
		return nil, err
	}
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	room, err := m.rooms.CreateRoom(m.user(), req)
	if err != nil {
		return nil, m.fail(err)
	}
	return room, nil
}

func (m *Mock) JoinRoom(ctx context.Context, roomID int64) (*models.JoinRoomResponse, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	members, err := m.rooms.JoinRoom(roomID, m.user())
	if err != nil {
		return nil, m.fail(err)
	}
	m.logger.Debug().Int64("roomID", roomID).Msg("joined")
	return &models.JoinRoomResponse{Members: members}, nil
}

func (m *Mock) GetRoomDetails(ctx context.Context, roomID int64) (*models.RoomDetails, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	details, err := m.rooms.RoomDetails(roomID)
	if err != nil {
		return nil, m.fail(err)
	}
	return details, nil
}

func (m *Mock) LeaveRoom(ctx context.Context, roomID int64) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	if err := m.rooms.LeaveRoom(roomID, m.user().UserID); err != nil {
		return m.fail(err)
	}
	m.logger.Debug().Int64("roomID", roomID).Msg("left")
	return nil
}

func (m *Mock) CreateProposal(ctx context.Context, payload models.ProposalPayload) (*models.Proposal, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if payload.RoomID > 0 && !m.rooms.Exists(payload.RoomID) {
		return nil, m.fail(services.ErrRoomNotFound)
	}
	p, err := m.proposals.Create(payload)
	if err != nil {
		return nil, m.fail(err)
	}
	return p, nil
}

func (m *Mock) UpdateProposal(ctx context.Context, proposalID int64, patch models.ProposalPatch) (*models.Proposal, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	p, err := m.proposals.Update(proposalID, patch)
	if err != nil {
		return nil, m.fail(err)
	}
	return p, nil
}

func (m *Mock) GetProposal(ctx context.Context, proposalID int64) (*models.Proposal, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	p, err := m.proposals.Get(proposalID)
	if err != nil {
		return nil, m.fail(err)
	}
	return p, nil
}
