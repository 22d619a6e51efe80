package directory

import (
	"context"

	"github.com/adi-253/roomline/internal/config"
	"github.com/adi-253/roomline/internal/models"
	"github.com/rs/zerolog"
)

// Directory is the full set of room directory operations. Client talks to
// the REST API; Mock answers in process.
type Directory interface {
	ListRooms(ctx context.Context, page, size int, region string) (*models.Page[models.Room], error)
	GetMyRooms(ctx context.Context, page, size int) (*models.Page[models.Room], error)
	CreateRoom(ctx context.Context, req models.CreateRoomRequest) (*models.Room, error)
	JoinRoom(ctx context.Context, roomID int64) (*models.JoinRoomResponse, error)
	GetRoomDetails(ctx context.Context, roomID int64) (*models.RoomDetails, error)
	LeaveRoom(ctx context.Context, roomID int64) error
	CreateProposal(ctx context.Context, payload models.ProposalPayload) (*models.Proposal, error)
	UpdateProposal(ctx context.Context, proposalID int64, patch models.ProposalPatch) (*models.Proposal, error)
	GetProposal(ctx context.Context, proposalID int64) (*models.Proposal, error)
}

var (
	_ Directory = (*Client)(nil)
	_ Directory = (*Mock)(nil)
)

// New builds the directory the configuration selects.
func New(cfg *config.Config, creds Credentials, identity Identity, logger *zerolog.Logger) Directory {
	if cfg.UseMock {
		return NewMock(MockConfig{
			Delay:          cfg.MockAPIDelay,
			Identity:       identity,
			FallbackUserID: cfg.MockUserID,
			Logger:         logger,
		})
	}
	return NewClient(Config{
		BaseURL:     cfg.APIBaseURL,
		Credentials: creds,
		Timeout:     cfg.RequestTimeout,
		Logger:      logger,
	})
}
