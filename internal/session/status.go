package session

import "github.com/adi-253/roomline/internal/models"

// Phase is where a session stands between entering and leaving a room.
type Phase int

const (
	NoSession Phase = iota
	LoadingHistory
	OpeningTransport
	Live
	Failed
)

func (p Phase) String() string {
	switch p {
	case NoSession:
		return "no-session"
	case LoadingHistory:
		return "loading-history"
	case OpeningTransport:
		return "opening-transport"
	case Live:
		return "live"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// ConnectionStatus is the transport's state as the view should show it.
type ConnectionStatus int

const (
	// Idle means no transport has been engaged for the current session
	Idle ConnectionStatus = iota
	Connecting
	Connected
	Disconnected
	ConnectionFailed
)

func (s ConnectionStatus) String() string {
	switch s {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	case ConnectionFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Snapshot is a copy of the session state. Callers own its slices.
type Snapshot struct {
	// RoomID is 0 when there is no session
	RoomID           int64
	Phase            Phase
	ConnectionStatus ConnectionStatus
	HistoryLoaded    bool

	// Loading is set while the room details are being fetched and
	// Connecting while the transport connect is pending
	Loading    bool
	Connecting bool

	Title        string
	Proposal     *models.Proposal
	Messages     []models.ChatMessage
	Participants []models.Participant

	// Error is the last user-facing failure, empty when none
	Error string
}

// Active reports whether a room session exists.
func (s Snapshot) Active() bool {
	return s.RoomID != 0
}

func (s Snapshot) clone() Snapshot {
	out := s
	out.Messages = append([]models.ChatMessage(nil), s.Messages...)
	out.Participants = append([]models.Participant(nil), s.Participants...)
	if s.Proposal != nil {
		p := *s.Proposal
		out.Proposal = &p
	}
	return out
}
