// Package directory is the REST client of the discussion-room directory:
// room listing, membership, room details and proposals.
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/adi-253/roomline/internal/failure"
	"github.com/adi-253/roomline/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultRequestTimeout = 10 * time.Second

// ErrTitleRequired rejects room creation with a blank title.
var ErrTitleRequired = errors.New("room title is required")

// Credentials supplies the bearer token. It is queried on every request.
type Credentials interface {
	Token() string
}

// APIError is a response whose envelope code is not SUCCESS.
type APIError struct {
	Code    string
	Message string
	Status  int
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("directory error %s (status %d)", e.Code, e.Status)
	}
	return e.Message
}

// IsAlreadyMember reports whether err is the directory telling a caller it
// already belongs to the room it tried to join.
func IsAlreadyMember(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return alreadyMemberMessage(apiErr.Message)
}

func alreadyMemberMessage(msg string) bool {
	return strings.Contains(msg, "이미 참여") ||
		strings.Contains(strings.ToLower(msg), "already a member")
}

type Config struct {
	BaseURL     string
	Credentials Credentials
	Timeout     time.Duration
	HTTPClient  *http.Client
	Logger      *zerolog.Logger
}

// Client is the HTTP implementation of the room directory.
type Client struct {
	baseURL     string
	credentials Credentials
	httpClient  *http.Client
	logger      zerolog.Logger
}

func NewClient(cfg Config) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		credentials: cfg.Credentials,
		httpClient:  cfg.HTTPClient,
		logger:      cfg.Logger.With().Str("component", "directory").Logger(),
	}
	if c.httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultRequestTimeout
		}
		c.httpClient = &http.Client{Timeout: timeout}
	}
	return c
}

// doRequest executes a request against the directory API and decodes the
// envelope. On success the envelope data is decoded into out when out is
// non-nil. Every failure is tagged failure.ErrFetch.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, query url.Values, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return failure.Fetch(fmt.Errorf("failed to marshal request body: %w", err))
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	target := c.baseURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return failure.Fetch(fmt.Errorf("failed to create request: %w", err))
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.credentials != nil {
		if token := c.credentials.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	logger := c.logger.With().
		Str("method", method).
		Str("endpoint", endpoint).
		Str("requestID", requestID).
		Logger()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Debug().Err(err).Msg("request failed")
		return failure.Fetch(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure.Fetch(fmt.Errorf("failed to read response body: %w", err))
	}

	var envelope models.Response[json.RawMessage]
	if err := json.Unmarshal(respBody, &envelope); err != nil || envelope.Code == "" {
		logger.Debug().Int("status", resp.StatusCode).Msg("response without envelope")
		if resp.StatusCode >= 400 {
			return failure.Fetch(&APIError{
				Code:    http.StatusText(resp.StatusCode),
				Message: strings.TrimSpace(string(respBody)),
				Status:  resp.StatusCode,
			})
		}
		return failure.Fetch(fmt.Errorf("failed to parse response envelope (status %d)", resp.StatusCode))
	}

	if !envelope.OK() {
		logger.Debug().
			Int("status", resp.StatusCode).
			Str("code", envelope.Code).
			Msg("non-success response")
		return failure.Fetch(&APIError{
			Code:    envelope.Code,
			Message: envelope.Message,
			Status:  resp.StatusCode,
		})
	}

	if out != nil && len(envelope.Data) > 0 && string(envelope.Data) != "null" {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return failure.Fetch(fmt.Errorf("failed to parse response data: %w", err))
		}
	}
	logger.Debug().Int("status", resp.StatusCode).Msg("request done")
	return nil
}

func pageQuery(page, size int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	return q
}

func roomPath(roomID int64, suffix string) string {
	return "/api/discussion-rooms/" + strconv.FormatInt(roomID, 10) + suffix
}

// ListRooms returns one page of all rooms, optionally filtered by region.
func (c *Client) ListRooms(ctx context.Context, page, size int, region string) (*models.Page[models.Room], error) {
	q := pageQuery(page, size)
	if region != "" {
		q.Set("region", region)
	}
	var out models.Page[models.Room]
	if err := c.doRequest(ctx, http.MethodGet, "/api/discussion-rooms/retrieveTotal", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetMyRooms returns one page of the rooms the caller has joined.
func (c *Client) GetMyRooms(ctx context.Context, page, size int) (*models.Page[models.Room], error) {
	var out models.Page[models.Room]
	if err := c.doRequest(ctx, http.MethodGet, "/api/discussion-rooms/retrieveMyJoined", pageQuery(page, size), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateRoom creates a room. A blank title is rejected without a request.
func (c *Client) CreateRoom(ctx context.Context, req models.CreateRoomRequest) (*models.Room, error) {
	if err := ValidateCreateRoom(req); err != nil {
		return nil, err
	}
	var out models.Room
	if err := c.doRequest(ctx, http.MethodPost, "/api/discussion-rooms/create", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidateCreateRoom checks a creation request before any network call.
func ValidateCreateRoom(req models.CreateRoomRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return failure.Validation(ErrTitleRequired)
	}
	return nil
}

// JoinRoom adds the caller to the room. A directory answer saying the
// caller already belongs to the room comes back as an APIError for which
// IsAlreadyMember is true.
func (c *Client) JoinRoom(ctx context.Context, roomID int64) (*models.JoinRoomResponse, error) {
	var out models.JoinRoomResponse
	if err := c.doRequest(ctx, http.MethodPost, roomPath(roomID, "/join"), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetRoomDetails fetches the title, proposal, history and participants.
func (c *Client) GetRoomDetails(ctx context.Context, roomID int64) (*models.RoomDetails, error) {
	var out models.RoomDetails
	if err := c.doRequest(ctx, http.MethodGet, roomPath(roomID, ""), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LeaveRoom removes the caller from the room.
func (c *Client) LeaveRoom(ctx context.Context, roomID int64) error {
	return c.doRequest(ctx, http.MethodDelete, roomPath(roomID, "/leave"), nil, nil, nil)
}

func (c *Client) CreateProposal(ctx context.Context, payload models.ProposalPayload) (*models.Proposal, error) {
	var out models.Proposal
	if err := c.doRequest(ctx, http.MethodPost, "/api/proposals", nil, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProposal(ctx context.Context, proposalID int64, patch models.ProposalPatch) (*models.Proposal, error) {
	var out models.Proposal
	endpoint := "/api/proposals/" + strconv.FormatInt(proposalID, 10)
	if err := c.doRequest(ctx, http.MethodPatch, endpoint, nil, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetProposal(ctx context.Context, proposalID int64) (*models.Proposal, error) {
	var out models.Proposal
	endpoint := "/api/proposals/" + strconv.FormatInt(proposalID, 10)
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SignIn exchanges a nickname for a bearer token on the dev server.
func (c *Client) SignIn(ctx context.Context, nickname string) (*models.SignInResponse, error) {
	var out models.SignInResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/sign-in", nil, models.SignInRequest{Nickname: nickname}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
