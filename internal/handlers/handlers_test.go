package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/adi-253/roomline/internal/auth"
	"github.com/adi-253/roomline/internal/models"
	"github.com/adi-253/roomline/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router   http.Handler
	issuer   *auth.Issuer
	rooms    *services.RoomService
	messages *services.MessageService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	messages := services.NewMessageService()
	proposals := services.NewProposalService()
	rooms := services.NewRoomService(messages, proposals)
	services.Seed(rooms, messages, proposals)
	users := services.NewUserService(services.SeedParticipants...)
	issuer := auth.NewIssuer(auth.IssuerConfig{Secret: "test-secret"})

	roomHandler := NewRoomHandler(rooms)
	proposalHandler := NewProposalHandler(proposals, rooms)
	authHandler := NewAuthHandler(users, issuer)

	r := chi.NewRouter()
	r.Get("/health", HealthCheck)
	r.Post("/api/auth/sign-in", authHandler.SignIn)
	r.Group(func(r chi.Router) {
		r.Use(Authenticate(issuer))
		r.Get("/api/discussion-rooms/retrieveTotal", roomHandler.ListRooms)
		r.Get("/api/discussion-rooms/retrieveMyJoined", roomHandler.MyRooms)
		r.Post("/api/discussion-rooms/create", roomHandler.CreateRoom)
		r.Get("/api/discussion-rooms/{id}", roomHandler.GetRoom)
		r.Post("/api/discussion-rooms/{id}/join", roomHandler.JoinRoom)
		r.Delete("/api/discussion-rooms/{id}/leave", roomHandler.LeaveRoom)
		r.Post("/api/proposals", proposalHandler.Create)
		r.Patch("/api/proposals/{id}", proposalHandler.Update)
		r.Get("/api/proposals/{id}", proposalHandler.Get)
	})

	return &testEnv{router: r, issuer: issuer, rooms: rooms, messages: messages}
}

func (e *testEnv) token(t *testing.T, user models.Participant) string {
	t.Helper()
	token, err := e.issuer.Issue(user.UserID, user.Nickname)
	require.NoError(t, err)
	return token
}

// do performs a request and decodes the envelope, returning the status.
func (e *testEnv) do(t *testing.T, method, path, token string, body any, data any) (int, models.Response[json.RawMessage]) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var env models.Response[json.RawMessage]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if data != nil && env.OK() {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return rec.Code, env
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestAuthenticateRejectsMissingAndBadTokens(t *testing.T) {
	env := newTestEnv(t)

	code, resp := env.do(t, http.MethodGet, "/api/discussion-rooms/retrieveTotal", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHORIZED", resp.Code)

	code, _ = env.do(t, http.MethodGet, "/api/discussion-rooms/retrieveTotal", "not-a-jwt", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		query  string
		want   string
	}{
		{"header", "Bearer abc", "", "abc"},
		{"wrong scheme", "Basic abc", "", ""},
		{"query fallback", "", "access_token=xyz", "xyz"},
		{"header wins", "Bearer abc", "access_token=xyz", "abc"},
		{"none", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/chat?"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, BearerToken(req))
		})
	}
}

func TestSignIn(t *testing.T) {
	env := newTestEnv(t)

	var out models.SignInResponse
	code, resp := env.do(t, http.MethodPost, "/api/auth/sign-in", "", models.SignInRequest{Nickname: "새사용자"}, &out)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, models.CodeSuccess, resp.Code)
	assert.Equal(t, int64(6), out.User.UserID)

	claims, err := env.issuer.Verify(out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "새사용자", claims.Nickname)

	code, resp = env.do(t, http.MethodPost, "/api/auth/sign-in", "", models.SignInRequest{Nickname: " "}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, services.CodeInvalidRequest, resp.Code)
}

func TestRoomLifecycle(t *testing.T) {
	env := newTestEnv(t)
	newcomer := models.Participant{UserID: 42, Nickname: "newcomer"}
	token := env.token(t, newcomer)

	var page models.Page[models.Room]
	code, _ := env.do(t, http.MethodGet, "/api/discussion-rooms/retrieveTotal?region=SEOUL", token, nil, &page)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, page.Content, 1)
	assert.Equal(t, int64(3), page.Content[0].RoomID)

	var joined models.JoinRoomResponse
	code, _ = env.do(t, http.MethodPost, "/api/discussion-rooms/1/join", token, nil, &joined)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, joined.Members, newcomer)

	code, resp := env.do(t, http.MethodPost, "/api/discussion-rooms/1/join", token, nil, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, services.CodeAlreadyMember, resp.Code)

	var mine models.Page[models.Room]
	code, _ = env.do(t, http.MethodGet, "/api/discussion-rooms/retrieveMyJoined", token, nil, &mine)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, mine.Content, 1)

	var details models.RoomDetails
	code, _ = env.do(t, http.MethodGet, "/api/discussion-rooms/1", token, nil, &details)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "부천역 소음 문제에 대해 논의해봅시다", details.Title)
	assert.Len(t, details.Messages, 4)
	assert.Len(t, details.Participants, 5)
	require.NotNil(t, details.Proposal)
	assert.Equal(t, int64(101), details.Proposal.ProposalID)

	code, _ = env.do(t, http.MethodDelete, "/api/discussion-rooms/1/leave", token, nil, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.False(t, env.rooms.IsMember(1, newcomer.UserID))

	code, resp = env.do(t, http.MethodDelete, "/api/discussion-rooms/1/leave", token, nil, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, services.CodeNotMember, resp.Code)
}

func TestRoomErrors(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, services.DemoUser)

	code, resp := env.do(t, http.MethodGet, "/api/discussion-rooms/99", token, nil, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, services.CodeRoomNotFound, resp.Code)

	code, resp = env.do(t, http.MethodPost, "/api/discussion-rooms/abc/join", token, nil, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, services.CodeInvalidRequest, resp.Code)

	code, _ = env.do(t, http.MethodPost, "/api/discussion-rooms/create", token, models.CreateRoomRequest{Title: "  "}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestCreateRoomMakesCallerMember(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, services.DemoUser)

	var room models.Room
	code, _ := env.do(t, http.MethodPost, "/api/discussion-rooms/create", token, models.CreateRoomRequest{
		Title:  "새 토론방",
		Region: "SEOUL",
	}, &room)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(4), room.RoomID)
	assert.Equal(t, models.AccessPublic, room.AccessLevel)
	assert.Equal(t, 1, room.ParticipantCount)
	assert.True(t, env.rooms.IsMember(room.RoomID, services.DemoUser.UserID))
}

func TestProposalEndpoints(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, services.DemoUser)

	var created models.Proposal
	code, _ := env.do(t, http.MethodPost, "/api/proposals", token, models.ProposalPayload{
		Title:  "공원 벤치 교체",
		RoomID: 2,
	}, &created)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, models.ProposalPendingConsent, created.Status)

	content := "벤치 열 개를 교체합니다."
	var updated models.Proposal
	code, _ = env.do(t, http.MethodPatch, "/api/proposals/"+itoa(created.ProposalID), token, models.ProposalPatch{Content: &content}, &updated)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, content, updated.Content)
	assert.Equal(t, "공원 벤치 교체", updated.Title)

	var fetched models.Proposal
	code, _ = env.do(t, http.MethodGet, "/api/proposals/"+itoa(created.ProposalID), token, nil, &fetched)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, content, fetched.Content)

	code, resp := env.do(t, http.MethodGet, "/api/proposals/999", token, nil, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, services.CodeProposalNotFound, resp.Code)

	code, resp = env.do(t, http.MethodPost, "/api/proposals", token, models.ProposalPayload{Title: "x", RoomID: 77}, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, services.CodeRoomNotFound, resp.Code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
