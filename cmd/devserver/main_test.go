package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/adi-253/roomline/internal/auth"
	"github.com/adi-253/roomline/internal/config"
	"github.com/adi-253/roomline/internal/directory"
	"github.com/adi-253/roomline/internal/models"
	"github.com/adi-253/roomline/internal/session"
	"github.com/adi-253/roomline/internal/transport"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type devClient struct {
	user       *auth.Session
	dir        *directory.Client
	socket     *transport.Socket
	controller *session.Controller
}

func startDevServer(t *testing.T) (s *server, apiURL, wsURL string) {
	t.Helper()
	logger := zerolog.Nop()
	cfg := &config.Config{
		TokenSecret: "test-secret",
		CORSOrigins: []string{"*"},
		ServerPort:  "0",
	}
	s = newServer(cfg, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	go s.hub.Run(ctx)
	srv := httptest.NewServer(s.router)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return s, srv.URL, "ws" + strings.TrimPrefix(srv.URL, "http") + "/chat"
}

func newDevClient(t *testing.T, apiURL, wsURL, nickname string) *devClient {
	t.Helper()
	logger := zerolog.Nop()
	user := auth.NewSession("")
	dir := directory.NewClient(directory.Config{BaseURL: apiURL, Credentials: user, Logger: &logger})

	resp, err := dir.SignIn(context.Background(), nickname)
	require.NoError(t, err)
	user.Login(resp.User, resp.AccessToken)

	socket := transport.NewSocket(transport.SocketConfig{
		URL:               wsURL,
		Credentials:       user,
		ReconnectDelay:    20 * time.Millisecond,
		HeartbeatIncoming: time.Second,
		HeartbeatOutgoing: 100 * time.Millisecond,
		HandshakeTimeout:  time.Second,
		Logger:            &logger,
	})
	c := session.NewController(session.Config{
		Directory: dir,
		Transport: socket,
		Identity:  user,
		Logger:    &logger,
	})
	t.Cleanup(c.ForceTeardown)
	return &devClient{user: user, dir: dir, socket: socket, controller: c}
}

func TestHealthRoute(t *testing.T) {
	_, apiURL, _ := startDevServer(t)
	resp, err := http.Get(apiURL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTwoClientsChatThroughDevServer(t *testing.T) {
	s, apiURL, wsURL := startDevServer(t)
	alice := newDevClient(t, apiURL, wsURL, "alice")
	bob := newDevClient(t, apiURL, wsURL, "bob")
	ctx := context.Background()

	require.NoError(t, alice.controller.Enter(ctx, 1))
	require.NoError(t, bob.controller.Enter(ctx, 1))
	// SUBSCRIBE has no receipt, so wait for the broker to register both
	require.Eventually(t, func() bool {
		return s.hub.SubscriberCount(1) == 2
	}, time.Second, 5*time.Millisecond)

	snap := bob.controller.Snapshot()
	require.Equal(t, session.Live, snap.Phase)
	assert.Equal(t, session.Connected, snap.ConnectionStatus)
	assert.Len(t, snap.Messages, 4)
	assert.Len(t, snap.Participants, 6, "both newcomers joined the seeded four")

	require.NoError(t, alice.controller.Send("안녕하세요"))

	for _, c := range []*devClient{alice, bob} {
		require.Eventually(t, func() bool {
			return len(c.controller.Snapshot().Messages) == 5
		}, 2*time.Second, 10*time.Millisecond)
		last := c.controller.Snapshot().Messages[4]
		assert.Equal(t, "안녕하세요", last.Content)
		assert.Equal(t, "alice", last.SenderNickname)
	}

	// the message was stored, so a fresh fetch sees it
	details, err := bob.dir.GetRoomDetails(ctx, 1)
	require.NoError(t, err)
	require.Len(t, details.Messages, 5)

	left, err := alice.controller.Leave(ctx)
	require.NoError(t, err)
	assert.True(t, left)
	assert.False(t, alice.socket.Connected())

	mine, err := alice.dir.GetMyRooms(ctx, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, mine.Content)
}

func TestEnterMissingRoomFails(t *testing.T) {
	_, apiURL, wsURL := startDevServer(t)
	c := newDevClient(t, apiURL, wsURL, "carol")

	err := c.controller.Enter(context.Background(), 99)
	require.Error(t, err)

	snap := c.controller.Snapshot()
	assert.Equal(t, session.Failed, snap.Phase)
	assert.Equal(t, session.ConnectionFailed, snap.ConnectionStatus)
	assert.NotEmpty(t, snap.Error)
	assert.False(t, c.socket.Connected())
}

func TestSignedInUserCreatesRoom(t *testing.T) {
	_, apiURL, wsURL := startDevServer(t)
	c := newDevClient(t, apiURL, wsURL, "dave")
	ctx := context.Background()

	room, err := c.dir.CreateRoom(ctx, models.CreateRoomRequest{Title: "새 토론", Region: "SEOUL"})
	require.NoError(t, err)

	// creating made dave a member; Enter tolerates the already-member join
	require.NoError(t, c.controller.Enter(ctx, room.RoomID))
	snap := c.controller.Snapshot()
	assert.Equal(t, "새 토론", snap.Title)
	assert.Empty(t, snap.Messages)
	require.Len(t, snap.Participants, 1)
	assert.Equal(t, "dave", snap.Participants[0].Nickname)
}
