package session

import (
	"context"
	"testing"
	"time"

	"github.com/adi-253/roomline/internal/auth"
	"github.com/adi-253/roomline/internal/directory"
	"github.com/adi-253/roomline/internal/models"
	"github.com/adi-253/roomline/internal/transport"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedRoomEndToEnd(t *testing.T) {
	logger := zerolog.Nop()
	user := auth.NewSession("")
	user.Login(models.UserInfo{UserID: 1, Nickname: "현재사용자"}, "mock-token")

	dir := directory.NewMock(directory.MockConfig{Identity: user, Logger: &logger})
	tr := transport.NewSimulated(transport.SimulatedConfig{
		MessageInterval: time.Hour,
		PublishDelay:    10 * time.Millisecond,
		UserID:          1,
		Logger:          &logger,
	})
	c := NewController(Config{Directory: dir, Transport: tr, Identity: user, Logger: &logger})
	defer c.ForceTeardown()

	// the demo user already belongs to room 1
	require.NoError(t, c.Enter(context.Background(), 1))
	snap := c.Snapshot()
	require.Equal(t, Live, snap.Phase)
	require.Len(t, snap.Messages, 4)
	require.NotNil(t, snap.Proposal)

	require.NoError(t, c.Send("hello"))
	require.Eventually(t, func() bool {
		return len(c.Snapshot().Messages) == 5
	}, time.Second, 5*time.Millisecond)

	last := c.Snapshot().Messages[4]
	assert.Equal(t, "hello", last.Content)
	assert.Equal(t, "현재사용자", last.SenderNickname)
	assert.Equal(t, int64(1000), last.MessageID)

	ok, err := c.Leave(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, tr.Connected())
	assert.Equal(t, Disconnected, c.Snapshot().ConnectionStatus)
}
