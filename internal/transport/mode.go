package transport

import (
	"github.com/adi-253/roomline/internal/config"
	"github.com/rs/zerolog"
)

// New builds the transport the configuration selects. It is called once;
// callers never branch on which variant they got.
func New(cfg *config.Config, creds Credentials, logger *zerolog.Logger) Transport {
	if cfg.UseMock {
		return NewSimulated(SimulatedConfig{
			MessageInterval: cfg.MockMessageInterval,
			PublishDelay:    cfg.MockPublishDelay,
			UserID:          cfg.MockUserID,
			Logger:          logger,
		})
	}
	return NewSocket(SocketConfig{
		URL:               cfg.WebSocketURL,
		Credentials:       creds,
		ReconnectDelay:    cfg.ReconnectDelay,
		HeartbeatIncoming: cfg.HeartbeatIncoming,
		HeartbeatOutgoing: cfg.HeartbeatOutgoing,
		HandshakeTimeout:  cfg.RequestTimeout,
		Logger:            logger,
	})
}

var (
	_ Transport = (*Simulated)(nil)
	_ Transport = (*Socket)(nil)
)
