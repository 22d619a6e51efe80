package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// DevTokenSecret is the signing key the dev server falls back to when
// ROOMLINE_TOKEN_SECRET is not set. Never use it outside local development.
const DevTokenSecret = "roomline-dev-secret"

// Config holds all environment configuration values for the client and the
// dev server. Values come from the process environment, optionally seeded
// from a .env file.
type Config struct {
	// UseMock selects the in-process room directory and the simulated
	// transport instead of the REST API and the socket broker.
	UseMock bool `env:"ROOMLINE_USE_MOCK" envDefault:"false"`

	// APIBaseURL is the REST root of the room directory
	APIBaseURL string `env:"ROOMLINE_API_BASE_URL" envDefault:"http://localhost:8080"`

	// WebSocketURL is the broker endpoint the socket transport dials
	WebSocketURL string `env:"ROOMLINE_WS_URL" envDefault:"ws://localhost:8080/chat"`

	// AccessToken seeds the auth session with a bearer credential
	AccessToken string `env:"ROOMLINE_ACCESS_TOKEN"`

	// Nickname is the display name used when signing in to the dev server
	Nickname string `env:"ROOMLINE_NICKNAME"`

	ReconnectDelay    time.Duration `env:"ROOMLINE_RECONNECT_DELAY" envDefault:"5s"`
	HeartbeatIncoming time.Duration `env:"ROOMLINE_HEARTBEAT_INCOMING" envDefault:"4s"`
	HeartbeatOutgoing time.Duration `env:"ROOMLINE_HEARTBEAT_OUTGOING" envDefault:"4s"`

	// Simulation timings
	MockMessageInterval time.Duration `env:"ROOMLINE_MOCK_MESSAGE_INTERVAL" envDefault:"30s"`
	MockPublishDelay    time.Duration `env:"ROOMLINE_MOCK_PUBLISH_DELAY" envDefault:"300ms"`
	MockAPIDelay        time.Duration `env:"ROOMLINE_MOCK_API_DELAY" envDefault:"1s"`
	MockUserID          int64         `env:"ROOMLINE_MOCK_USER_ID" envDefault:"1"`

	RequestTimeout time.Duration `env:"ROOMLINE_REQUEST_TIMEOUT" envDefault:"10s"`

	// ServerPort is the port the dev server listens on
	ServerPort string `env:"PORT" envDefault:"8080"`

	// CORSOrigins lists the browser origins the dev server accepts
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:5173,http://localhost:3000" envSeparator:","`

	// TokenSecret signs the dev server's bearer tokens
	TokenSecret string `env:"ROOMLINE_TOKEN_SECRET"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads a .env file if present, then parses the environment into a
// Config. A missing .env is not an error as real environment variables may
// be set instead.
func Load(logger *zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
		logger.Debug().Msg("no .env file found, using environment variables")
	}

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}

	if cfg.TokenSecret == "" {
		logger.Warn().Msg("ROOMLINE_TOKEN_SECRET is not set, using the development secret")
		cfg.TokenSecret = DevTokenSecret
	}
	return cfg, nil
}

// Parse builds a Config from the current environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects timings the transports cannot run with.
func (c *Config) Validate() error {
	var errs []error
	positive := map[string]time.Duration{
		"ROOMLINE_RECONNECT_DELAY":       c.ReconnectDelay,
		"ROOMLINE_HEARTBEAT_INCOMING":    c.HeartbeatIncoming,
		"ROOMLINE_HEARTBEAT_OUTGOING":    c.HeartbeatOutgoing,
		"ROOMLINE_MOCK_MESSAGE_INTERVAL": c.MockMessageInterval,
		"ROOMLINE_REQUEST_TIMEOUT":       c.RequestTimeout,
	}
	for name, d := range positive {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}
	if c.MockPublishDelay < 0 {
		errs = append(errs, fmt.Errorf("ROOMLINE_MOCK_PUBLISH_DELAY must not be negative, got %s", c.MockPublishDelay))
	}
	if c.MockAPIDelay < 0 {
		errs = append(errs, fmt.Errorf("ROOMLINE_MOCK_API_DELAY must not be negative, got %s", c.MockAPIDelay))
	}
	if !c.UseMock && strings.TrimSpace(c.WebSocketURL) == "" {
		errs = append(errs, errors.New("ROOMLINE_WS_URL is required unless ROOMLINE_USE_MOCK is set"))
	}
	return errors.Join(errs...)
}
