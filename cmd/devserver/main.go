// Command devserver runs an in-memory room directory and message broker
// that roomchat and the session layer can talk to.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/adi-253/roomline/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	fs := pflag.NewFlagSet("devserver", pflag.ContinueOnError)

	var (
		port     = fs.StringP("port", "p", "", "listen port, overrides PORT")
		logLevel = fs.StringP("log-level", "l", "", "log level, overrides LOG_LEVEL")
	)
	if err := fs.Parse(os.Args[1:]); err != nil {
		logger.Fatal().Err(err).Msg("failed to parse command line arguments")
	}

	// Load configuration from environment
	cfg, err := config.Load(&logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if *port != "" {
		cfg.ServerPort = *port
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse loglevel")
	}
	logger = logger.Level(lvl)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newServer(cfg, &logger).run(ctx); err != nil {
		logger.Error().Err(err).Msg("unexpected server error")
		cancel()
		os.Exit(1)
	}
}
