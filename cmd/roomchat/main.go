// Command roomchat opens a discussion room in the terminal. Lines typed
// on stdin are sent to the room; /rooms, /join, /retry, /leave and /quit
// are commands.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/adi-253/roomline/internal/auth"
	"github.com/adi-253/roomline/internal/config"
	"github.com/adi-253/roomline/internal/directory"
	"github.com/adi-253/roomline/internal/models"
	"github.com/adi-253/roomline/internal/services"
	"github.com/adi-253/roomline/internal/session"
	"github.com/adi-253/roomline/internal/transport"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	fs := pflag.NewFlagSet("roomchat", pflag.ContinueOnError)

	var (
		roomID   = fs.Int64P("room", "r", 1, "room to open")
		nickname = fs.StringP("nickname", "n", "", "nickname, overrides ROOMLINE_NICKNAME")
		mock     = fs.BoolP("mock", "m", false, "use the in-process directory and simulated transport")
		logLevel = fs.StringP("log-level", "l", "", "log level, overrides LOG_LEVEL")
	)
	if err := fs.Parse(os.Args[1:]); err != nil {
		logger.Fatal().Err(err).Msg("failed to parse command line arguments")
	}

	cfg, err := config.Load(&logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if *mock {
		cfg.UseMock = true
	}
	if *nickname != "" {
		cfg.Nickname = *nickname
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

	user, err := signIn(ctx, cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to sign in")
	}

	dir := directory.New(cfg, user, user, &logger)
	controller := session.NewController(session.Config{
		Directory: dir,
		Transport: transport.New(cfg, user, &logger),
		Identity:  user,
		Logger:    &logger,
	})
	defer controller.ForceTeardown()

	c := newChat(controller, dir, os.Stdout)
	stop := controller.Observe(c.render)
	defer stop()

	c.enter(ctx, *roomID)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok || !c.handle(ctx, line) {
				return
			}
		}
	}
}

// signIn resolves the user the session acts as. The mock needs no
// credentials; against the dev server a configured token is used as is,
// otherwise the nickname is exchanged for one.
func signIn(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*auth.Session, error) {
	user := auth.NewSession(cfg.AccessToken)
	nickname := strings.TrimSpace(cfg.Nickname)

	if cfg.UseMock {
		if nickname == "" {
			nickname = services.DemoUser.Nickname
		}
		user.Login(models.UserInfo{UserID: cfg.MockUserID, Nickname: nickname}, "mock-token")
		return user, nil
	}
	if user.Authenticated() {
		return user, nil
	}
	if nickname == "" {
		return nil, fmt.Errorf("set --nickname or ROOMLINE_ACCESS_TOKEN to sign in")
	}

	client := directory.NewClient(directory.Config{
		BaseURL:     cfg.APIBaseURL,
		Credentials: user,
		Timeout:     cfg.RequestTimeout,
		Logger:      logger,
	})
	resp, err := client.SignIn(ctx, nickname)
	if err != nil {
		return nil, err
	}
	user.Login(resp.User, resp.AccessToken)
	logger.Info().Int64("user_id", resp.User.UserID).Str("nickname", resp.User.Nickname).Msg("signed in")
	return user, nil
}
