package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/adi-253/roomline/internal/auth"
	"github.com/adi-253/roomline/internal/config"
	"github.com/adi-253/roomline/internal/handlers"
	"github.com/adi-253/roomline/internal/services"
	ws "github.com/adi-253/roomline/internal/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

const defaultShutdownDeadline = 10 * time.Second

// server is the in-memory room directory plus the message broker.
type server struct {
	router http.Handler
	hub    *ws.Hub
	addr   string
	logger zerolog.Logger
}

func newServer(cfg *config.Config, logger *zerolog.Logger) *server {
	// Initialize services
	messages := services.NewMessageService()
	proposals := services.NewProposalService()
	rooms := services.NewRoomService(messages, proposals)
	services.Seed(rooms, messages, proposals)
	users := services.NewUserService(services.SeedParticipants...)

	issuer := auth.NewIssuer(auth.IssuerConfig{Secret: cfg.TokenSecret})
	hub := ws.NewHub(ws.HubConfig{Messages: messages, Logger: logger})

	// Initialize handlers
	roomHandler := handlers.NewRoomHandler(rooms)
	proposalHandler := handlers.NewProposalHandler(proposals, rooms)
	authHandler := handlers.NewAuthHandler(users, issuer)
	wsHandler := ws.NewHandler(hub, rooms, issuer)

	srvLogger := logger.With().Str("component", "api-server").Logger()

	// Set up router with middleware
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(srvLogger))
	r.Use(middleware.Recoverer)

	srvLogger.Info().Strs("origins", cfg.CORSOrigins).Msg("CORS allowed origins")
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", handlers.HealthCheck)

	// Message broker
	r.Get("/chat", wsHandler.ServeWS)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/sign-in", authHandler.SignIn)

		r.Group(func(r chi.Router) {
			r.Use(handlers.Authenticate(issuer))

			r.Route("/discussion-rooms", func(r chi.Router) {
				r.Get("/retrieveTotal", roomHandler.ListRooms)
				r.Get("/retrieveMyJoined", roomHandler.MyRooms)
				r.Post("/create", roomHandler.CreateRoom)
				r.Get("/{id}", roomHandler.GetRoom)
				r.Post("/{id}/join", roomHandler.JoinRoom)
				r.Delete("/{id}/leave", roomHandler.LeaveRoom)
			})
			r.Route("/proposals", func(r chi.Router) {
				r.Post("/", proposalHandler.Create)
				r.Get("/{id}", proposalHandler.Get)
				r.Patch("/{id}", proposalHandler.Update)
			})
		})
	})

	return &server{
		router: r,
		hub:    hub,
		addr:   net.JoinHostPort("", cfg.ServerPort),
		logger: srvLogger,
	}
}

// run serves until ctx is done, then shuts the listener and the broker down.
func (s *server) run(ctx context.Context) error {
	go s.hub.Run(ctx)

	httpSrv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.addr).Msg("roomline dev server starting")
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownDeadline)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info().Msg("server stopped")
	return nil
}

// requestLogger logs one line per request.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Debug().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Dur("took", time.Since(start)).
					Str("request_id", middleware.GetReqID(r.Context())).
					Msg("request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
