// Package api exposes the portal over HTTP JSON.
//
// Public endpoints serve the catalogue, engagement logging and AI answers;
// /api/admin/* requires an HMAC-signed session cookie obtained via login.
// All responses use the {"data": ...} / {"error": {code, message}} envelope.
//
// File structure:
//   - server.go: server setup and lifecycle
//   - middleware.go: recovery, logging, CORS, security headers
//   - ratelimit.go: per-IP token bucket
//   - session.go: admin session cookies
//   - services.go, engagement.go, admin.go, ai.go, health.go: handlers
//   - response.go: JSON envelope helpers
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/govlk/citizenport/internal/portal"
)

const (
	// DefaultAddr is where the server listens when no address is configured.
	DefaultAddr = ":8080"

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout guards against slowloris clients.
	ReadHeaderTimeout = 10 * time.Second

	ReadTimeout  = 30 * time.Second
	WriteTimeout = 60 * time.Second
	IdleTimeout  = 120 * time.Second
)

// Config carries the server's operational knobs.
type Config struct {
	Addr          string
	CORSOrigins   []string
	TrustProxy    bool
	RatePerSec    float64
	RateBurst     int
	DefaultTopK   int
	SessionSecret []byte
	SecureCookies bool
}

// Deps are the services the handlers depend on.
type Deps struct {
	Portal  *portal.Store
	Answers AnswerService
	Chatter Chatter
}

// Server is the portal's HTTP server.
type Server struct {
	cfg    Config
	mux    *http.ServeMux
	logger *slog.Logger

	sessions *sessionManager
	limiter  *rateLimiter

	health     *HealthHandler
	services   *ServiceHandler
	engagement *EngagementHandler
	admin      *AdminHandler
	ai         *AIHandler
}

// NewServer creates a server with all routes registered.
func NewServer(cfg Config, deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 5
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 20
	}

	sessions := newSessionManager(cfg.SessionSecret, cfg.SecureCookies)

	// A typed nil *portal.Store would slip past the handler's nil check.
	var searchLog SearchLogger
	if deps.Portal != nil {
		searchLog = deps.Portal
	}

	s := &Server{
		cfg:      cfg,
		mux:      http.NewServeMux(),
		logger:   logger,
		sessions: sessions,
		limiter:  newRateLimiter(cfg.RatePerSec, cfg.RateBurst),

		health:     NewHealthHandler(),
		services:   NewServiceHandler(deps.Portal, sessions, logger),
		engagement: NewEngagementHandler(deps.Portal, sessions, logger),
		admin:      NewAdminHandler(deps.Portal, deps.Answers, sessions, logger),
		ai:         NewAIHandler(deps.Answers, deps.Chatter, searchLog, logger),
	}
	s.ai.defaultTopK = cfg.DefaultTopK

	s.services.RegisterRoutes(s.mux)
	s.engagement.RegisterRoutes(s.mux)
	s.admin.RegisterRoutes(s.mux)
	s.ai.RegisterRoutes(s.mux)

	return s
}

// Handler returns the full handler with middleware applied. The health
// probe bypasses the stack so load balancers are never rate limited.
func (s *Server) Handler() http.Handler {
	api := chain(s.mux,
		recoveryMiddleware(s.logger),
		loggingMiddleware(s.logger),
		securityHeadersMiddleware,
		corsMiddleware(s.cfg.CORSOrigins),
		rateLimitMiddleware(s.limiter, s.cfg.TrustProxy, s.logger),
	)

	root := http.NewServeMux()
	s.health.RegisterRoutes(root)
	root.Handle("/", api)
	return root
}

// Run starts the server and blocks until the context is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
