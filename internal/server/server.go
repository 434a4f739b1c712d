// Package server wires the HTTP surface: routes, middleware, and the
// listener lifecycle.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fob/internal/admin"
	"fob/internal/click"
	"fob/internal/config"
	"fob/internal/httpx"
	"fob/internal/killswitch"
	"fob/internal/metrics"
	"fob/internal/redirect"
)

const greetingBody = "fob link redirector"

// Deps holds the request-serving dependencies of the server. Store may
// be nil when persistence is disabled.
type Deps struct {
	Redirect   *redirect.Handler
	Admin      *admin.Handler
	Metrics    *metrics.Metrics
	KillSwitch *killswitch.Switch
	Store      click.Store
}

// Server represents the HTTP server with all dependencies.
type Server struct {
	config *config.Config
	logger *slog.Logger
	deps   Deps
	server *http.Server
}

// New creates a new Server instance.
func New(cfg *config.Config, logger *slog.Logger, deps Deps) *Server {
	return &Server{
		config: cfg,
		logger: logger,
		deps:   deps,
	}
}

// Handler returns the fully composed HTTP handler: all routes wrapped
// in the middleware chain.
func (s *Server) Handler() http.Handler {
	return s.applyMiddleware(s.setupRoutes())
}

// Start starts the HTTP server and blocks until shutdown, triggered by
// ctx cancellation or an interrupt signal.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Server.Host, s.config.Server.Port),
		Handler:      s.Handler(),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	// Listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start server in a goroutine
	go func() {
		s.logger.Info("starting http server",
			"addr", s.server.Addr,
			"env", s.config.App.Environment,
		)
		serverErrors <- s.server.ListenAndServe()
	}()

	// Listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		s.logger.Info("context canceled, shutting down")
		return s.stop()

	case sig := <-shutdown:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.stop()
	}
}

// stop attempts graceful shutdown within the configured grace period,
// forcing a close when that fails.
func (s *Server) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		if closeErr := s.server.Close(); closeErr != nil {
			return fmt.Errorf("failed to close server: %w", closeErr)
		}
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	s.logger.Info("server stopped gracefully")
	return nil
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.greetingHandler)
	mux.HandleFunc("GET /status", s.statusHandler)

	mux.HandleFunc("GET /go/{slug}", s.deps.Redirect.Redirect)
	mux.HandleFunc("GET /go/{$}", s.deps.Redirect.Redirect)

	mux.Handle("GET /metrics", s.deps.Metrics.Handler())

	mux.HandleFunc("POST /admin/kill", s.deps.Admin.Kill)
	mux.HandleFunc("POST /admin/unkill", s.deps.Admin.Unkill)
	mux.HandleFunc("GET /admin/stats", s.deps.Admin.Stats)
	mux.HandleFunc("GET /admin/last", s.deps.Admin.Last)
	mux.HandleFunc("GET /admin/export", s.deps.Admin.Export)
	mux.HandleFunc("GET /admin/export/day", s.deps.Admin.ExportDay)

	return mux
}

// applyMiddleware wraps the handler with middleware in the correct order.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	return httpx.Chain(
		httpx.Recovery(s.logger),           // Outermost: catch panics
		httpx.RequestID,                    // Add request ID
		httpx.Logger(s.logger),             // Log requests
		httpx.CORS(nil),                    // CORS headers (allow all in dev)
		killswitch.Gate(s.deps.KillSwitch), // Reject non-admin traffic while killed
	)(handler)
}

// statusResponse is the GET /status body.
type statusResponse struct {
	OK     bool   `json:"ok"`
	TS     string `json:"ts"`
	Clicks int64  `json:"clicks"`
}

// statusHandler reports liveness and the stored click count. The count
// is 0 whenever persistence is disabled or unreachable; the endpoint
// itself stays healthy.
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var clicks int64
	if s.deps.Store != nil {
		n, err := s.deps.Store.Count(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "click count unavailable",
				"error", err.Error(),
			)
		} else {
			clicks = n
		}
	}

	httpx.WriteJSON(w, http.StatusOK, statusResponse{
		OK:     true,
		TS:     time.Now().UTC().Format(time.RFC3339),
		Clicks: clicks,
	})
}

// greetingHandler answers the root path, the liveness probe target.
func (s *Server) greetingHandler(w http.ResponseWriter, r *http.Request) {
	httpx.WriteText(w, http.StatusOK, greetingBody)
}
