// Package server provides the HTTP front of the telemetry hub: the WebSocket
// relay endpoint, health and metrics, the archive API and the live preview.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cagatay-softgineer/MediaPipe/internal/hub"
	"github.com/cagatay-softgineer/MediaPipe/internal/server/api"
	"github.com/cagatay-softgineer/MediaPipe/internal/store"
)

// Config holds the server configuration.
type Config struct {
	// Hub receives every relayed message. Without a hub the server only
	// serves the HTTP routes.
	Hub *hub.Hub

	// Store enables the archive API.
	Store *store.Store

	// Gatherer enables /metrics.
	Gatherer prometheus.Gatherer

	// Preview enables /api/preview.
	Preview *Preview

	// PingInterval is the keepalive period; a peer that misses two pongs
	// is dropped (default: 30s).
	PingInterval time.Duration

	// MaxMessageSize bounds one inbound message (default: 1 MiB).
	MaxMessageSize int64

	Logger *slog.Logger
}

// Server represents the HTTP server. WebSocket upgrade requests on any path
// go to the relay; everything else goes to the routes.
type Server struct {
	config   Config
	logger   *slog.Logger
	mux      *http.ServeMux
	upgrader websocket.Upgrader
	start    time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.PingInterval <= 0 {
		config.PingInterval = 30 * time.Second
	}
	if config.MaxMessageSize <= 0 {
		config.MaxMessageSize = 1 << 20
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config: config,
		logger: logger.With("component", "server"),
		mux:    http.NewServeMux(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Any origin; the relay has no auth.
			},
		},
		start: time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		sessions := api.NewSessionHandler(s.config.Store)
		s.mux.Handle("/api/sessions", sessions)
		s.mux.Handle("/api/sessions/", sessions)
	}

	if s.config.Gatherer != nil {
		s.mux.Handle("/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	}

	if s.config.Preview != nil {
		s.mux.Handle("/api/preview", s.config.Preview)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.config.Hub != nil && websocket.IsWebSocketUpgrade(r) {
		s.serveRelay(w, r)
		return
	}
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Hub != nil {
		clients := s.config.Hub.Subscribers()
		response["subscribers"] = len(clients)
		response["clients"] = clients
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

// Run serves on addr until ctx is done and then shuts down. Hijacked relay
// connections are not closed by the shutdown; closing the hub ends them.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
