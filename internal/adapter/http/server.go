package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/vizdata-etl-service/internal/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SnapshotSource returns the most recent published snapshot.
type SnapshotSource interface {
	Latest() (domain.Snapshot, bool)
}

// Server exposes health, readiness and metrics endpoints plus read access to
// the latest snapshot.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the probe, metrics and dataset routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, snapshots SnapshotSource, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /v1/snapshot", handleSnapshot(snapshots, func(snap domain.Snapshot) (any, bool) {
		return snap.Summary(), true
	}))
	mux.HandleFunc("GET /v1/recipes/graph", handleSnapshot(snapshots, func(snap domain.Snapshot) (any, bool) {
		return snap.Recipes, snap.Recipes != nil
	}))
	mux.HandleFunc("GET /v1/counties/metrics", handleSnapshot(snapshots, func(snap domain.Snapshot) (any, bool) {
		return snap.Counties, snap.Counties != nil
	}))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// handleSnapshot serves one view of the latest snapshot. It answers 503 until
// a snapshot exists and 404 when the view's dataset is disabled.
func handleSnapshot(source SnapshotSource, view func(domain.Snapshot) (any, bool)) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		snap, ok := source.Latest()
		if !ok {
			sharedobs.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no snapshot available yet"})
			return
		}
		body, ok := view(snap)
		if !ok {
			sharedobs.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "dataset not enabled"})
			return
		}
		w.Header().Set("X-Run-ID", snap.RunID)
		sharedobs.WriteJSON(w, http.StatusOK, body)
	}
}
