package api

import (
	"context"
	"net/http"
	"time"

	"github.com/vytor/worddee/internal/logger"
)

const readinessTimeout = 3 * time.Second

// handleHealth returns a liveness probe - always returns 200 OK.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady reports whether the backend API is reachable. The scheduled
// probe result is used when there is one; otherwise the backend is pinged.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	if err := s.checkBackend(r.Context()); err != nil {
		log.Warn("readiness check failed - backend: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("Backend unavailable"))
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Ready"))
}

func (s *Server) checkBackend(ctx context.Context) error {
	if s.Probe != nil {
		if status := s.Probe.Status(); status.Checked {
			return status.Err
		}
	}
	if s.Backend == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()
	return s.Backend.Ping(ctx)
}
