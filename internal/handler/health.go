package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/cgfarias/mobifacil-front-sub000/internal/wire"
)

const readinessTimeout = 2 * time.Second

// GetHealth handles GET /healthz: {"status":"ok"} with 200, or
// {"status":"unavailable"} with 503 when the readiness check fails.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			s.log.WarnContext(r.Context(), "readiness check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, wire.HealthResponse{Status: "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, wire.HealthResponse{Status: "ok"})
}
