package api

import (
	"context"
	"net/http"
	"time"

	"github.com/hermesapp/hermes-api/internal/api/shared"
)

// Pinger is the minimal reachability check the health endpoint needs
// from the database pool.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves liveness checks.
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health handles GET /healthz. It reports unhealthy when the database
// does not answer a short ping.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, "Database unreachable", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
