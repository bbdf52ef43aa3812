package handlers

import (
	"context"
	"net/http"

	"ideas-backend/pkg/api"
)

// Pinger reports whether a dependency answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	version  string
	supabase Pinger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, supabase Pinger) *HealthHandler {
	return &HealthHandler{version: version, supabase: supabase}
}

// Check handles GET /health requests
// @Summary Liveness check
// @Tags System
// @Produce json
// @Success 200 {object} api.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, api.HealthResponse{Status: "ok", Version: h.version})
}

// Ready handles GET /ready requests
// @Summary Readiness check
// @Description Ready once the Supabase auth server answers its health endpoint.
// @Tags System
// @Produce json
// @Success 200 {object} api.HealthResponse
// @Failure 503 {object} api.HealthResponse
// @Router /ready [get]
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.supabase.Ping(r.Context()); err != nil {
		api.Success(w, http.StatusServiceUnavailable, api.HealthResponse{
			Status: "unavailable",
			Checks: map[string]string{"supabase": err.Error()},
		})
		return
	}
	api.Success(w, http.StatusOK, api.HealthResponse{
		Status:  "ready",
		Checks:  map[string]string{"supabase": "ok"},
		Version: h.version,
	})
}
