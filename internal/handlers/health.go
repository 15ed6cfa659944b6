package handlers

import (
	"net/http"
	"time"

	"github.com/lumen-gear/storefront/internal/platform/httpx"
)

// HealthHandlers reports process liveness and readiness.
type HealthHandlers struct {
	startedAt   time.Time
	environment string
}

// NewHealthHandlers constructs the health endpoint handlers.
func NewHealthHandlers(environment string) *HealthHandlers {
	return &HealthHandlers{
		startedAt:   time.Now().UTC(),
		environment: environment,
	}
}

// Healthz reports liveness.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"environment": h.environment,
		"uptime":      time.Since(h.startedAt).Round(time.Second).String(),
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Readyz reports readiness to take traffic.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}
