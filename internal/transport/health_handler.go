package transport

import (
	"context"
	"net/http"

	"mini-mart/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// HealthChecker reports dependency health
type HealthChecker func(ctx context.Context) map[string]string

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	service string
	check   HealthChecker
}

func NewHealthHandler(service string, check HealthChecker) *HealthHandler {
	return &HealthHandler{service: service, check: check}
}

func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Root)
	r.Get("/health", h.Health)
}

// Root is the liveness probe
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, map[string]any{"ok": true, "service": h.service})
}

// Health reports database status; 503 when the database is down
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "up"}
	if h.check != nil {
		status = h.check(r.Context())
	}
	code := http.StatusOK
	if status["status"] != "up" {
		code = http.StatusServiceUnavailable
	}
	middleware.RespondWithJSON(w, code, map[string]any{"ok": code == http.StatusOK, "database": status})
}
