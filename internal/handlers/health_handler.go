package handlers

import (
	"context"
	"net/http"

	"ventas-backend/internal/health"
	"ventas-backend/pkg/utils"
)

type HealthReporter interface {
	Check(ctx context.Context) health.HealthStatus
}

type HealthHandler struct {
	checker HealthReporter
}

func NewHealthHandler(checker HealthReporter) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// Health answers 503 only when the database is down; a degraded cache
// still returns 200.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := h.checker.Check(r.Context())
	code := http.StatusOK
	if status.Status == health.StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	utils.JSON(w, code, status)
}
