package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// HealthChecker is implemented by every backing service the API depends on
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	db     HealthChecker
	redis  HealthChecker
	logger *slog.Logger
}

// NewHealthHandler creates a new health handler. A nil checker is reported
// as not configured.
func NewHealthHandler(db, redis HealthChecker, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		redis:  redis,
		logger: logger,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:   "healthy",
		Services: make(map[string]string),
	}

	h.check(ctx, "database", h.db, &response)
	h.check(ctx, "redis", h.redis, &response)

	if response.Status == "healthy" {
		respondSuccess(w, response)
	} else {
		respondJSON(w, http.StatusServiceUnavailable, response)
	}
}

func (h *HealthHandler) check(ctx context.Context, name string, checker HealthChecker, response *HealthResponse) {
	if checker == nil {
		response.Services[name] = "not_configured"
		return
	}
	if err := checker.Health(ctx); err != nil {
		h.logger.Error(name+" health check failed", slog.String("error", err.Error()))
		response.Status = "unhealthy"
		response.Services[name] = "unhealthy"
		return
	}
	response.Services[name] = "healthy"
}
