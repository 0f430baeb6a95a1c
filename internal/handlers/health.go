package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"materia/internal/contextutil"
	"materia/internal/embedding"
)

// HealthHandler reports storage and embedding-provider reachability.
type HealthHandler struct {
	db       *sql.DB
	provider embedding.Provider
	timeout  time.Duration
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db *sql.DB, provider embedding.Provider) *HealthHandler {
	return &HealthHandler{
		db:       db,
		provider: provider,
		timeout:  5 * time.Second,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
	Issues    []string          `json:"issues,omitempty"`
}

// ServeHTTP handles GET /api/health.
// Returns 200 when all checks pass, 503 otherwise.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	checks := make(map[string]string)
	var issues []string

	if err := h.db.PingContext(checkCtx); err != nil {
		logger.WarnContext(ctx, "storage health check failed", "error", err)
		checks["storage"] = "error"
		issues = append(issues, "storage_unavailable")
	} else {
		checks["storage"] = "ok"
	}

	if _, err := h.provider.Embed(checkCtx, "ok"); err != nil {
		logger.WarnContext(ctx, "embedding provider health check failed", "error", err)
		checks["embedding_provider"] = "error"
		issues = append(issues, "embedding_provider_unavailable")
	} else {
		checks["embedding_provider"] = "ok"
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if len(issues) > 0 {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Issues:    issues,
	})
}
