package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"materia/internal/catalog"
	"materia/internal/contextutil"
	"materia/internal/projects"
	"materia/internal/storage"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	// Fields lists the offending fields for validation failures.
	Fields []string `json:"fields,omitempty"`
}

// statusForError maps domain errors to HTTP status codes.
func statusForError(err error) int {
	var vErr *catalog.ValidationError
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, projects.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, projects.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, storage.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, catalog.ErrProvider):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError logs err and writes its mapped status and message.
func writeDomainError(w http.ResponseWriter, ctx context.Context, err error) {
	logger := contextutil.LoggerFromContext(ctx)
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, "request failed", "status", status, "error", err)
	} else {
		logger.WarnContext(ctx, "request rejected", "status", status, "error", err)
	}

	resp := ErrorResponse{Error: err.Error()}
	var vErr *catalog.ValidationError
	if errors.As(err, &vErr) {
		resp.Fields = vErr.Fields
	}
	writeJSON(w, status, resp)
}

// writeError writes an error response with the given status and message.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{Error: message})
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}
