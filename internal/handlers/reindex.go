package handlers

import (
	"net/http"

	"materia/internal/catalog"
	"materia/internal/contextutil"
)

// ReindexHandler triggers a full catalog reindex pass.
type ReindexHandler struct {
	writer *catalog.Writer
}

// NewReindexHandler creates a new ReindexHandler.
func NewReindexHandler(writer *catalog.Writer) *ReindexHandler {
	return &ReindexHandler{writer: writer}
}

// ReindexResponse reports a completed reindex pass.
type ReindexResponse struct {
	Count      int    `json:"count"`
	BackupPath string `json:"backup_path"`
}

// ServeHTTP handles POST /api/reindex. The pass runs synchronously; a
// provider failure aborts it with the catalog left untouched.
func (h *ReindexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	result, err := h.writer.Reindex(ctx, func(done, total int) {
		logger.DebugContext(ctx, "reindex progress", "done", done, "total", total)
	})
	if err != nil {
		writeDomainError(w, ctx, err)
		return
	}

	writeJSON(w, http.StatusOK, ReindexResponse{
		Count:      result.Count,
		BackupPath: result.BackupPath,
	})
}
