package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"materia/internal/catalog"
	"materia/internal/contextutil"
	"materia/internal/embedding"
)

const (
	defaultSearchK = 5
	maxSearchK     = 50
)

// SearchHandler handles semantic catalog search queries.
type SearchHandler struct {
	store    *catalog.Store
	provider embedding.Provider
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(store *catalog.Store, provider embedding.Provider) *SearchHandler {
	return &SearchHandler{store: store, provider: provider}
}

// SearchRequest represents the search request payload.
type SearchRequest struct {
	Query string `json:"query"`
	K     int    `json:"k,omitempty"`
}

// SearchResult is one ranked hit.
type SearchResult struct {
	Product ProductResponse `json:"product"`
	Score   float64         `json:"score"`
}

// SearchResponse represents the ranked search results.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// ServeHTTP handles POST /api/search: embeds the query text and returns the
// top-k catalog records by descending cosine similarity.
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeError(w, http.StatusBadRequest, "Query is required")
		return
	}

	k := req.K
	if k <= 0 {
		k = defaultSearchK
	}
	if k > maxSearchK {
		k = maxSearchK
	}

	vec, err := h.provider.Embed(ctx, query)
	if err != nil {
		writeDomainError(w, ctx, fmt.Errorf("%w: %v", catalog.ErrProvider, err))
		return
	}

	hits := h.store.Search(vec, k)
	results := make([]SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = SearchResult{
			Product: toProductResponse(hit.Record),
			Score:   hit.Score,
		}
	}

	logger.InfoContext(ctx, "search completed", "query_len", len(query), "k", k, "results", len(results))
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
