package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"materia/internal/catalog"
	"materia/internal/contextutil"
	"materia/internal/storage"
)

// ProductHandler handles product submissions, lookups and edits.
type ProductHandler struct {
	writer *catalog.Writer
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(writer *catalog.Writer) *ProductHandler {
	return &ProductHandler{writer: writer}
}

// ProductRequest represents the editable fields of a product submission.
type ProductRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Price        *float64 `json:"price,omitempty"`
	Rooms        []string `json:"rooms"`
	Category     string   `json:"category,omitempty"`
	Availability string   `json:"availability,omitempty"`
	Contact      string   `json:"contact,omitempty"`
	Supplier     string   `json:"supplier,omitempty"`
	Link         string   `json:"link,omitempty"`
	ImageFile    string   `json:"image_file,omitempty"`
	ImageURL     string   `json:"image_url,omitempty"`
}

// ProductResponse represents one catalog record in API responses.
// The embedding vector is internal and never serialized.
type ProductResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Price        *float64 `json:"price,omitempty"`
	Rooms        []string `json:"rooms"`
	Category     string   `json:"category,omitempty"`
	Availability string   `json:"availability,omitempty"`
	Contact      string   `json:"contact,omitempty"`
	Supplier     string   `json:"supplier,omitempty"`
	Link         string   `json:"link,omitempty"`
	Image        string   `json:"image,omitempty"`
	DateAdded    string   `json:"date_added"`
}

// AddProductResponse is the response for a successful submission.
// AuditLogged is false when the catalog write succeeded but the
// submitted-products ledger row could not be appended.
type AddProductResponse struct {
	Product     ProductResponse `json:"product"`
	AuditLogged bool            `json:"audit_logged"`
}

// ProductListResponse wraps an exact-name lookup result.
type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
}

func toProductResponse(rec storage.ProductRecord) ProductResponse {
	return ProductResponse{
		ID:           rec.ID,
		Name:         rec.Name,
		Description:  rec.Description,
		Price:        rec.Price,
		Rooms:        rec.Rooms,
		Category:     rec.Category,
		Availability: rec.Availability,
		Contact:      rec.Contact,
		Supplier:     rec.Supplier,
		Link:         rec.Link,
		Image:        rec.ImageRef(),
		DateAdded:    rec.DateAdded.UTC().Format(time.RFC3339),
	}
}

func toProductInput(req ProductRequest) catalog.ProductInput {
	return catalog.ProductInput{
		Name:         strings.TrimSpace(req.Name),
		Description:  strings.TrimSpace(req.Description),
		Price:        req.Price,
		Rooms:        req.Rooms,
		Category:     req.Category,
		Availability: req.Availability,
		Contact:      req.Contact,
		Supplier:     req.Supplier,
		Link:         req.Link,
		ImageFile:    req.ImageFile,
		ImageURL:     req.ImageURL,
	}
}

// Add handles POST /api/products.
func (h *ProductHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.writer.Add(ctx, toProductInput(req))
	if err != nil {
		writeDomainError(w, ctx, err)
		return
	}

	writeJSON(w, http.StatusCreated, AddProductResponse{
		Product:     toProductResponse(result.Record),
		AuditLogged: result.AuditErr == nil,
	})
}

// FindByName handles GET /api/products?name= — the exact-name lookup used
// to pick a record before editing it. Several records may share a name.
func (h *ProductHandler) FindByName(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "Query parameter 'name' is required")
		return
	}

	records := h.writer.FindByName(name)
	products := make([]ProductResponse, len(records))
	for i, rec := range records {
		products[i] = toProductResponse(rec)
	}
	writeJSON(w, http.StatusOK, ProductListResponse{Products: products})
}

// Edit handles PUT /api/products/{id}.
func (h *ProductHandler) Edit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	id, err := url.PathUnescape(chi.URLParam(r, "id"))
	if err != nil || strings.TrimSpace(id) == "" {
		writeError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rec, err := h.writer.Edit(ctx, id, toProductInput(req))
	if err != nil {
		writeDomainError(w, ctx, fmt.Errorf("edit product: %w", err))
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(*rec))
}
