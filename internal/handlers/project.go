package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"materia/internal/contextutil"
	"materia/internal/projects"
)

// ProjectHandler handles project and cart endpoints.
type ProjectHandler struct {
	store projects.Store
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(store projects.Store) *ProjectHandler {
	return &ProjectHandler{store: store}
}

// CreateProjectRequest represents a new-project submission. Selected rooms
// expand by count ("Bedroom", "Bedroom 2", ...) and custom rooms follow.
type CreateProjectRequest struct {
	Name        string                   `json:"name"`
	Rooms       []projects.RoomSelection `json:"rooms,omitempty"`
	CustomRooms []string                 `json:"custom_rooms,omitempty"`
}

// ProjectResponse represents one project.
type ProjectResponse struct {
	Name  string   `json:"name"`
	Rooms []string `json:"rooms"`
	Lines int      `json:"lines"`
}

// ProjectListResponse wraps the project listing.
type ProjectListResponse struct {
	Projects []ProjectResponse `json:"projects"`
}

// CartLineResponse is one cart line with its computed total and, when the
// supplier field is a phone number, a WhatsApp deep link.
type CartLineResponse struct {
	projects.CartLine
	Total    float64 `json:"total"`
	WhatsApp string  `json:"whatsapp,omitempty"`
}

// CartResponse represents a project cart.
type CartResponse struct {
	Project    string             `json:"project"`
	Lines      []CartLineResponse `json:"lines"`
	GrandTotal float64            `json:"grand_total"`
}

// ReplaceCartRequest represents a full cart replacement.
type ReplaceCartRequest struct {
	Lines []projects.CartLine `json:"lines"`
}

// TotalsResponse represents per-room and grand cart totals.
type TotalsResponse struct {
	Project    string               `json:"project"`
	Rooms      []projects.RoomTotal `json:"rooms"`
	GrandTotal float64              `json:"grand_total"`
}

// List handles GET /api/projects.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	all, err := h.store.LoadAll(ctx)
	if err != nil {
		writeDomainError(w, ctx, err)
		return
	}

	resp := ProjectListResponse{Projects: make([]ProjectResponse, len(all))}
	for i, p := range all {
		resp.Projects[i] = ProjectResponse{Name: p.Name, Rooms: p.Rooms, Lines: len(p.Cart)}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /api/projects.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "Project name is required")
		return
	}

	rooms := projects.ExpandRooms(req.Rooms, req.CustomRooms)
	project, err := h.store.Create(ctx, req.Name, rooms)
	if err != nil {
		writeDomainError(w, ctx, err)
		return
	}

	logger.InfoContext(ctx, "project created", "name", project.Name, "rooms", len(project.Rooms))
	writeJSON(w, http.StatusCreated, ProjectResponse{
		Name:  project.Name,
		Rooms: project.Rooms,
		Lines: 0,
	})
}

// GetCart handles GET /api/projects/{name}/cart.
func (h *ProjectHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	name, ok := projectName(w, r)
	if !ok {
		return
	}

	project, err := h.store.Get(ctx, name)
	if err != nil {
		writeDomainError(w, ctx, err)
		return
	}

	lines := make([]CartLineResponse, len(project.Cart))
	for i, line := range project.Cart {
		lines[i] = CartLineResponse{
			CartLine: line,
			Total:    line.Total(),
			WhatsApp: projects.SupplierWhatsAppLink(line.Name, line.Supplier),
		}
	}

	writeJSON(w, http.StatusOK, CartResponse{
		Project:    project.Name,
		Lines:      lines,
		GrandTotal: projects.GrandTotal(project.Cart),
	})
}

// ReplaceCart handles PUT /api/projects/{name}/cart.
func (h *ProjectHandler) ReplaceCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	name, ok := projectName(w, r)
	if !ok {
		return
	}

	var req ReplaceCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	for _, line := range req.Lines {
		if strings.TrimSpace(line.Name) == "" || line.Quantity < 1 {
			writeError(w, http.StatusBadRequest, "Each cart line needs a name and a quantity of at least 1")
			return
		}
	}

	if err := h.store.ReplaceCart(ctx, name, req.Lines); err != nil {
		writeDomainError(w, ctx, err)
		return
	}

	logger.InfoContext(ctx, "cart replaced", "project", name, "lines", len(req.Lines))
	w.WriteHeader(http.StatusNoContent)
}

// Totals handles GET /api/projects/{name}/totals.
func (h *ProjectHandler) Totals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	name, ok := projectName(w, r)
	if !ok {
		return
	}

	project, err := h.store.Get(ctx, name)
	if err != nil {
		writeDomainError(w, ctx, err)
		return
	}

	writeJSON(w, http.StatusOK, TotalsResponse{
		Project:    project.Name,
		Rooms:      projects.TotalsByRoom(project.Cart),
		GrandTotal: projects.GrandTotal(project.Cart),
	})
}

func projectName(w http.ResponseWriter, r *http.Request) (string, bool) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil || strings.TrimSpace(name) == "" {
		writeError(w, http.StatusBadRequest, "Invalid project name")
		return "", false
	}
	return name, true
}
