package http

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"materia/internal/catalog"
	"materia/internal/embedding"
	"materia/internal/handlers"
	"materia/internal/projects"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	DB       *sql.DB
	Catalog  *catalog.Store
	Writer   *catalog.Writer
	Provider embedding.Provider
	Projects projects.Store
}

// NewRouter creates the HTTP router with all routes registered.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	searchHandler := handlers.NewSearchHandler(deps.Catalog, deps.Provider)
	productHandler := handlers.NewProductHandler(deps.Writer)
	reindexHandler := handlers.NewReindexHandler(deps.Writer)
	optionsHandler := handlers.NewOptionsHandler()
	galleryHandler := handlers.NewGalleryHandler(deps.Catalog)
	projectHandler := handlers.NewProjectHandler(deps.Projects)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Provider)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/search", searchHandler)

		r.Post("/products", productHandler.Add)
		r.Get("/products", productHandler.FindByName)
		r.Put("/products/{id}", productHandler.Edit)

		r.Method(http.MethodPost, "/reindex", reindexHandler)
		r.Method(http.MethodGet, "/options", optionsHandler)

		r.Get("/projects", projectHandler.List)
		r.Post("/projects", projectHandler.Create)
		r.Get("/projects/{name}/cart", projectHandler.GetCart)
		r.Put("/projects/{name}/cart", projectHandler.ReplaceCart)
		r.Get("/projects/{name}/totals", projectHandler.Totals)

		r.Method(http.MethodGet, "/health", healthHandler)
	})

	r.Method(http.MethodGet, "/gallery", galleryHandler)

	return r
}
