package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"slices"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"materia/internal/catalog"
	"materia/internal/contextutil"
	"materia/internal/projects"
	"materia/internal/storage"
)

// GalleryHandler renders the product gallery as an HTML page, optionally
// filtered to one room.
type GalleryHandler struct {
	store    *catalog.Store
	markdown goldmark.Markdown
	template *template.Template
}

type galleryItem struct {
	Name         string
	Description  template.HTML
	Price        string
	Rooms        string
	Category     string
	Availability string
	Supplier     string
	Image        string
	Link         string
	WhatsApp     string
}

type galleryPageData struct {
	Room  string
	Rooms []string
	Items []galleryItem
}

// NewGalleryHandler creates a new GalleryHandler.
func NewGalleryHandler(store *catalog.Store) *GalleryHandler {
	tmpl := template.Must(template.New("gallery").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Materia Gallery{{if .Room}} — {{.Room}}{{end}}</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif;
      margin: 0 auto;
      padding: 2rem;
      max-width: 1100px;
      line-height: 1.6;
      background: #faf7f2;
      color: #2b2b2b;
    }
    header {
      margin-bottom: 2rem;
      border-bottom: 1px solid #d8d2c7;
      padding-bottom: 1rem;
    }
    nav a {
      margin-right: 0.75rem;
      color: #8a6d3b;
      text-decoration: none;
    }
    nav a:hover { text-decoration: underline; }
    .grid {
      display: grid;
      grid-template-columns: repeat(auto-fill, minmax(300px, 1fr));
      gap: 1.5rem;
    }
    .card {
      background: #fff;
      border: 1px solid #e4ddd1;
      border-radius: 10px;
      padding: 1.25rem;
    }
    .card img {
      width: 100%;
      border-radius: 6px;
      margin-bottom: 0.75rem;
    }
    .card h2 { margin: 0 0 0.5rem; font-size: 1.2rem; }
    .price { font-weight: 600; color: #8a6d3b; }
    .meta { color: #6f6a60; font-size: 0.9rem; }
  </style>
</head>
<body>
  <header>
    <h1>Materia Gallery{{if .Room}} — {{.Room}}{{end}}</h1>
    <nav>
      <a href="/gallery">All</a>
      {{range .Rooms}}<a href="/gallery?room={{.}}">{{.}}</a>{{end}}
    </nav>
  </header>
  <div class="grid">
    {{range .Items}}
    <div class="card">
      {{if .Image}}<img src="{{.Image}}" alt="{{.Name}}">{{end}}
      <h2>{{.Name}}</h2>
      {{if .Price}}<p class="price">{{.Price}}</p>{{end}}
      <div>{{.Description}}</div>
      <p class="meta">{{.Rooms}}{{if .Category}} · {{.Category}}{{end}}{{if .Availability}} · {{.Availability}}{{end}}</p>
      {{if .Supplier}}<p class="meta">Supplier: {{.Supplier}}</p>{{end}}
      {{if .Link}}<p><a href="{{.Link}}">Product page</a></p>{{end}}
      {{if .WhatsApp}}<p><a href="{{.WhatsApp}}">Contact supplier on WhatsApp</a></p>{{end}}
    </div>
    {{end}}
  </div>
</body>
</html>`))

	return &GalleryHandler{
		store: store,
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		),
		template: tmpl,
	}
}

// ServeHTTP handles GET /gallery?room= and renders the filtered catalog.
func (h *GalleryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	room := strings.TrimSpace(r.URL.Query().Get("room"))
	records := h.store.Records()

	items := make([]galleryItem, 0, len(records))
	for _, rec := range records {
		if room != "" && !slices.Contains(rec.Rooms, room) {
			continue
		}
		item, err := h.galleryItemOf(rec)
		if err != nil {
			logger.WarnContext(ctx, "failed to render product description", "id", rec.ID, "error", err)
			continue
		}
		items = append(items, item)
	}

	data := galleryPageData{
		Room:  room,
		Rooms: RoomOptions,
		Items: items,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.template.Execute(w, data); err != nil {
		logger.ErrorContext(ctx, "failed to execute gallery template", "error", err)
	}
}

func (h *GalleryHandler) galleryItemOf(rec storage.ProductRecord) (galleryItem, error) {
	var buf bytes.Buffer
	if err := h.markdown.Convert([]byte(rec.Description), &buf); err != nil {
		return galleryItem{}, fmt.Errorf("convert markdown: %w", err)
	}

	price := ""
	if rec.Price != nil {
		price = fmt.Sprintf("฿%.2f", *rec.Price)
	}

	return galleryItem{
		Name:         rec.Name,
		Description:  template.HTML(buf.String()),
		Price:        price,
		Rooms:        strings.Join(rec.Rooms, ", "),
		Category:     rec.Category,
		Availability: rec.Availability,
		Supplier:     rec.Supplier,
		Image:        rec.ImageRef(),
		Link:         rec.Link,
		WhatsApp:     projects.SupplierWhatsAppLink(rec.Name, rec.Supplier),
	}, nil
}
