package storage

import "time"

// ProductRecord represents one catalog entry together with its embedding vector.
// ID is generated at creation time and never changes; all mutations address a
// record by ID, while name-based lookup is only the human-facing selection step.
type ProductRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        *float64  `json:"price,omitempty"` // nil means no price is known
	Rooms        []string  `json:"rooms"`
	Category     string    `json:"category,omitempty"`
	Availability string    `json:"availability,omitempty"`
	Contact      string    `json:"contact,omitempty"`
	Supplier     string    `json:"supplier,omitempty"`
	Link         string    `json:"link,omitempty"`
	ImageFile    string    `json:"image_file,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"` // preferred over ImageFile when both are set
	Embedding    []float32 `json:"embedding"`
	DateAdded    time.Time `json:"date_added"`
}

// EmbeddingText returns the text the record's embedding is computed from.
func (r *ProductRecord) EmbeddingText() string {
	return r.Name + " " + r.Description
}

// ImageRef returns the preferred image reference: the remote URL when
// present, otherwise the local file path.
func (r *ProductRecord) ImageRef() string {
	if r.ImageURL != "" {
		return r.ImageURL
	}
	return r.ImageFile
}

// AuditEntry is one row of the append-only submitted-products ledger.
type AuditEntry struct {
	ProductID   string
	Name        string
	Supplier    string
	Price       *float64
	SubmittedAt time.Time
}
