package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"materia/internal/contextutil"
	"materia/internal/embedding"
	"materia/internal/storage"
)

// embedBatchSize bounds how many texts go to the provider per request
// during a reindex pass.
const embedBatchSize = 32

// ProductInput carries the caller-editable fields of a product submission.
type ProductInput struct {
	Name         string
	Description  string
	Price        *float64
	Rooms        []string
	Category     string
	Availability string
	Contact      string
	Supplier     string
	Link         string
	ImageFile    string
	ImageURL     string
}

// AddResult is the outcome of an Add operation. AuditErr reports a failed
// ledger append; the catalog write itself succeeded regardless.
type AddResult struct {
	Record   storage.ProductRecord
	AuditErr error
}

// ReindexResult summarizes a completed reindex pass.
type ReindexResult struct {
	Count      int
	BackupPath string
}

// Writer orchestrates catalog mutations: it computes embeddings through the
// injected provider, mutates the Store, and appends to the audit ledger.
// Each operation either succeeds completely or leaves the catalog at its
// prior persisted state.
type Writer struct {
	store    *Store
	provider embedding.Provider
	audit    storage.AuditStore
	logger   *slog.Logger
}

// NewWriter creates a new Writer.
func NewWriter(store *Store, provider embedding.Provider, audit storage.AuditStore) *Writer {
	return &Writer{
		store:    store,
		provider: provider,
		audit:    audit,
		logger:   slog.Default(),
	}
}

// validate reports the required fields missing from a submission.
func validate(in ProductInput) error {
	var missing []string
	if in.Name == "" {
		missing = append(missing, "name")
	}
	if in.Description == "" {
		missing = append(missing, "description")
	}
	if len(in.Rooms) == 0 {
		missing = append(missing, "rooms")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

func record(in ProductInput) storage.ProductRecord {
	return storage.ProductRecord{
		Name:         in.Name,
		Description:  in.Description,
		Price:        in.Price,
		Rooms:        in.Rooms,
		Category:     in.Category,
		Availability: in.Availability,
		Contact:      in.Contact,
		Supplier:     in.Supplier,
		Link:         in.Link,
		ImageFile:    in.ImageFile,
		ImageURL:     in.ImageURL,
	}
}

// Add validates the submission, computes its embedding, appends it to the
// catalog and then appends one row to the submitted-products ledger. The
// ledger append is best-effort: its failure is reported in the result but
// never rolls back the catalog write.
func (w *Writer) Add(ctx context.Context, in ProductInput) (*AddResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := validate(in); err != nil {
		logger.WarnContext(ctx, "product submission rejected", "error", err)
		return nil, err
	}

	rec := record(in)
	rec.ID = uuid.New().String()
	rec.DateAdded = time.Now().UTC()

	vec, err := w.provider.Embed(ctx, rec.EmbeddingText())
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed product", "name", rec.Name, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	rec.Embedding = vec

	if err := w.store.Append(ctx, []storage.ProductRecord{rec}); err != nil {
		logger.ErrorContext(ctx, "failed to append product", "name", rec.Name, "error", err)
		return nil, err
	}

	result := &AddResult{Record: rec}
	auditErr := w.audit.Append(ctx, storage.AuditEntry{
		ProductID:   rec.ID,
		Name:        rec.Name,
		Supplier:    rec.Supplier,
		Price:       rec.Price,
		SubmittedAt: rec.DateAdded,
	})
	if auditErr != nil {
		logger.WarnContext(ctx, "failed to append audit ledger entry", "name", rec.Name, "error", auditErr)
		result.AuditErr = auditErr
	}

	logger.InfoContext(ctx, "product added", "id", rec.ID, "name", rec.Name)
	return result, nil
}

// FindByName returns every record with the exact given name, for the
// edit selection step.
func (w *Writer) FindByName(name string) []storage.ProductRecord {
	return w.store.FindByName(name)
}

// Edit replaces all fields of the record with the given ID. The embedding is
// recomputed unconditionally from the (possibly unchanged) name and
// description. Returns storage.ErrNotFound if no record matches.
func (w *Writer) Edit(ctx context.Context, id string, in ProductInput) (*storage.ProductRecord, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := validate(in); err != nil {
		logger.WarnContext(ctx, "product edit rejected", "id", id, "error", err)
		return nil, err
	}

	existing, err := w.store.GetByID(id)
	if err != nil {
		return nil, err
	}

	rec := record(in)
	rec.ID = id
	rec.DateAdded = existing.DateAdded

	vec, err := w.provider.Embed(ctx, rec.EmbeddingText())
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed product", "id", id, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	rec.Embedding = vec

	if err := w.store.Update(ctx, id, rec); err != nil {
		logger.ErrorContext(ctx, "failed to update product", "id", id, "error", err)
		return nil, err
	}

	logger.InfoContext(ctx, "product updated", "id", id, "name", rec.Name)
	return &rec, nil
}

// Reindex recomputes every record's embedding from its current name and
// description, using the one injected provider for the whole pass. A full
// pre-reindex backup snapshot is written before anything is mutated; any
// provider failure aborts the pass with the catalog untouched. The pass is
// not resumable; after an interruption it restarts from the backup.
//
// progress, when non-nil, is called after each re-embedded row with the
// number of rows done and the total.
func (w *Writer) Reindex(ctx context.Context, progress func(done, total int)) (*ReindexResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	backupPath, err := w.store.WriteBackupSnapshot()
	if err != nil {
		logger.ErrorContext(ctx, "failed to write pre-reindex backup", "error", err)
		return nil, WrapError(err, "failed to write pre-reindex backup")
	}

	records := w.store.Records()
	total := len(records)
	logger.InfoContext(ctx, "reindex started", "records", total, "backup", backupPath)

	for start := 0; start < total; start += embedBatchSize {
		end := min(start+embedBatchSize, total)

		texts := make([]string, 0, end-start)
		for _, rec := range records[start:end] {
			texts = append(texts, rec.EmbeddingText())
		}

		vecs, err := w.provider.EmbedBatch(ctx, texts)
		if err != nil {
			logger.ErrorContext(ctx, "reindex aborted", "row", start, "error", err)
			return nil, fmt.Errorf("%w: %v", ErrProvider, err)
		}

		for i := range vecs {
			records[start+i].Embedding = vecs[i]
			if progress != nil {
				progress(start+i+1, total)
			}
		}
	}

	if err := w.store.ReplaceAll(ctx, records); err != nil {
		logger.ErrorContext(ctx, "failed to persist reindexed catalog", "error", err)
		return nil, err
	}

	count := w.store.Len()
	logger.InfoContext(ctx, "reindex completed", "records", count)
	return &ReindexResult{Count: count, BackupPath: backupPath}, nil
}
