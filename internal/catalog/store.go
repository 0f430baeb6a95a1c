package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"materia/internal/search"
	"materia/internal/storage"
)

// snapshotTimeFormat keys versioned snapshot files, e.g.
// product_catalog_2026-09-01_14-03-05.json.
const snapshotTimeFormat = "2006-01-02_15-04-05"

// SearchHit is one ranked search result.
type SearchHit struct {
	Record storage.ProductRecord
	Score  float64
}

// Store holds the live catalog: an ordered record list and the embedding
// matrix aligned with it row for row. Reads and writes go through one
// RWMutex, so a search can never observe a half-swapped record/vector pair
// while an append or reindex replaces the set.
//
// Every mutation persists the full resulting catalog as the new current
// state and writes an immutable timestamped snapshot beside it.
type Store struct {
	mu          sync.RWMutex
	repo        storage.ProductStore
	snapshotDir string
	records     []storage.ProductRecord
	vectors     [][]float32
}

// NewStore creates a Store over the given persisted rows and snapshot directory.
func NewStore(repo storage.ProductStore, snapshotDir string) *Store {
	return &Store{
		repo:        repo,
		snapshotDir: snapshotDir,
		records:     []storage.ProductRecord{},
		vectors:     [][]float32{},
	}
}

// Load reads the persisted catalog into memory. A missing or empty catalog
// is valid and loads as an empty set.
func (s *Store) Load(ctx context.Context) error {
	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return WrapError(err, "failed to load catalog")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.vectors = vectorsOf(records)
	return nil
}

// Len returns the number of records in the catalog.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Records returns a copy of all records in row order.
func (s *Store) Records() []storage.ProductRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records)
}

// Vectors returns a copy of the embedding matrix, aligned row for row
// with Records.
func (s *Store) Vectors() [][]float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.vectors)
}

// GetByID returns the record with the given ID.
func (s *Store) GetByID(id string) (storage.ProductRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return storage.ProductRecord{}, fmt.Errorf("%w: id %q", storage.ErrNotFound, id)
}

// FindByName returns every record whose name matches exactly, in row order.
// This is the human-facing lookup for the edit selection step; commits
// address records by ID.
func (s *Store) FindByName(name string) []storage.ProductRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matches := make([]storage.ProductRecord, 0)
	for _, rec := range s.records {
		if rec.Name == name {
			matches = append(matches, rec)
		}
	}
	return matches
}

// Search ranks the catalog against the query vector and returns at most k
// hits by descending cosine similarity, ties kept in row order.
func (s *Store) Search(query []float32, k int) []SearchHit {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := search.TopK(s.vectors, query, k)
	hits := make([]SearchHit, len(results))
	for i, res := range results {
		hits[i] = SearchHit{Record: s.records[res.Row], Score: res.Score}
	}
	return hits
}

// Append adds records, deduplicates by (name, supplier) keeping the
// last-written record for each key, persists the result as the current
// catalog and writes a timestamped snapshot. The current catalog is written
// first and rolled back if the snapshot cannot be written, so a snapshot
// can never exist for a catalog state that was not committed.
func (s *Store) Append(ctx context.Context, records []storage.ProductRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := dedupeKeepLast(append(slices.Clone(s.records), records...))
	return s.persistLocked(ctx, merged)
}

// Update replaces all fields of the record with the given ID, including its
// embedding, and writes a timestamped snapshot after success.
// Returns storage.ErrNotFound if no record matches.
func (s *Store) Update(ctx context.Context, id string, record storage.ProductRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, rec := range s.records {
		if rec.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: id %q", storage.ErrNotFound, id)
	}

	prev := s.records[idx]
	record.ID = id
	if err := s.repo.UpdateByID(ctx, id, record); err != nil {
		return WrapError(err, "failed to persist update")
	}

	updated := slices.Clone(s.records)
	updated[idx] = record

	if _, err := s.writeSnapshot(updated, ""); err != nil {
		if rbErr := s.repo.UpdateByID(ctx, id, prev); rbErr != nil {
			return errors.Join(WrapError(err, "failed to write snapshot"), rbErr)
		}
		return WrapError(err, "failed to write snapshot")
	}

	s.records = updated
	s.vectors = vectorsOf(updated)
	return nil
}

// ReplaceAll swaps in a fully recomputed record set (the reindex commit):
// deduplicates once, persists as current and writes a snapshot, replacing
// both in-memory arrays as a unit under the write lock.
func (s *Store) ReplaceAll(ctx context.Context, records []storage.ProductRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := dedupeKeepLast(slices.Clone(records))
	return s.persistLocked(ctx, merged)
}

// WriteBackupSnapshot writes a pre-reindex backup of the current catalog and
// returns its path. Loading the file reproduces the catalog state exactly.
func (s *Store) WriteBackupSnapshot() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writeSnapshot(s.records, "BACKUP_")
}

// persistLocked writes merged as the new current catalog plus its snapshot,
// rolling the current catalog back to its pre-call rows when the snapshot
// write fails. Callers must hold the write lock.
func (s *Store) persistLocked(ctx context.Context, merged []storage.ProductRecord) error {
	prev := s.records

	if err := s.repo.ReplaceAll(ctx, merged); err != nil {
		return WrapError(err, "failed to persist catalog")
	}

	if _, err := s.writeSnapshot(merged, ""); err != nil {
		if rbErr := s.repo.ReplaceAll(ctx, prev); rbErr != nil {
			return errors.Join(WrapError(err, "failed to write snapshot"), rbErr)
		}
		return WrapError(err, "failed to write snapshot")
	}

	s.records = merged
	s.vectors = vectorsOf(merged)
	return nil
}

// writeSnapshot stores records as an immutable timestamped JSON artifact
// named product_catalog_<prefix><timestamp>.json, bumping a suffix when two
// snapshots land within the same second.
func (s *Store) writeSnapshot(records []storage.ProductRecord, prefix string) (string, error) {
	ts := time.Now().Format(snapshotTimeFormat)
	path := filepath.Join(s.snapshotDir, fmt.Sprintf("product_catalog_%s%s.json", prefix, ts))
	for n := 2; ; n++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		path = filepath.Join(s.snapshotDir, fmt.Sprintf("product_catalog_%s%s_%d.json", prefix, ts, n))
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	return path, nil
}

// ReadSnapshot loads a snapshot file written by the store.
func ReadSnapshot(path string) ([]storage.ProductRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var records []storage.ProductRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return records, nil
}

// dedupeKeepLast applies the catalog dedup rule: when several records share
// (name, supplier), only the last-written one survives, at its own position.
func dedupeKeepLast(records []storage.ProductRecord) []storage.ProductRecord {
	seen := make(map[string]bool, len(records))
	kept := make([]storage.ProductRecord, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		key := records[i].Name + "\x00" + records[i].Supplier
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, records[i])
	}
	slices.Reverse(kept)
	return kept
}

func vectorsOf(records []storage.ProductRecord) [][]float32 {
	vectors := make([][]float32, len(records))
	for i, rec := range records {
		vectors[i] = rec.Embedding
	}
	return vectors
}
