package handlers

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"materia/internal/catalog"
	"materia/internal/storage"
)

// testEnv bundles the real components handler tests run against: a temp
// SQLite database and a catalog store/writer pair. The embedding provider
// is the only mocked dependency.
type testEnv struct {
	db    *sql.DB
	store *catalog.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	tmpDir := t.TempDir()

	db, err := storage.New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("storage.Migrate() error = %v", err)
	}

	snapshotDir := filepath.Join(tmpDir, "versions")
	if err := os.MkdirAll(snapshotDir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	store := catalog.NewStore(storage.NewProductRepo(db), snapshotDir)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	return &testEnv{db: db, store: store}
}

func (e *testEnv) seed(t *testing.T, records ...storage.ProductRecord) {
	t.Helper()
	if err := e.store.Append(context.Background(), records); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
}
