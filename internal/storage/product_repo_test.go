package storage

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func repoRecord(id, name string) ProductRecord {
	return ProductRecord{
		ID:          id,
		Name:        name,
		Description: "description of " + name,
		Rooms:       []string{"Living Room", "Terrace"},
		Embedding:   []float32{0.1, 0.2, 0.3},
		DateAdded:   time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC),
	}
}

func TestProductRepo_ListAll_Empty(t *testing.T) {
	repo := NewProductRepo(newTestDB(t))

	records, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("ListAll() on empty table returned %d records, want 0", len(records))
	}
}

func TestProductRepo_ReplaceAll_PreservesOrder(t *testing.T) {
	repo := NewProductRepo(newTestDB(t))
	ctx := context.Background()

	records := []ProductRecord{
		repoRecord("id-c", "Chair"),
		repoRecord("id-a", "Armoire"),
		repoRecord("id-b", "Bench"),
	}
	if err := repo.ReplaceAll(ctx, records); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}

	got, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ListAll() returned %d records, want 3", len(got))
	}
	for i := range records {
		if got[i].ID != records[i].ID {
			t.Errorf("row %d = %s, want %s (insertion order must survive)", i, got[i].ID, records[i].ID)
		}
	}
}

func TestProductRepo_ReplaceAll_ReplacesEverything(t *testing.T) {
	repo := NewProductRepo(newTestDB(t))
	ctx := context.Background()

	if err := repo.ReplaceAll(ctx, []ProductRecord{repoRecord("id-1", "Old")}); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}
	if err := repo.ReplaceAll(ctx, []ProductRecord{repoRecord("id-2", "New")}); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}

	got, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "id-2" {
		t.Errorf("ListAll() = %+v, want only id-2", got)
	}
}

func TestProductRepo_RoundTrip(t *testing.T) {
	repo := NewProductRepo(newTestDB(t))
	ctx := context.Background()

	price := 1250.50
	rec := ProductRecord{
		ID:           "id-1",
		Name:         "Teak Dining Table",
		Description:  "reclaimed teak, seats eight",
		Price:        &price,
		Rooms:        []string{"Dining Room"},
		Category:     "Furniture",
		Availability: "In Stock",
		Contact:      "+66812345678",
		Supplier:     "Siam Wood",
		Link:         "https://example.com/table",
		ImageFile:    "images/table.jpg",
		ImageURL:     "https://example.com/table.jpg",
		Embedding:    []float32{0.123456789, -0.5, 1},
		DateAdded:    time.Date(2026, 8, 15, 10, 30, 0, 123456789, time.UTC),
	}

	if err := repo.ReplaceAll(ctx, []ProductRecord{rec}); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}
	got, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("ListAll() returned %d records, want 1", len(got))
	}
	if !reflect.DeepEqual(got[0], rec) {
		t.Errorf("round trip changed the record:\ngot  %+v\nwant %+v", got[0], rec)
	}
}

func TestProductRepo_RoundTrip_NilPrice(t *testing.T) {
	repo := NewProductRepo(newTestDB(t))
	ctx := context.Background()

	rec := repoRecord("id-1", "Free Sample")
	if err := repo.ReplaceAll(ctx, []ProductRecord{rec}); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}
	got, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if got[0].Price != nil {
		t.Errorf("Price = %v, want nil for unpriced product", *got[0].Price)
	}
}

func TestProductRepo_UpdateByID(t *testing.T) {
	repo := NewProductRepo(newTestDB(t))
	ctx := context.Background()

	records := []ProductRecord{
		repoRecord("id-1", "Chair"),
		repoRecord("id-2", "Bench"),
	}
	if err := repo.ReplaceAll(ctx, records); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}

	updated := repoRecord("id-1", "Lounge Chair")
	updated.Embedding = []float32{0.9, 0.8, 0.7}
	if err := repo.UpdateByID(ctx, "id-1", updated); err != nil {
		t.Fatalf("UpdateByID() error = %v", err)
	}

	got, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	// Position is kept: the updated row stays first.
	if got[0].ID != "id-1" || got[0].Name != "Lounge Chair" {
		t.Errorf("row 0 = %+v, want updated id-1 in place", got[0])
	}
	if !reflect.DeepEqual(got[0].Embedding, updated.Embedding) {
		t.Errorf("embedding = %v, want %v", got[0].Embedding, updated.Embedding)
	}
	if got[1].Name != "Bench" {
		t.Errorf("row 1 = %+v, want untouched id-2", got[1])
	}
}

func TestProductRepo_UpdateByID_NotFound(t *testing.T) {
	repo := NewProductRepo(newTestDB(t))

	err := repo.UpdateByID(context.Background(), "no-such-id", repoRecord("x", "X"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateByID() error = %v, want ErrNotFound", err)
	}
}
