package projects

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

func newTestBoltStore(t *testing.T) *BoltStore {
	t.Helper()
	store, err := NewBoltStore(filepath.Join(t.TempDir(), "projects.db"))
	if err != nil {
		t.Fatalf("NewBoltStore() error = %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestBoltStore_CreateAndGet(t *testing.T) {
	store := newTestBoltStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "Beach House", []string{"Living Room", "Terrace"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(created.Cart) != 0 {
		t.Errorf("new project cart has %d lines, want empty", len(created.Cart))
	}

	got, err := store.Get(ctx, "Beach House")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !reflect.DeepEqual(got.Rooms, []string{"Living Room", "Terrace"}) {
		t.Errorf("Get() rooms = %v", got.Rooms)
	}
}

func TestBoltStore_Create_CaseInsensitiveConflict(t *testing.T) {
	store := newTestBoltStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, "Kitchen Villa", nil); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	_, err := store.Create(ctx, "KITCHEN VILLA", nil)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("Create() error = %v, want ErrConflict", err)
	}
}

func TestBoltStore_Get_ExactNameOnly(t *testing.T) {
	store := newTestBoltStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, "Kitchen Villa", nil); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	_, err := store.Get(ctx, "kitchen villa")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() with differently-cased name error = %v, want ErrNotFound", err)
	}
}

func TestBoltStore_ReplaceCart(t *testing.T) {
	store := newTestBoltStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, "Beach House", []string{"Living Room"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	cart := []CartLine{
		{Name: "Teak Bench", Price: 4500, Room: "Living Room", Quantity: 2},
	}
	if err := store.ReplaceCart(ctx, "Beach House", cart); err != nil {
		t.Fatalf("ReplaceCart() error = %v", err)
	}

	got, err := store.Get(ctx, "Beach House")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !reflect.DeepEqual(got.Cart, cart) {
		t.Errorf("cart = %+v, want %+v", got.Cart, cart)
	}
}

func TestBoltStore_ReplaceCart_NotFound(t *testing.T) {
	store := newTestBoltStore(t)

	err := store.ReplaceCart(context.Background(), "Nowhere", nil)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ReplaceCart() error = %v, want ErrNotFound", err)
	}
}

func TestBoltStore_LoadAll_OrderedByKey(t *testing.T) {
	store := newTestBoltStore(t)
	ctx := context.Background()

	for _, name := range []string{"zen garden", "Beach House", "atelier"} {
		if _, err := store.Create(ctx, name, nil); err != nil {
			t.Fatalf("Create(%q) error = %v", name, err)
		}
	}

	all, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	want := []string{"atelier", "Beach House", "zen garden"}
	if len(all) != len(want) {
		t.Fatalf("LoadAll() returned %d projects, want %d", len(all), len(want))
	}
	for i, name := range want {
		if all[i].Name != name {
			t.Errorf("project %d = %s, want %s", i, all[i].Name, name)
		}
	}
}

func TestBoltStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.db")
	ctx := context.Background()

	store, err := NewBoltStore(path)
	if err != nil {
		t.Fatalf("NewBoltStore() error = %v", err)
	}
	if _, err := store.Create(ctx, "Beach House", []string{"Living Room"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := NewBoltStore(path)
	if err != nil {
		t.Fatalf("NewBoltStore() reopen error = %v", err)
	}
	defer func() {
		_ = reopened.Close()
	}()

	got, err := reopened.Get(ctx, "Beach House")
	if err != nil {
		t.Fatalf("Get() after reopen error = %v", err)
	}
	if got.Name != "Beach House" {
		t.Errorf("Get() name = %s, want Beach House", got.Name)
	}
}
