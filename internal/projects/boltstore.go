package projects

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.etcd.io/bbolt"
)

var bucketProjects = []byte("projects")

// BoltStore persists projects in a single local bbolt file.
// Keys are the lowercased project names, which makes the case-insensitive
// uniqueness check a plain key lookup and keeps iteration order stable.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore opens (or creates) the project file at the given path.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open projects file: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketProjects)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create projects bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// LoadAll returns every project, ordered by lowercased name.
func (s *BoltStore) LoadAll(ctx context.Context) ([]Project, error) {
	projects := make([]Project, 0)
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketProjects).ForEach(func(k, v []byte) error {
			var p Project
			if err := json.Unmarshal(v, &p); err != nil {
				return fmt.Errorf("failed to decode project %q: %w", k, err)
			}
			projects = append(projects, p)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// Create adds a new project with an empty cart.
func (s *BoltStore) Create(ctx context.Context, name string, rooms []string) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("project name cannot be empty")
	}
	if rooms == nil {
		rooms = []string{}
	}

	project := &Project{Name: name, Rooms: rooms, Cart: []CartLine{}}
	key := []byte(strings.ToLower(name))

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketProjects)
		if b.Get(key) != nil {
			return fmt.Errorf("%w: %q", ErrConflict, name)
		}
		data, err := json.Marshal(project)
		if err != nil {
			return fmt.Errorf("failed to encode project: %w", err)
		}
		return b.Put(key, data)
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// Get returns the project with the exact given name.
func (s *BoltStore) Get(ctx context.Context, name string) (*Project, error) {
	var project Project
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketProjects).Get([]byte(strings.ToLower(name)))
		if data == nil {
			return fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		if err := json.Unmarshal(data, &project); err != nil {
			return fmt.Errorf("failed to decode project: %w", err)
		}
		if project.Name != name {
			return fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// ReplaceCart overwrites the whole cart of the named project.
func (s *BoltStore) ReplaceCart(ctx context.Context, name string, cart []CartLine) error {
	if cart == nil {
		cart = []CartLine{}
	}
	key := []byte(strings.ToLower(name))

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketProjects)
		data := b.Get(key)
		if data == nil {
			return fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		var project Project
		if err := json.Unmarshal(data, &project); err != nil {
			return fmt.Errorf("failed to decode project: %w", err)
		}
		if project.Name != name {
			return fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		project.Cart = cart
		updated, err := json.Marshal(&project)
		if err != nil {
			return fmt.Errorf("failed to encode project: %w", err)
		}
		return b.Put(key, updated)
	})
}
