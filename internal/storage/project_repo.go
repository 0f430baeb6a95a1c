package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"materia/internal/projects"
)

// ProjectRepo persists projects in a SQLite table keyed by name, mirroring
// the remote-table deployment option. It implements projects.Store.
type ProjectRepo struct {
	db *sql.DB
}

// NewProjectRepo creates a new ProjectRepo.
func NewProjectRepo(db *sql.DB) *ProjectRepo {
	return &ProjectRepo{db: db}
}

// LoadAll returns every project, ordered by lowercased name.
func (r *ProjectRepo) LoadAll(ctx context.Context) ([]projects.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, rooms, cart FROM projects ORDER BY name_lower`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query projects: %v", ErrUnavailable, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	all := make([]projects.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		all = append(all, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read projects: %v", ErrUnavailable, err)
	}
	return all, nil
}

// Create adds a new project with an empty cart.
// The name_lower unique index enforces case-insensitive uniqueness.
func (r *ProjectRepo) Create(ctx context.Context, name string, rooms []string) (*projects.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("project name cannot be empty")
	}
	if rooms == nil {
		rooms = []string{}
	}

	roomsJSON, err := json.Marshal(rooms)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rooms: %w", err)
	}

	var exists int
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM projects WHERE name_lower = ?`, strings.ToLower(name)).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to check project name: %v", ErrUnavailable, err)
	}
	if exists > 0 {
		return nil, fmt.Errorf("%w: %q", projects.ErrConflict, name)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO projects (name, name_lower, rooms, cart, created_at)
		 VALUES (?, ?, ?, '[]', ?)`,
		name, strings.ToLower(name), string(roomsJSON),
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to insert project: %v", ErrUnavailable, err)
	}

	return &projects.Project{Name: name, Rooms: rooms, Cart: []projects.CartLine{}}, nil
}

// Get returns the project with the exact given name.
func (r *ProjectRepo) Get(ctx context.Context, name string) (*projects.Project, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT name, rooms, cart FROM projects WHERE name = ?`, name)

	var p projects.Project
	var roomsJSON, cartJSON string
	err := row.Scan(&p.Name, &roomsJSON, &cartJSON)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %q", projects.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query project: %v", ErrUnavailable, err)
	}

	if err := json.Unmarshal([]byte(roomsJSON), &p.Rooms); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rooms: %w", err)
	}
	if err := json.Unmarshal([]byte(cartJSON), &p.Cart); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart: %w", err)
	}
	return &p, nil
}

// ReplaceCart overwrites the whole cart of the named project.
func (r *ProjectRepo) ReplaceCart(ctx context.Context, name string, cart []projects.CartLine) error {
	if cart == nil {
		cart = []projects.CartLine{}
	}
	cartJSON, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE projects SET cart = ? WHERE name = ?`, string(cartJSON), name)
	if err != nil {
		return fmt.Errorf("%w: failed to update cart: %v", ErrUnavailable, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to check update result: %v", ErrUnavailable, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %q", projects.ErrNotFound, name)
	}
	return nil
}

func scanProject(rows *sql.Rows) (projects.Project, error) {
	var p projects.Project
	var roomsJSON, cartJSON string
	if err := rows.Scan(&p.Name, &roomsJSON, &cartJSON); err != nil {
		return projects.Project{}, fmt.Errorf("%w: failed to scan project: %v", ErrUnavailable, err)
	}
	if err := json.Unmarshal([]byte(roomsJSON), &p.Rooms); err != nil {
		return projects.Project{}, fmt.Errorf("failed to unmarshal rooms: %w", err)
	}
	if err := json.Unmarshal([]byte(cartJSON), &p.Cart); err != nil {
		return projects.Project{}, fmt.Errorf("failed to unmarshal cart: %w", err)
	}
	return p, nil
}
