package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_product_store.go -package=mocks materia/internal/storage ProductStore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// ProductStore defines the interface for persisted catalog rows.
// Row order is part of the contract: ListAll returns records in the exact
// order ReplaceAll persisted them.
type ProductStore interface {
	// ListAll returns every catalog row in persisted order.
	// An empty catalog returns an empty slice, not an error.
	ListAll(ctx context.Context) ([]ProductRecord, error)
	// ReplaceAll atomically replaces the whole catalog with the given rows,
	// in the given order. A full-table rewrite costs O(N) per call; fine at
	// catalog sizes of a few thousand rows.
	ReplaceAll(ctx context.Context, records []ProductRecord) error
	// UpdateByID replaces all fields of the record with the given ID,
	// keeping its position. Returns ErrNotFound if no row matches.
	UpdateByID(ctx context.Context, id string, record ProductRecord) error
}

// ProductRepo provides SQLite-backed catalog row persistence.
// It implements the ProductStore interface.
type ProductRepo struct {
	db *sql.DB
}

// NewProductRepo creates a new ProductRepo.
func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

const productColumns = `id, name, description, price, rooms, category, availability,
	contact, supplier, link, image_file, image_url, embedding, date_added`

// ListAll returns every catalog row ordered by persisted position.
func (r *ProductRepo) ListAll(ctx context.Context) ([]ProductRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query products: %v", ErrUnavailable, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	records := make([]ProductRecord, 0)
	for rows.Next() {
		rec, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read products: %v", ErrUnavailable, err)
	}

	return records, nil
}

// ReplaceAll replaces the whole catalog inside a single transaction.
func (r *ProductRepo) ReplaceAll(ctx context.Context, records []ProductRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", ErrUnavailable, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM products"); err != nil {
		return fmt.Errorf("%w: failed to clear products: %v", ErrUnavailable, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO products (position, `+productColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: failed to prepare insert: %v", ErrUnavailable, err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for i, rec := range records {
		args, err := productArgs(rec)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, append([]any{i}, args...)...); err != nil {
			return fmt.Errorf("%w: failed to insert product %q: %v", ErrUnavailable, rec.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit catalog: %v", ErrUnavailable, err)
	}
	return nil
}

// UpdateByID replaces all fields of the matching record, keeping its position.
func (r *ProductRepo) UpdateByID(ctx context.Context, id string, record ProductRecord) error {
	record.ID = id
	args, err := productArgs(record)
	if err != nil {
		return err
	}
	// Shift the id argument from first column to the WHERE clause.
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET name = ?, description = ?, price = ?, rooms = ?,
			category = ?, availability = ?, contact = ?, supplier = ?, link = ?,
			image_file = ?, image_url = ?, embedding = ?, date_added = ?
		 WHERE id = ?`,
		append(args[1:], id)...)
	if err != nil {
		return fmt.Errorf("%w: failed to update product: %v", ErrUnavailable, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to check update result: %v", ErrUnavailable, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// productArgs serializes a record into the column order of productColumns.
func productArgs(rec ProductRecord) ([]any, error) {
	roomsJSON, err := json.Marshal(rec.Rooms)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rooms: %w", err)
	}
	embeddingJSON, err := json.Marshal(rec.Embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding: %w", err)
	}

	var price any
	if rec.Price != nil {
		price = *rec.Price
	}

	return []any{
		rec.ID, rec.Name, rec.Description, price, string(roomsJSON),
		rec.Category, rec.Availability, rec.Contact, rec.Supplier, rec.Link,
		rec.ImageFile, rec.ImageURL, string(embeddingJSON),
		rec.DateAdded.UTC().Format(time.RFC3339Nano),
	}, nil
}

// scanProduct reads one row in the column order of productColumns.
func scanProduct(rows *sql.Rows) (ProductRecord, error) {
	var rec ProductRecord
	var price sql.NullFloat64
	var roomsJSON, embeddingJSON, dateAdded string

	err := rows.Scan(&rec.ID, &rec.Name, &rec.Description, &price, &roomsJSON,
		&rec.Category, &rec.Availability, &rec.Contact, &rec.Supplier, &rec.Link,
		&rec.ImageFile, &rec.ImageURL, &embeddingJSON, &dateAdded)
	if err != nil {
		return ProductRecord{}, fmt.Errorf("%w: failed to scan product: %v", ErrUnavailable, err)
	}

	if price.Valid {
		p := price.Float64
		rec.Price = &p
	}
	if err := json.Unmarshal([]byte(roomsJSON), &rec.Rooms); err != nil {
		return ProductRecord{}, fmt.Errorf("failed to unmarshal rooms: %w", err)
	}
	if err := json.Unmarshal([]byte(embeddingJSON), &rec.Embedding); err != nil {
		return ProductRecord{}, fmt.Errorf("failed to unmarshal embedding: %w", err)
	}
	rec.DateAdded, err = time.Parse(time.RFC3339Nano, dateAdded)
	if err != nil {
		return ProductRecord{}, fmt.Errorf("failed to parse date_added: %w", err)
	}

	return rec, nil
}
