package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// AuditStore defines the interface for the append-only submitted-products ledger.
// One row is appended per successful Add operation; rows are never updated
// or deleted.
type AuditStore interface {
	Append(ctx context.Context, entry AuditEntry) error
	ListAll(ctx context.Context) ([]AuditEntry, error)
}

// AuditRepo provides SQLite-backed ledger persistence.
// It implements the AuditStore interface.
type AuditRepo struct {
	db *sql.DB
}

// NewAuditRepo creates a new AuditRepo.
func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Append adds one ledger row.
func (r *AuditRepo) Append(ctx context.Context, entry AuditEntry) error {
	var price any
	if entry.Price != nil {
		price = *entry.Price
	}
	submittedAt := entry.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO submitted_products (product_id, name, supplier, price, submitted_at)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.ProductID, entry.Name, entry.Supplier, price,
		submittedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("%w: failed to append audit entry: %v", ErrUnavailable, err)
	}
	return nil
}

// ListAll returns every ledger row in submission order.
func (r *AuditRepo) ListAll(ctx context.Context) ([]AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT product_id, name, supplier, price, submitted_at
		 FROM submitted_products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query audit entries: %v", ErrUnavailable, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	entries := make([]AuditEntry, 0)
	for rows.Next() {
		var entry AuditEntry
		var price sql.NullFloat64
		var submittedAt string
		if err := rows.Scan(&entry.ProductID, &entry.Name, &entry.Supplier, &price, &submittedAt); err != nil {
			return nil, fmt.Errorf("%w: failed to scan audit entry: %v", ErrUnavailable, err)
		}
		if price.Valid {
			p := price.Float64
			entry.Price = &p
		}
		entry.SubmittedAt, err = time.Parse(time.RFC3339Nano, submittedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse submitted_at: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read audit entries: %v", ErrUnavailable, err)
	}

	return entries, nil
}
