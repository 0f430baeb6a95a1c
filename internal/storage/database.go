package storage

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
	// ErrUnavailable is returned when the backing store cannot be read or written.
	ErrUnavailable = errors.New("storage unavailable")
)

// New opens a SQLite database connection at the given path.
// It enables foreign keys and sets connection pool settings.
func New(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys (disabled by default in SQLite)
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate runs database migrations to create the required tables.
// It is idempotent and can be run multiple times safely.
func Migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price REAL,
			rooms TEXT NOT NULL DEFAULT '[]',
			category TEXT NOT NULL DEFAULT '',
			availability TEXT NOT NULL DEFAULT '',
			contact TEXT NOT NULL DEFAULT '',
			supplier TEXT NOT NULL DEFAULT '',
			link TEXT NOT NULL DEFAULT '',
			image_file TEXT NOT NULL DEFAULT '',
			image_url TEXT NOT NULL DEFAULT '',
			embedding TEXT NOT NULL,
			date_added TEXT NOT NULL
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_products_position ON products(position);`,
		`CREATE TABLE IF NOT EXISTS submitted_products (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			product_id TEXT NOT NULL,
			name TEXT NOT NULL,
			supplier TEXT NOT NULL DEFAULT '',
			price REAL,
			submitted_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS projects (
			name TEXT PRIMARY KEY,
			name_lower TEXT NOT NULL UNIQUE,
			rooms TEXT NOT NULL DEFAULT '[]',
			cart TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL
		);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
