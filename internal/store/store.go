package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// Validation failures surfaced to CRUD callers. Storage faults are returned
// as-is, wrapped with the failing operation.
var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateName = errors.New("duplicate name")
	ErrMissingParent = errors.New("missing parent")
	ErrInvalidRule   = errors.New("invalid rule")
	ErrInvalidInput  = errors.New("invalid input")
)

// Store owns all persisted state: activities, brands, projects, rules and
// dismissed suggestion tokens.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at dbPath and applies
// the schema. Writers are serialized on a single connection; the sampling
// loop and request-driven classification write disjoint columns, so
// per-statement atomicity is all the coordination they need.
func Open(dbPath string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
