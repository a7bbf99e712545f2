// Package store persists the materialized summary relations in SQLite.
//
// Each relation is a plain table whose schema is fixed by the Relations
// registry. Put replaces a relation wholesale inside one transaction
// (build staging table, drop live table, rename), so a reader observes
// either the previous rows or the new rows, never a mix.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

var (
	// ErrStoreUnavailable is returned when the database cannot be opened
	// or written.
	ErrStoreUnavailable = errors.New("summary store unavailable")

	// ErrRelationNotFound is returned when reading a relation that has not
	// been materialized yet.
	ErrRelationNotFound = errors.New("summary relation not materialized (run 'jobskills materialize')")

	// ErrUnknownRelation is returned for names outside the Relations registry.
	ErrUnknownRelation = errors.New("unknown summary relation")
)

// Store provides SQLite operations for the materialized summaries.
type Store struct {
	db *sql.DB
}

// New opens the store at dbPath and creates the run metadata table.
// Use ":memory:" for in-memory databases (useful for testing).
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" && !strings.HasPrefix(dbPath, "file:") {
		dir := filepath.Dir(dbPath)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return nil, fmt.Errorf("%w: directory %s does not exist", ErrStoreUnavailable, dir)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", ErrStoreUnavailable, err)
	}

	// SQLite only allows one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to enable WAL mode: %v", ErrStoreUnavailable, err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to set busy timeout: %v", ErrStoreUnavailable, err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB returns the underlying database connection for advanced queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) createSchema() error {
	if _, err := s.db.Exec(metadataSchema); err != nil {
		return fmt.Errorf("%w: failed to create schema: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Exists reports whether relation is currently materialized.
func (s *Store) Exists(ctx context.Context, relation string) (bool, error) {
	if _, ok := Lookup(relation); !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownRelation, relation)
	}

	var name string
	err := s.db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", relation,
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check relation %s: %w", relation, err)
	}
	return true, nil
}
