// Package storage provides persistence for FRANK.
//
// Each ledger (profile, agenda, projects) is persisted as a single JSON
// document understood to be the entire state of that store: every mutation
// rewrites the whole document before the call returns.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/franklab/frank/internal/core"
)

// DB wraps the SQLite database connection
type DB struct {
	conn     *sql.DB
	path     string
	isMemory bool
}

// Config for database initialization
type Config struct {
	Path     string // Path to database file
	InMemory bool   // Use in-memory database (for testing)
}

// Open opens or creates a SQLite database
func Open(cfg Config) (*DB, error) {
	var dsn string
	var isMemory bool

	if cfg.InMemory {
		dsn = ":memory:?cache=shared"
		isMemory = true
	} else {
		dir := filepath.Dir(cfg.Path)
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
		dsn = cfg.Path
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't handle concurrent writes well
	conn.SetMaxOpenConns(1)

	// WAL for better concurrency between the reminder loop, the HTTP
	// handlers and the interactive loop
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	return &DB{
		conn:     conn,
		path:     cfg.Path,
		isMemory: isMemory,
	}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying sql.DB for direct access
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Migrate creates the schema if it does not exist
func (db *DB) Migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
		    name       TEXT PRIMARY KEY,
		    body       TEXT NOT NULL,
		    updated_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrMigrationFailed, err)
	}
	return nil
}
