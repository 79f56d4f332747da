// Package duck is the DuckDB warehouse adapter: one embedded database file
// holding the consolidated snapshot history and the derived star schema.
package duck

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2"
)

// DB wraps a single DuckDB handle, acquired once per run and released
// deterministically by the caller.
type DB struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (or creates) the DuckDB database at path. An empty path opens an
// in-memory database, used by tests.
func Open(path string, logger *slog.Logger) (*DB, error) {
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	// Single-writer batch workload; more connections would only contend on
	// the file lock.
	db.SetMaxOpenConns(1)

	return &DB{db: db, log: logger}, nil
}

// Ping verifies the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Close releases the database handle.
func (d *DB) Close() error {
	return d.db.Close()
}
