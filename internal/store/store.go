// Package store owns the wb_rrd table: schema bootstrap, the aggregating
// merge-upsert used by ingestion, and the read queries used by the API.
//
// Storage is a single SQLite file. Ingestion assumes it is the only
// writer for the duration of a run; readers rely on SQLite's default
// isolation.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/avoronina/wb-finance-data/internal/report"
)

// Store wraps the SQLite database holding the wb_rrd table.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open opens (creating if needed) the database at dbPath and applies the
// schema file at schemaPath. The schema is idempotent, so Open is safe
// against an existing database.
func Open(dbPath, schemaPath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	schema, err := os.ReadFile(schemaPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("read schema: %w", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: dbPath, logger: logger}, nil
}

// OpenReadOnly opens an existing database for reading. It fails when the
// file does not exist — the read API reports that as a server error
// rather than conjuring an empty database.
func OpenReadOnly(dbPath string) (*Store, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("database not found at %s: %w", dbPath, err)
	}
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &Store{db: db, path: dbPath, logger: slog.Default()}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// RowSource feeds raw rows one at a time into the callback, in arrival
// order. The pagination client satisfies this shape directly.
type RowSource func(ctx context.Context, fn func(report.RawRow) error) error

// MergeAll normalizes and merge-upserts every row the source yields,
// inside one transaction: either the whole batch commits or none of it
// does. Rows without a usable rrd_id are skipped silently. Returns the
// number of distinct rrd_ids merged.
func (s *Store) MergeAll(ctx context.Context, src RowSource) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin merge transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, upsertSQL)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	unique := make(map[int64]struct{})
	err = src(ctx, func(raw report.RawRow) error {
		rec := report.Normalize(raw)
		if rec.RRDID == nil {
			s.logger.Debug("skipping report row without usable rrd_id")
			return nil
		}
		if _, err := stmt.ExecContext(ctx, rec.FieldValues()...); err != nil {
			return fmt.Errorf("upsert rrd %d: %w", *rec.RRDID, err)
		}
		unique[*rec.RRDID] = struct{}{}
		return nil
	})
	if err != nil {
		tx.Rollback()
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit merge: %w", err)
	}
	return len(unique), nil
}
