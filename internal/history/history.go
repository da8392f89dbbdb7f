// Package history provides a SQLite-backed log of evaluated expressions.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// Entry is one evaluation.
type Entry struct {
	// Expr is the expression as the user wrote it.
	Expr string
	// Normalized is the expression after numeral conversion.
	Normalized string
	// Result is the formatted result, empty if evaluation failed.
	Result string
	// Err is the error message, empty if evaluation succeeded.
	Err string
	// At is when the expression was evaluated.
	At time.Time
}

// Store persists evaluations in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite history store, creating its table if needed.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Record inserts one evaluation. A zero At is recorded as the current time.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	at := e.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO evaluations (expr, normalized, result, err, evaluated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.Expr,
		e.Normalized,
		e.Result,
		e.Err,
		toMillis(at),
	)
	if err != nil {
		return fmt.Errorf("insert evaluation: %w", err)
	}
	return nil
}

// Recent returns up to n of the most recent evaluations, oldest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if n <= 0 {
		return nil, nil
	}
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT expr, normalized, result, err, evaluated_at
		 FROM (
		   SELECT id, expr, normalized, result, err, evaluated_at
		   FROM evaluations
		   ORDER BY id DESC
		   LIMIT ?
		 )
		 ORDER BY id ASC`,
		n,
	)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e  Entry
			at int64
		)
		if err := rows.Scan(&e.Expr, &e.Normalized, &e.Result, &e.Err, &at); err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		e.At = fromMillis(at)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evaluations: %w", err)
	}
	return entries, nil
}
