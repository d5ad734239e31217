// Package store owns the physical SQLite connection and schema. It is the
// single point of truth for the database: it creates tables, constraints
// and triggers on first use, seeds example rows into an empty database,
// and exposes query/exec/scalar primitives plus a scoped transaction.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"eduregistry/pkg/config"
	apperrors "eduregistry/pkg/errors"
)

// Store wraps the shared connection. SQLite does not support concurrent
// writers on one connection, so writes take the write lock; reads may run
// concurrently under the read lock.
type Store struct {
	db     *sqlx.DB
	mu     sync.RWMutex
	logger *zap.Logger
}

// Open opens (or creates) the database at cfg.Path, pins the pool to a
// single connection for the process lifetime, and applies the schema.
func Open(cfg config.DatabaseConfig, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 30 * time.Second
	}
	dsn := fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=%d", cfg.Path, busy.Milliseconds())

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrStore.Code, "open database")
	}

	// One shared connection for the whole process.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, apperrors.Wrap(err, apperrors.ErrStore.Code, "ping database")
	}

	s := &Store{db: db, logger: logger}
	if err := s.createSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("database ready", zap.String("path", cfg.Path))
	return s, nil
}

// NewWithDB wraps an existing connection. Used by tests driving sqlmock;
// the schema is not created.
func NewWithDB(db *sqlx.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// Close releases the connection at process shutdown.
func (s *Store) Close() error {
	return s.db.Close()
}

// Select runs a read-only query returning zero or more rows into dest.
func (s *Store) Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.db.SelectContext(ctx, dest, query, args...); err != nil {
		return mapError(err)
	}
	return nil
}

// Get runs a read-only query expected to return exactly one row.
func (s *Store) Get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.db.GetContext(ctx, dest, query, args...); err != nil {
		return mapError(err)
	}
	return nil
}

// Exec runs a write statement and returns the affected row count.
func (s *Store) Exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, mapError(err)
	}
	return affected, nil
}

// ScalarInt runs a single-value query, for counts and integer aggregates.
// NULL reads as zero.
func (s *Store) ScalarInt(ctx context.Context, query string, args ...interface{}) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var v sql.NullInt64
	if err := s.db.GetContext(ctx, &v, query, args...); err != nil {
		return 0, mapError(err)
	}
	return v.Int64, nil
}

// ScalarFloat runs a single-value query that may yield NULL, for averages
// and similar aggregates. ok is false when the value was NULL.
func (s *Store) ScalarFloat(ctx context.Context, query string, args ...interface{}) (value float64, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var v sql.NullFloat64
	if err := s.db.GetContext(ctx, &v, query, args...); err != nil {
		return 0, false, mapError(err)
	}
	return v.Float64, v.Valid, nil
}

// Tx exposes the statement primitives inside a transaction. All statements
// execute in submission order on the single shared connection.
type Tx struct {
	tx *sqlx.Tx
}

// Exec runs a write statement inside the transaction.
func (t *Tx) Exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, mapError(err)
	}
	return affected, nil
}

// ExecInsert runs an INSERT and returns the generated row id.
func (t *Tx) ExecInsert(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, mapError(err)
	}
	return id, nil
}

// Get runs a single-row read inside the transaction.
func (t *Tx) Get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	if err := t.tx.GetContext(ctx, dest, query, args...); err != nil {
		return mapError(err)
	}
	return nil
}

// Select runs a multi-row read inside the transaction.
func (t *Tx) Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	if err := t.tx.SelectContext(ctx, dest, query, args...); err != nil {
		return mapError(err)
	}
	return nil
}

// WithTx executes fn inside a transaction, committing on success and
// rolling back on error or panic (the panic is re-raised after rollback).
// Nested transactions are not supported. The transaction holds the single
// connection for its entire duration.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqltx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return mapError(err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqltx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := sqltx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = fmt.Errorf("rollback failed (%v) after: %w", rbErr, err)
			}
		}
	}()

	if err = fn(&Tx{tx: sqltx}); err != nil {
		return mapError(err)
	}
	if err = sqltx.Commit(); err != nil {
		return mapError(err)
	}
	return nil
}

// TableCount describes one table in the database info summary.
type TableCount struct {
	Name    string `json:"name"`
	Records int64  `json:"records"`
}

// Info returns per-table row counts for the user tables.
func (s *Store) Info(ctx context.Context) ([]TableCount, error) {
	var names []string
	if err := s.Select(ctx, &names,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`); err != nil {
		return nil, err
	}
	counts := make([]TableCount, 0, len(names))
	for _, name := range names {
		n, err := s.ScalarInt(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", name))
		if err != nil {
			return nil, err
		}
		counts = append(counts, TableCount{Name: name, Records: n})
	}
	return counts, nil
}

// mapError classifies driver errors into the domain taxonomy. The SQLite
// driver does not export typed constraint errors, so classification is
// message-based.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var ae *apperrors.Error
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.Wrap(err, apperrors.ErrNotFound.Code, apperrors.ErrNotFound.Message)
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return apperrors.Duplicate(constraintColumns(msg, "UNIQUE constraint failed:"), err)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return apperrors.Integrity("foreign key", err)
	case strings.Contains(msg, "CHECK constraint failed"):
		return apperrors.Integrity(constraintColumns(msg, "CHECK constraint failed:"), err)
	case strings.Contains(msg, "NOT NULL constraint failed"):
		return apperrors.Integrity(constraintColumns(msg, "NOT NULL constraint failed:"), err)
	}
	return apperrors.Wrap(err, apperrors.ErrStore.Code, apperrors.ErrStore.Message)
}

// constraintColumns extracts the violated column list from a SQLite
// constraint message, stripping table prefixes:
// "UNIQUE constraint failed: students.email" -> "email"
// "UNIQUE constraint failed: enrollments.student_id, enrollments.course_id"
// -> "student_id, course_id".
func constraintColumns(msg, marker string) string {
	idx := strings.Index(msg, marker)
	if idx < 0 {
		return ""
	}
	rest := strings.TrimSpace(msg[idx+len(marker):])
	if end := strings.IndexAny(rest, "(\n"); end > 0 {
		rest = strings.TrimSpace(rest[:end])
	}
	parts := strings.Split(rest, ",")
	cols := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if dot := strings.LastIndex(p, "."); dot >= 0 {
			p = p[dot+1:]
		}
		if p != "" {
			cols = append(cols, p)
		}
	}
	return strings.Join(cols, ", ")
}
