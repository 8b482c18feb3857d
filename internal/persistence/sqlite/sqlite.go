// Package sqlite implements the work order repository on SQLite via the
// pure-Go modernc.org driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/example/mechanicshop/internal/persistence"
	_ "modernc.org/sqlite"
)

// Store manages the SQLite connection and implements
// persistence.WorkOrderRepository.
type Store struct {
	db *sql.DB
}

// Open prepares a SQLite backed store for the given DSN.
//
// SQLite allows a single writer at a time, so the connection pool is capped
// at one connection: every transaction, including the conflict re-check that
// precedes each write, observes a serialized view of the database.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", dsn, err)
	}
	db.SetMaxOpenConns(1)
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate creates the work order schema when it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS work_orders (
			id          TEXT PRIMARY KEY,
			mechanic_id TEXT NOT NULL,
			bay_id      TEXT NOT NULL,
			start_time  TEXT NOT NULL,
			end_time    TEXT NOT NULL,
			status      TEXT NOT NULL,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL,
			CHECK (start_time < end_time)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_work_orders_mechanic ON work_orders (mechanic_id, start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_work_orders_bay ON work_orders (bay_id, start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_work_orders_status_end ON work_orders (status, end_time)`,
	}

	for _, statement := range statements {
		if _, err := s.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("sqlite: migrate: %w", err)
		}
	}
	return nil
}

// withTransaction executes fn inside a transaction, rolling back on error or
// panic and committing otherwise.
func (s *Store) withTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapSQLiteError(err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return mapSQLiteError(err)
	}
	return nil
}

// mapSQLiteError translates driver errors into persistence sentinels.
func mapSQLiteError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.ErrNotFound
	}

	message := err.Error()
	switch {
	case strings.Contains(message, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %v", persistence.ErrDuplicate, err)
	case strings.Contains(message, "constraint failed"):
		return fmt.Errorf("%w: %v", persistence.ErrConflict, err)
	case strings.Contains(message, "database is locked"),
		strings.Contains(message, "unable to open database"):
		return fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	return err
}
