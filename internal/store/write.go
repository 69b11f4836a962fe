package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/craterreport/internal/ir"
)

// execQuerier is satisfied by *sql.DB and *sql.Tx.
type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Insert stores log as the role slot of the record for id, creating the
// record if needed. Each slot is write-once: a second Insert for the same
// id and role returns a *DuplicateLogError and leaves the first log intact.
func (s *Store) Insert(ctx context.Context, id ir.CrateID, role ir.ToolchainRole, log string) error {
	return insertLog(ctx, s.db, id, role, log)
}

// SaveRun records the ingestion run. A database holds at most one run;
// SaveRun returns ErrRunExists if one was already saved.
func (s *Store) SaveRun(ctx context.Context, run ir.Run) error {
	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := tx.SaveRun(ctx, run); err != nil {
		return err
	}
	return tx.Commit()
}

// Tx is a write transaction covering one whole ingestion. Nothing it
// writes is visible until Commit, so an aborted ingestion leaves the
// database as it was.
//
// The store has a single connection: while a Tx is open, use only the Tx.
type Tx struct {
	tx *sql.Tx
}

// Begin starts a write transaction. Cancelling ctx rolls it back.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &Tx{tx: tx}, nil
}

// Insert is Store.Insert inside the transaction.
func (t *Tx) Insert(ctx context.Context, id ir.CrateID, role ir.ToolchainRole, log string) error {
	return insertLog(ctx, t.tx, id, role, log)
}

// SaveRun is Store.SaveRun inside the transaction.
func (t *Tx) SaveRun(ctx context.Context, run ir.Run) error {
	var count int
	if err := t.tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&count); err != nil {
		return fmt.Errorf("save run: count: %w", err)
	}
	if count > 0 {
		return ErrRunExists
	}

	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, experiment, start_toolchain, end_toolchain)
		VALUES (?, ?, ?, ?)
	`,
		run.ID,
		run.Experiment,
		run.StartToolchain,
		run.EndToolchain,
	)
	if err != nil {
		return fmt.Errorf("save run: insert: %w", err)
	}
	return nil
}

// Commit makes the transaction's writes visible.
func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Rollback discards the transaction. It is a no-op after Commit, so it
// can always be deferred.
func (t *Tx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

func insertLog(ctx context.Context, q execQuerier, id ir.CrateID, role ir.ToolchainRole, log string) error {
	key1, key2 := ir.CrateKeys(id)

	result, err := q.ExecContext(ctx, `
		INSERT INTO logs
		(kind, key1, key2, role, content)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(kind, key1, key2, role) DO NOTHING
	`,
		int(ir.KindOf(id)),
		key1,
		key2,
		int(role),
		log,
	)
	if err != nil {
		return fmt.Errorf("insert %s log for %s: %w", role, id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert %s log for %s: rows affected: %w", role, id, err)
	}
	if rowsAffected == 0 {
		return &DuplicateLogError{ID: id, Role: role}
	}

	return nil
}
