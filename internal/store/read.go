package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/craterreport/internal/ir"
)

// recordColumns pivots the per-role rows of one identity into a record.
const recordColumns = `
	kind, key1, key2,
	MAX(CASE WHEN role = 0 THEN content END),
	MAX(CASE WHEN role = 1 THEN content END)
`

// Regressions returns every record, ordered by crate identity
// (kind, then key fields, bytewise).
//
// Returns an empty slice (not nil) if nothing was ingested.
func (s *Store) Regressions(ctx context.Context) ([]ir.Regression, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM logs
		GROUP BY kind, key1, key2
		ORDER BY kind ASC, key1 COLLATE BINARY ASC, key2 COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query regressions: %w", err)
	}
	defer rows.Close()

	regressions := []ir.Regression{}
	for rows.Next() {
		reg, err := scanRegression(rows)
		if err != nil {
			return nil, err
		}
		regressions = append(regressions, reg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate regressions: %w", err)
	}

	return regressions, nil
}

// Get returns the record for id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id ir.CrateID) (ir.Regression, error) {
	key1, key2 := ir.CrateKeys(id)
	row := s.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM logs
		WHERE kind = ? AND key1 = ? AND key2 = ?
		GROUP BY kind, key1, key2
	`, int(ir.KindOf(id)), key1, key2)

	reg, err := scanRegression(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Regression{}, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	return reg, err
}

// Count returns the number of distinct crates with at least one log.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM (SELECT 1 FROM logs GROUP BY kind, key1, key2)
	`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count regressions: %w", err)
	}
	return count, nil
}

// LoadRun returns the saved ingestion run, or ErrNoRun.
func (s *Store) LoadRun(ctx context.Context) (ir.Run, error) {
	var run ir.Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, experiment, start_toolchain, end_toolchain
		FROM runs
		LIMIT 1
	`).Scan(&run.ID, &run.Experiment, &run.StartToolchain, &run.EndToolchain)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Run{}, ErrNoRun
	}
	if err != nil {
		return ir.Run{}, fmt.Errorf("load run: %w", err)
	}
	return run, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegression(row rowScanner) (ir.Regression, error) {
	var (
		kind       int
		key1, key2 string
		start, end sql.NullString
	)
	if err := row.Scan(&kind, &key1, &key2, &start, &end); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ir.Regression{}, err
		}
		return ir.Regression{}, fmt.Errorf("scan regression: %w", err)
	}

	id, err := ir.NewCrateID(ir.CrateKind(kind), key1, key2)
	if err != nil {
		return ir.Regression{}, fmt.Errorf("scan regression: %w", err)
	}

	reg := ir.Regression{ID: id}
	if start.Valid {
		reg.StartLog = &start.String
	}
	if end.Valid {
		reg.EndLog = &end.String
	}
	return reg, nil
}
