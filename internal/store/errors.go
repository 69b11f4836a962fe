package store

import (
	"errors"
	"fmt"

	"github.com/roach88/craterreport/internal/ir"
)

var (
	// ErrDuplicateLog is matched by *DuplicateLogError via errors.Is.
	ErrDuplicateLog = errors.New("duplicate log")

	// ErrNotFound is returned by Get when no log exists for an identity.
	ErrNotFound = errors.New("regression not found")

	// ErrRunExists is returned by SaveRun when the database already holds a run.
	ErrRunExists = errors.New("database already holds an ingested run")

	// ErrNoRun is returned by LoadRun on a database that was never ingested into.
	ErrNoRun = errors.New("database holds no ingested run")
)

// DuplicateLogError reports a second log for an already populated slot.
// The archive logged the same crate and toolchain twice.
type DuplicateLogError struct {
	ID   ir.CrateID
	Role ir.ToolchainRole
}

func (e *DuplicateLogError) Error() string {
	return fmt.Sprintf("replacing existing %s log for %s", e.Role, e.ID)
}

// Is makes errors.Is(err, ErrDuplicateLog) succeed.
func (e *DuplicateLogError) Is(target error) bool {
	return target == ErrDuplicateLog
}
