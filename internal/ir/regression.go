package ir

import (
	"errors"
	"fmt"
)

// ToolchainRole says whether a log came from the start (baseline) or the
// end (candidate) toolchain of a run.
type ToolchainRole int

const (
	RoleStart ToolchainRole = iota
	RoleEnd
)

func (r ToolchainRole) String() string {
	switch r {
	case RoleStart:
		return "start"
	case RoleEnd:
		return "end"
	default:
		return fmt.Sprintf("ToolchainRole(%d)", int(r))
	}
}

// Roles lists both roles in run order.
var Roles = [2]ToolchainRole{RoleStart, RoleEnd}

// ErrLogMissing is matched by MissingLogError via errors.Is.
var ErrLogMissing = errors.New("log missing")

// MissingLogError reports a read of a log slot that was never populated.
type MissingLogError struct {
	ID   CrateID
	Role ToolchainRole
}

func (e *MissingLogError) Error() string {
	return fmt.Sprintf("no %s log for %s", e.Role, e.ID)
}

// Is makes errors.Is(err, ErrLogMissing) succeed.
func (e *MissingLogError) Is(target error) bool {
	return target == ErrLogMissing
}

// Regression holds the two logs recorded for one crate.
// A nil slot means no log was ingested for that role.
type Regression struct {
	ID       CrateID
	StartLog *string
	EndLog   *string
}

// Log returns the log for role, or a *MissingLogError.
func (r Regression) Log(role ToolchainRole) (string, error) {
	var slot *string
	switch role {
	case RoleStart:
		slot = r.StartLog
	case RoleEnd:
		slot = r.EndLog
	}
	if slot == nil {
		return "", &MissingLogError{ID: r.ID, Role: role}
	}
	return *slot, nil
}

// Complete reports whether both logs are present.
func (r Regression) Complete() bool {
	return r.StartLog != nil && r.EndLog != nil
}
