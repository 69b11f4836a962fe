package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/craterreport/internal/ir"
)

// RoleResolver maps a toolchain label to its role in the run.
// *runconfig.Config satisfies it.
type RoleResolver interface {
	Role(label string) (ir.ToolchainRole, error)
}

// Sink receives ingested logs. *store.Store and *store.Tx satisfy it.
type Sink interface {
	Insert(ctx context.Context, id ir.CrateID, role ir.ToolchainRole, log string) error
}

// EntrySource yields archive entries until io.EOF. *Reader satisfies it.
type EntrySource interface {
	Next() (Entry, error)
}

// Ingest drains src into sink and returns the number of logs stored.
// It stops at the first error; the caller must discard what the sink
// received, typically by rolling back a *store.Tx.
func Ingest(ctx context.Context, src EntrySource, roles RoleResolver, sink Sink) (int, error) {
	count := 0
	for {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		entry, err := src.Next()
		if errors.Is(err, io.EOF) {
			return count, nil
		}
		if err != nil {
			return count, err
		}

		lp, err := ParsePath(entry.Path)
		if err != nil {
			return count, err
		}
		role, err := roles.Role(lp.Toolchain)
		if err != nil {
			return count, fmt.Errorf("%s: %w", entry.Path, err)
		}
		if err := sink.Insert(ctx, lp.ID, role, string(entry.Content)); err != nil {
			return count, err
		}

		count++
		slog.Debug("ingested log", "crate", lp.ID.String(), "role", role.String(), "bytes", len(entry.Content))
	}
}
