package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/craterreport/internal/ir"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// insertPair stores both logs for id.
func insertPair(t *testing.T, s *Store, id ir.CrateID, start, end string) {
	t.Helper()
	ctx := context.Background()
	if err := s.Insert(ctx, id, ir.RoleStart, start); err != nil {
		t.Fatalf("Insert(start) failed: %v", err)
	}
	if err := s.Insert(ctx, id, ir.RoleEnd, end); err != nil {
		t.Fatalf("Insert(end) failed: %v", err)
	}
}
