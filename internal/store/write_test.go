package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/craterreport/internal/ir"
)

func TestInsert_BothRolesPopulateOneRecord(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	id := ir.RegistryCrate{Package: "alpha", Version: "1.0"}

	// End arrives first; ingestion order is arbitrary.
	require.NoError(t, s.Insert(ctx, id, ir.RoleEnd, "end log"))
	require.NoError(t, s.Insert(ctx, id, ir.RoleStart, "start log"))

	reg, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, ir.CrateID(id), reg.ID)
	require.True(t, reg.Complete())
	assert.Equal(t, "start log", *reg.StartLog)
	assert.Equal(t, "end log", *reg.EndLog)
}

func TestInsert_DuplicateSlotFails(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	id := ir.RepoCrate{Owner: "octo", Name: "widget"}

	require.NoError(t, s.Insert(ctx, id, ir.RoleStart, "first"))
	err := s.Insert(ctx, id, ir.RoleStart, "second")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateLog))

	var dup *DuplicateLogError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, ir.CrateID(id), dup.ID)
	assert.Equal(t, ir.RoleStart, dup.Role)
	assert.Equal(t, "replacing existing start log for octo/widget", err.Error())

	// First write wins.
	reg, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "first", *reg.StartLog)
	assert.Nil(t, reg.EndLog)
}

func TestInsert_SameKeysDifferentKindsStayDistinct(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, ir.RegistryCrate{Package: "foo", Version: "bar"}, ir.RoleEnd, "registry"))
	require.NoError(t, s.Insert(ctx, ir.RepoCrate{Owner: "foo", Name: "bar"}, ir.RoleEnd, "repo"))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestInsert_VersionsStayDistinct(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, ir.RegistryCrate{Package: "foo", Version: "1.0"}, ir.RoleEnd, "a"))
	require.NoError(t, s.Insert(ctx, ir.RegistryCrate{Package: "foo", Version: "1.1"}, ir.RoleEnd, "b"))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSaveRun_OnlyOnce(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	run := ir.Run{ID: "run-1", Experiment: "pr-1", StartToolchain: "stable", EndToolchain: "beta"}

	require.NoError(t, s.SaveRun(ctx, run))
	err := s.SaveRun(ctx, ir.Run{ID: "run-2", Experiment: "pr-2"})
	assert.ErrorIs(t, err, ErrRunExists)

	got, err := s.LoadRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, run, got)
}

func TestTx_RollbackDiscardsRunAndLogs(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	alpha := ir.RegistryCrate{Package: "alpha", Version: "1.0"}

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.SaveRun(ctx, ir.Run{ID: "run-1", Experiment: "pr-1"}))
	require.NoError(t, tx.Insert(ctx, alpha, ir.RoleStart, "ok"))
	require.NoError(t, tx.Insert(ctx, alpha, ir.RoleEnd, "error"))

	err = tx.Insert(ctx, alpha, ir.RoleEnd, "again")
	require.ErrorIs(t, err, ErrDuplicateLog)
	require.NoError(t, tx.Rollback())

	_, err = s.LoadRun(ctx)
	assert.ErrorIs(t, err, ErrNoRun)
	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	// The aborted run does not block a retry.
	require.NoError(t, s.SaveRun(ctx, ir.Run{ID: "run-2", Experiment: "pr-1"}))
}

func TestTx_CommitPublishesWrites(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	alpha := ir.RegistryCrate{Package: "alpha", Version: "1.0"}
	run := ir.Run{ID: "run-1", Experiment: "pr-1", StartToolchain: "stable", EndToolchain: "beta"}

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.SaveRun(ctx, run))
	require.NoError(t, tx.Insert(ctx, alpha, ir.RoleStart, "ok"))
	require.NoError(t, tx.Commit())
	require.NoError(t, tx.Rollback(), "rollback after commit is a no-op")

	got, err := s.LoadRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, run, got)
	reg, err := s.Get(ctx, alpha)
	require.NoError(t, err)
	assert.False(t, reg.Complete())
}
