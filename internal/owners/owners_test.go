package owners

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/craterreport/internal/ir"
)

type countingLookup struct {
	calls map[string]int
	next  Lookup
}

func (c *countingLookup) Owners(ctx context.Context, name string) ([]string, error) {
	c.calls[name]++
	return c.next.Owners(ctx, name)
}

func TestForCrate_RepoOwnerNeedsNoLookup(t *testing.T) {
	lookup := &countingLookup{calls: map[string]int{}, next: Static{}}

	got, err := ForCrate(context.Background(), lookup, ir.RepoCrate{Owner: "octo", Name: "widget"})
	require.NoError(t, err)
	assert.Equal(t, []string{"octo"}, got)
	assert.Empty(t, lookup.calls)
}

func TestForCrate_RegistryUsesPackageName(t *testing.T) {
	lookup := Static{"alpha": {"alice", "bob"}}

	got, err := ForCrate(context.Background(), lookup, ir.RegistryCrate{Package: "alpha", Version: "1.0"})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, got)
}

func TestStatic_Unknown(t *testing.T) {
	_, err := Static{}.Owners(context.Background(), "ghost")
	assert.True(t, errors.Is(err, ErrUnknownCrate))
}

func TestMention(t *testing.T) {
	assert.Equal(t, "@alice, @bob", Mention([]string{"alice", "bob"}))
	assert.Equal(t, "", Mention(nil))
}

func TestCached_CallsBackendOncePerName(t *testing.T) {
	backend := &countingLookup{calls: map[string]int{}, next: Static{"alpha": {"alice"}}}
	cached := NewCached(backend)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := cached.Owners(ctx, "alpha")
		require.NoError(t, err)
		assert.Equal(t, []string{"alice"}, got)

		_, err = cached.Owners(ctx, "ghost")
		assert.Error(t, err)
	}

	assert.Equal(t, 1, backend.calls["alpha"])
	assert.Equal(t, 1, backend.calls["ghost"])
}

type cancelledLookup struct{ calls int }

func (c *cancelledLookup) Owners(ctx context.Context, name string) ([]string, error) {
	c.calls++
	return nil, ctx.Err()
}

func TestCached_DoesNotCacheCancellation(t *testing.T) {
	backend := &cancelledLookup{}
	cached := NewCached(backend)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := cached.Owners(ctx, "alpha")
	require.ErrorIs(t, err, context.Canceled)

	_, err = cached.Owners(context.Background(), "alpha")
	require.NoError(t, err)
	assert.Equal(t, 2, backend.calls)
}
