package owners

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/craterreport/internal/ir"
)

// ErrUnknownCrate is returned when a lookup has no record of a crate.
var ErrUnknownCrate = errors.New("unknown crate")

// Lookup returns the maintainer handles of a registry crate.
// An empty, non-nil result means the crate has no mentionable owner.
type Lookup interface {
	Owners(ctx context.Context, name string) ([]string, error)
}

// ForCrate returns the maintainers of id. Repository crates are owned by
// their repository owner; registry crates are looked up by package name.
func ForCrate(ctx context.Context, lookup Lookup, id ir.CrateID) ([]string, error) {
	switch v := id.(type) {
	case ir.RepoCrate:
		return []string{v.Owner}, nil
	case ir.RegistryCrate:
		return lookup.Owners(ctx, v.Package)
	default:
		return nil, fmt.Errorf("owners: unsupported crate %T", id)
	}
}

// Mention formats handles as "@a, @b".
func Mention(handles []string) string {
	parts := make([]string, len(handles))
	for i, h := range handles {
		parts[i] = "@" + h
	}
	return strings.Join(parts, ", ")
}

// Static is a Lookup backed by a fixed map. Names missing from the map
// fail with ErrUnknownCrate.
type Static map[string][]string

// Owners implements Lookup.
func (s Static) Owners(_ context.Context, name string) ([]string, error) {
	handles, ok := s[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrUnknownCrate)
	}
	return handles, nil
}

type cachedResult struct {
	handles []string
	err     error
}

// Cached memoises a Lookup per name. Failures are cached too, so a name
// that failed once is not retried within a report. Not safe for
// concurrent use.
type Cached struct {
	next    Lookup
	results map[string]cachedResult
}

// NewCached wraps next.
func NewCached(next Lookup) *Cached {
	return &Cached{next: next, results: make(map[string]cachedResult)}
}

// Owners implements Lookup.
func (c *Cached) Owners(ctx context.Context, name string) ([]string, error) {
	if r, ok := c.results[name]; ok {
		return r.handles, r.err
	}
	handles, err := c.next.Owners(ctx, name)
	if err != nil && ctx.Err() != nil {
		// Cancellation says nothing about the crate.
		return nil, err
	}
	c.results[name] = cachedResult{handles: handles, err: err}
	return handles, err
}
