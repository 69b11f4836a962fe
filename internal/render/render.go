// Package render turns an aggregated regression table into the markdown
// report posted on the experiment's tracking issue.
//
// Output is a pure function of the table, the detail policy and the
// owner lookup's answers: rendering the same inputs twice yields the same
// bytes.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/craterreport/internal/aggregate"
	"github.com/roach88/craterreport/internal/ir"
	"github.com/roach88/craterreport/internal/owners"
)

// noOwner replaces a mention when no handle could be found.
const noOwner = "no owner?"

// Renderer renders report text.
type Renderer struct {
	lookup owners.Lookup
	links  LinkBuilder
	policy ir.DetailPolicy
}

// New creates a Renderer. lookup is only consulted when policy asks for
// mentions; wrap it in owners.NewCached to avoid repeated requests.
func New(lookup owners.Lookup, links LinkBuilder, policy ir.DetailPolicy) *Renderer {
	return &Renderer{lookup: lookup, links: links, policy: policy}
}

// Render formats every bucket of table in order.
// Lookup failures never fail the render; only context cancellation does.
func (r *Renderer) Render(ctx context.Context, table *aggregate.Table) (string, error) {
	var sb strings.Builder
	for _, b := range table.Buckets {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if b.IsRoot() {
			r.writeRoot(ctx, &sb, b.Regressions[0])
			continue
		}
		r.writeShared(ctx, &sb, b)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// writeRoot writes a single-crate bucket as one line.
func (r *Renderer) writeRoot(ctx context.Context, sb *strings.Builder, reg ir.Regression) {
	fmt.Fprintf(sb, " * root: %s%s\n", r.row(reg), r.rootMention(ctx, reg.ID))
}

// writeShared writes a header plus a collapsible list of affected crates.
func (r *Renderer) writeShared(ctx context.Context, sb *strings.Builder, b aggregate.Bucket) {
	fmt.Fprintf(sb, "\nroot: %s - %d detected crates which regressed due to this%s\n",
		b.Cause, len(b.Regressions), r.causeMention(ctx, b.Cause))
	sb.WriteString("<details>\n\n")
	_, unknown := b.Cause.(ir.Unknown)
	for _, reg := range b.Regressions {
		fmt.Fprintf(sb, " * %s%s\n", r.row(reg), r.memberMention(ctx, reg.ID, unknown))
	}
	sb.WriteString("\n</details>\n\n")
}

// row renders "<id>: [start](<url>) v. [end](<url>)".
func (r *Renderer) row(reg ir.Regression) string {
	return fmt.Sprintf("%s: [%s](%s) v. [%s](%s)",
		reg.ID,
		ir.RoleStart, r.links.LogURL(reg.ID, ir.RoleStart),
		ir.RoleEnd, r.links.LogURL(reg.ID, ir.RoleEnd),
	)
}

func (r *Renderer) rootMention(ctx context.Context, id ir.CrateID) string {
	if !r.policy.Roots() {
		return ""
	}
	handles, ok := r.crateOwners(ctx, id)
	if !ok {
		return "; " + noOwner
	}
	return "; cc " + owners.Mention(handles)
}

// causeMention mentions the owners of the crate a shared cause names.
// Unknown names no crate, so its header mentions nobody.
func (r *Renderer) causeMention(ctx context.Context, cause ir.SuspectedCause) string {
	if !r.policy.Roots() {
		return ""
	}
	name, ok := ir.CauseCrateName(cause)
	if !ok {
		return ""
	}
	handles, err := r.lookup.Owners(ctx, name)
	if err != nil || len(handles) == 0 {
		if err != nil {
			slog.Warn("owner lookup failed", "crate", name, "error", err)
		}
		return "; " + noOwner
	}
	return "; cc " + owners.Mention(handles)
}

// memberMention mentions a crate listed under a shared cause. Under a
// named cause the handles are quoted so they do not notify: the cause's
// owners were already mentioned in the header.
func (r *Renderer) memberMention(ctx context.Context, id ir.CrateID, unknown bool) string {
	if !r.policy.Causes() {
		return ""
	}
	handles, ok := r.crateOwners(ctx, id)
	if !ok {
		return "; " + noOwner
	}
	if unknown {
		return "; cc " + owners.Mention(handles)
	}
	return "; cc `" + owners.Mention(handles) + "`"
}

// crateOwners looks up id's maintainers. ok is false when the lookup
// failed or returned nobody; failures are logged.
func (r *Renderer) crateOwners(ctx context.Context, id ir.CrateID) ([]string, bool) {
	handles, err := owners.ForCrate(ctx, r.lookup, id)
	if err != nil {
		slog.Warn("owner lookup failed", "crate", id.String(), "error", err)
		return nil, false
	}
	return handles, len(handles) > 0
}
