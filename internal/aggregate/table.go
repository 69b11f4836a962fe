package aggregate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/craterreport/internal/classify"
	"github.com/roach88/craterreport/internal/ir"
)

// Classifier resolves one crate's end log to a cause.
type Classifier func(endLog, crateName string) ir.SuspectedCause

// IncompleteError reports a regression missing one of its logs at
// classification time. The archive did not log both toolchains.
type IncompleteError struct {
	ID ir.CrateID
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("regression %s is missing a log; both toolchains must be ingested before classification", e.ID)
}

// Bucket is one cause and the regressions attributed to it.
type Bucket struct {
	Cause       ir.SuspectedCause
	Regressions []ir.Regression
}

// IsRoot reports whether the bucket holds a single regression.
func (b Bucket) IsRoot() bool {
	return len(b.Regressions) == 1
}

// Table is the ordered result of aggregation.
type Table struct {
	Buckets []Bucket
}

// Len returns the total number of regressions across all buckets.
func (t *Table) Len() int {
	n := 0
	for _, b := range t.Buckets {
		n += len(b.Regressions)
	}
	return n
}

// Bucket returns the bucket for cause, if any.
func (t *Table) Bucket(cause ir.SuspectedCause) (Bucket, bool) {
	for _, b := range t.Buckets {
		if b.Cause == cause {
			return b, true
		}
	}
	return Bucket{}, false
}

// Build classifies every regression and groups it by cause.
// regressions must be complete and in crate order; classifier may be nil to
// use classify.Classify.
func Build(regressions []ir.Regression, classifier Classifier) (*Table, error) {
	if classifier == nil {
		classifier = classify.Classify
	}

	groups := make(map[ir.SuspectedCause][]ir.Regression)
	for _, reg := range regressions {
		if !reg.Complete() {
			return nil, &IncompleteError{ID: reg.ID}
		}
		endLog, err := reg.Log(ir.RoleEnd)
		if err != nil {
			return nil, err
		}
		cause := classifier(endLog, ir.CrateName(reg.ID))
		groups[cause] = append(groups[cause], reg)
	}

	causes := make([]ir.SuspectedCause, 0, len(groups))
	for c := range groups {
		causes = append(causes, c)
	}
	slices.SortFunc(causes, ir.CompareCauses)

	table := &Table{Buckets: make([]Bucket, 0, len(causes))}
	for _, c := range causes {
		table.Buckets = append(table.Buckets, Bucket{Cause: c, Regressions: groups[c]})
	}
	return table, nil
}

// CrateList renders the side-channel list of regressed crates: one
// ir.CrateName per line, in input order, without a trailing newline.
func CrateList(regressions []ir.Regression) string {
	names := make([]string, len(regressions))
	for i, reg := range regressions {
		names[i] = ir.CrateName(reg.ID)
	}
	return strings.Join(names, "\n")
}
