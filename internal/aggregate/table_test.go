package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/craterreport/internal/ir"
)

func reg(id ir.CrateID, endLog string) ir.Regression {
	start := "ok"
	return ir.Regression{ID: id, StartLog: &start, EndLog: &endLog}
}

var (
	alpha  = ir.RegistryCrate{Package: "alpha", Version: "1.0"}
	beta   = ir.RegistryCrate{Package: "beta", Version: "2.0"}
	gamma  = ir.RegistryCrate{Package: "gamma", Version: "0.3"}
	widget = ir.RepoCrate{Owner: "octo", Name: "widget"}
)

func TestBuild_SharedCause(t *testing.T) {
	table, err := Build([]ir.Regression{
		reg(alpha, "error: could not compile `libfoo`"),
		reg(beta, "error: could not compile `libfoo`"),
	}, nil)
	require.NoError(t, err)

	require.Len(t, table.Buckets, 1)
	b := table.Buckets[0]
	assert.Equal(t, ir.SuspectedCause(ir.CompileError{CrateName: "libfoo"}), b.Cause)
	assert.False(t, b.IsRoot())
	require.Len(t, b.Regressions, 2)
	assert.Equal(t, ir.CrateID(alpha), b.Regressions[0].ID)
	assert.Equal(t, ir.CrateID(beta), b.Regressions[1].ID)
}

func TestBuild_RepoTestFailureIsRoot(t *testing.T) {
	table, err := Build([]ir.Regression{
		reg(widget, "error: test failed, to rerun pass '--lib'"),
	}, nil)
	require.NoError(t, err)

	require.Len(t, table.Buckets, 1)
	assert.Equal(t, ir.SuspectedCause(ir.TestFailure{CrateName: "octo/widget"}), table.Buckets[0].Cause)
	assert.True(t, table.Buckets[0].IsRoot())
}

func TestBuild_BucketOrderAndUnknownLast(t *testing.T) {
	table, err := Build([]ir.Regression{
		reg(alpha, "nothing useful"),
		reg(beta, "error: Could not document `zzz`"),
		reg(gamma, "error: could not compile `yyy`"),
		reg(widget, "garbage"),
	}, nil)
	require.NoError(t, err)

	var causes []ir.SuspectedCause
	for _, b := range table.Buckets {
		causes = append(causes, b.Cause)
	}
	assert.Equal(t, []ir.SuspectedCause{
		ir.CompileError{CrateName: "yyy"},
		ir.DocumentationError{CrateName: "zzz"},
		ir.Unknown{},
	}, causes)

	unknown, ok := table.Bucket(ir.Unknown{})
	require.True(t, ok)
	require.Len(t, unknown.Regressions, 2)
	assert.Equal(t, ir.CrateID(alpha), unknown.Regressions[0].ID)
	assert.Equal(t, ir.CrateID(widget), unknown.Regressions[1].ID)
}

func TestBuild_IsPartition(t *testing.T) {
	input := []ir.Regression{
		reg(alpha, "error: could not compile `libfoo`"),
		reg(beta, "error: could not compile `libfoo`\nerror: test failed, to rerun pass '--lib'"),
		reg(gamma, "error: test failed, to rerun pass '--doc'"),
		reg(widget, ""),
	}
	table, err := Build(input, nil)
	require.NoError(t, err)

	seen := map[ir.CrateID]int{}
	for _, b := range table.Buckets {
		for _, r := range b.Regressions {
			seen[r.ID]++
		}
	}
	assert.Equal(t, len(input), table.Len())
	assert.Len(t, seen, len(input))
	for _, r := range input {
		assert.Equal(t, 1, seen[r.ID], "%s must appear exactly once", r.ID)
	}
}

func TestBuild_CustomClassifier(t *testing.T) {
	calls := 0
	table, err := Build([]ir.Regression{reg(alpha, "x"), reg(widget, "y")}, func(endLog, name string) ir.SuspectedCause {
		calls++
		return ir.CompileError{CrateName: name}
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	_, ok := table.Bucket(ir.CompileError{CrateName: "octo/widget"})
	assert.True(t, ok)
}

func TestBuild_IncompleteRegression(t *testing.T) {
	start := "ok"
	_, err := Build([]ir.Regression{{ID: alpha, StartLog: &start}}, nil)

	var incomplete *IncompleteError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, ir.CrateID(alpha), incomplete.ID)
}

func TestBuild_Empty(t *testing.T) {
	table, err := Build(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, table.Buckets)
	assert.Equal(t, 0, table.Len())
}

func TestCrateList(t *testing.T) {
	got := CrateList([]ir.Regression{reg(alpha, ""), reg(beta, ""), reg(widget, "")})
	assert.Equal(t, "alpha\nbeta\nocto/widget", got)
	assert.Equal(t, "", CrateList(nil))
}
