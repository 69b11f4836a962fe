package ir

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareCauses_TagThenName(t *testing.T) {
	causes := []SuspectedCause{
		Unknown{},
		DocTestFailure{CrateName: "a"},
		CompileError{CrateName: "zeta"},
		TestFailure{CrateName: "a"},
		DocumentationError{CrateName: "a"},
		CompileError{CrateName: "alpha"},
	}
	slices.SortFunc(causes, CompareCauses)

	assert.Equal(t, []SuspectedCause{
		CompileError{CrateName: "alpha"},
		CompileError{CrateName: "zeta"},
		DocumentationError{CrateName: "a"},
		TestFailure{CrateName: "a"},
		DocTestFailure{CrateName: "a"},
		Unknown{},
	}, causes)
}

func TestSuspectedCause_UnknownIsOneBucket(t *testing.T) {
	m := map[SuspectedCause]int{}
	m[Unknown{}]++
	m[Unknown{}]++
	m[CompileError{CrateName: "x"}]++
	m[DocumentationError{CrateName: "x"}]++

	assert.Len(t, m, 3)
	assert.Equal(t, 2, m[Unknown{}])
}

func TestCauseCrateName(t *testing.T) {
	name, ok := CauseCrateName(TestFailure{CrateName: "octo/widget"})
	assert.True(t, ok)
	assert.Equal(t, "octo/widget", name)

	_, ok = CauseCrateName(Unknown{})
	assert.False(t, ok)
}

func TestSuspectedCause_String(t *testing.T) {
	assert.Equal(t, "libfoo", CompileError{CrateName: "libfoo"}.String())
	assert.Equal(t, "unknown causes", Unknown{}.String())
}
