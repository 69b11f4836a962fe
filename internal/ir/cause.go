package ir

import (
	"cmp"
	"fmt"
)

// SuspectedCause is a sealed interface naming the most likely reason a crate
// regressed. Only CompileError, DocumentationError, TestFailure,
// DocTestFailure and Unknown implement this.
//
// All variants are comparable, so causes key a map directly. Unknown has no
// payload and therefore forms a single bucket.
type SuspectedCause interface {
	suspectedCause() // Sealed - only these types implement it
	fmt.Stringer
}

// CompileError means the end log reports that CrateName failed to compile.
// CrateName is usually a dependency of the regressed crate.
type CompileError struct {
	CrateName string `json:"crate_name"`
}

func (CompileError) suspectedCause() {}

func (c CompileError) String() string { return c.CrateName }

// DocumentationError means the end log reports that CrateName failed to document.
type DocumentationError struct {
	CrateName string `json:"crate_name"`
}

func (DocumentationError) suspectedCause() {}

func (c DocumentationError) String() string { return c.CrateName }

// TestFailure means the regressed crate's own library tests failed.
type TestFailure struct {
	CrateName string `json:"crate_name"`
}

func (TestFailure) suspectedCause() {}

func (c TestFailure) String() string { return c.CrateName }

// DocTestFailure means the regressed crate's own doc-tests failed.
type DocTestFailure struct {
	CrateName string `json:"crate_name"`
}

func (DocTestFailure) suspectedCause() {}

func (c DocTestFailure) String() string { return c.CrateName }

// Unknown collects every crate whose log yielded zero or several candidates.
type Unknown struct{}

func (Unknown) suspectedCause() {}

func (Unknown) String() string { return "unknown causes" }

// causeRank is the tag order used by CompareCauses. Unknown is last.
func causeRank(c SuspectedCause) int {
	switch c.(type) {
	case CompileError:
		return 0
	case DocumentationError:
		return 1
	case TestFailure:
		return 2
	case DocTestFailure:
		return 3
	case Unknown:
		return 4
	default:
		panic(fmt.Sprintf("ir: unknown SuspectedCause variant %T", c))
	}
}

// CauseCrateName returns the crate a cause is attributed to.
// ok is false for Unknown.
func CauseCrateName(c SuspectedCause) (name string, ok bool) {
	switch v := c.(type) {
	case CompileError:
		return v.CrateName, true
	case DocumentationError:
		return v.CrateName, true
	case TestFailure:
		return v.CrateName, true
	case DocTestFailure:
		return v.CrateName, true
	case Unknown:
		return "", false
	default:
		panic(fmt.Sprintf("ir: unknown SuspectedCause variant %T", c))
	}
}

// CompareCauses orders causes by variant tag, then by crate name.
func CompareCauses(a, b SuspectedCause) int {
	if c := cmp.Compare(causeRank(a), causeRank(b)); c != 0 {
		return c
	}
	an, _ := CauseCrateName(a)
	bn, _ := CauseCrateName(b)
	return cmp.Compare(an, bn)
}
