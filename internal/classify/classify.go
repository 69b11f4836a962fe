// Package classify derives a suspected cause from a crate's end-toolchain log.
//
// Only literal markers are recognised. A log yields zero or more candidate
// causes; exactly one candidate resolves to that cause, anything else
// resolves to ir.Unknown so a human looks at it.
package classify

import (
	"regexp"
	"strings"

	"github.com/roach88/craterreport/internal/ir"
)

var (
	// The compile marker accepts either capitalisation of its first letter;
	// the document marker does not. Cargo emitted both spellings.
	compileRe  = regexp.MustCompile("[Cc]ould not compile `([^)]+?)`")
	documentRe = regexp.MustCompile("Could not document `([^`)]+?)`")
)

// Substrings cargo prints when the crate's own tests fail.
const (
	libTestFailed = "error: test failed, to rerun pass '--lib'"
	docTestFailed = "error: test failed, to rerun pass '--doc'"
)

// Candidates returns every candidate cause found in endLog, in marker order:
// compile errors, documentation errors, test failure, doc-test failure.
// crateName is the regressed crate's own name (see ir.CrateName); test
// failures are attributed to it.
func Candidates(endLog, crateName string) []ir.SuspectedCause {
	var out []ir.SuspectedCause
	for _, m := range compileRe.FindAllStringSubmatch(endLog, -1) {
		out = append(out, ir.CompileError{CrateName: m[1]})
	}
	for _, m := range documentRe.FindAllStringSubmatch(endLog, -1) {
		out = append(out, ir.DocumentationError{CrateName: m[1]})
	}
	if strings.Contains(endLog, libTestFailed) {
		out = append(out, ir.TestFailure{CrateName: crateName})
	}
	if strings.Contains(endLog, docTestFailed) {
		out = append(out, ir.DocTestFailure{CrateName: crateName})
	}
	return out
}

// Resolve reduces candidates to one cause. No tie-breaking is attempted.
func Resolve(candidates []ir.SuspectedCause) ir.SuspectedCause {
	if len(candidates) == 1 {
		return candidates[0]
	}
	return ir.Unknown{}
}

// Classify returns the suspected cause for one crate's end log.
func Classify(endLog, crateName string) ir.SuspectedCause {
	return Resolve(Candidates(endLog, crateName))
}
