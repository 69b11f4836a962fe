package ir

import "fmt"

// DetailPolicy controls which report rows mention maintainers.
type DetailPolicy int

const (
	// PolicyAll mentions maintainers on root rows, cause headers and every
	// crate listed under a shared cause.
	PolicyAll DetailPolicy = iota

	// PolicyRoots mentions maintainers on root rows and cause headers only.
	PolicyRoots

	// PolicyNone mentions nobody.
	PolicyNone
)

// PolicyNames lists the accepted spellings, in help-text order.
var PolicyNames = []string{"all", "roots", "none", "print-list"}

// ParseDetailPolicy parses a policy name. "print-list" is an alias for "none".
func ParseDetailPolicy(s string) (DetailPolicy, error) {
	switch s {
	case "all":
		return PolicyAll, nil
	case "roots":
		return PolicyRoots, nil
	case "none", "print-list":
		return PolicyNone, nil
	default:
		return 0, fmt.Errorf("invalid detail policy %q: must be one of %v", s, PolicyNames)
	}
}

func (p DetailPolicy) String() string {
	switch p {
	case PolicyAll:
		return "all"
	case PolicyRoots:
		return "roots"
	case PolicyNone:
		return "none"
	default:
		return fmt.Sprintf("DetailPolicy(%d)", int(p))
	}
}

// Roots reports whether root rows and cause headers mention maintainers.
func (p DetailPolicy) Roots() bool {
	return p == PolicyAll || p == PolicyRoots
}

// Causes reports whether crates listed under a shared cause mention their
// own maintainers.
func (p DetailPolicy) Causes() bool {
	return p == PolicyAll
}
