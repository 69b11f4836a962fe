package ir

import (
	"cmp"
	"fmt"
)

// CrateID is a sealed interface identifying a regressed crate.
// Only RegistryCrate and RepoCrate implement this.
//
// Both variants are plain comparable structs, so a CrateID can be used
// directly as a map key. Use CompareCrateIDs for ordering.
type CrateID interface {
	crateID() // Sealed - only these types implement it
	fmt.Stringer
}

// CrateKind is the variant tag of a CrateID.
// The numeric order is the sort order: registry crates before repo crates.
type CrateKind int

const (
	// KindRegistry identifies a crate published to the package registry.
	KindRegistry CrateKind = iota

	// KindRepo identifies a crate built straight from a source repository.
	KindRepo
)

// String returns the archive path segment for the kind ("reg" or "gh").
func (k CrateKind) String() string {
	switch k {
	case KindRegistry:
		return "reg"
	case KindRepo:
		return "gh"
	default:
		return fmt.Sprintf("CrateKind(%d)", int(k))
	}
}

// RegistryCrate is a registry package at a specific version.
type RegistryCrate struct {
	Package string `json:"package"`
	Version string `json:"version"`
}

func (RegistryCrate) crateID() {}

// String renders the crate as "package-version".
func (c RegistryCrate) String() string {
	return c.Package + "-" + c.Version
}

// RepoCrate is a crate identified by its source repository.
type RepoCrate struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

func (RepoCrate) crateID() {}

// String renders the crate as "owner/name".
func (c RepoCrate) String() string {
	return c.Owner + "/" + c.Name
}

// KindOf returns the variant tag of id.
func KindOf(id CrateID) CrateKind {
	switch id.(type) {
	case RegistryCrate:
		return KindRegistry
	case RepoCrate:
		return KindRepo
	default:
		panic(fmt.Sprintf("ir: unknown CrateID variant %T", id))
	}
}

// CrateKeys returns the two ordered key fields of id.
// Registry crates yield (package, version); repo crates yield (owner, name).
func CrateKeys(id CrateID) (string, string) {
	switch v := id.(type) {
	case RegistryCrate:
		return v.Package, v.Version
	case RepoCrate:
		return v.Owner, v.Name
	default:
		panic(fmt.Sprintf("ir: unknown CrateID variant %T", id))
	}
}

// NewCrateID rebuilds a CrateID from its kind and key fields.
// It is the inverse of KindOf + CrateKeys.
func NewCrateID(kind CrateKind, key1, key2 string) (CrateID, error) {
	switch kind {
	case KindRegistry:
		return RegistryCrate{Package: key1, Version: key2}, nil
	case KindRepo:
		return RepoCrate{Owner: key1, Name: key2}, nil
	default:
		return nil, fmt.Errorf("unknown crate kind %d", int(kind))
	}
}

// CrateName returns the name a crate is attributed by: the package name for
// registry crates, "owner/name" for repo crates. Test and doc-test causes
// carry this name, and the affected-crate list prints it.
func CrateName(id CrateID) string {
	switch v := id.(type) {
	case RegistryCrate:
		return v.Package
	case RepoCrate:
		return v.String()
	default:
		panic(fmt.Sprintf("ir: unknown CrateID variant %T", id))
	}
}

// CompareCrateIDs orders crate identities by variant tag, then by key fields.
// Strings compare bytewise, matching SQLite's BINARY collation.
func CompareCrateIDs(a, b CrateID) int {
	if c := cmp.Compare(KindOf(a), KindOf(b)); c != 0 {
		return c
	}
	a1, a2 := CrateKeys(a)
	b1, b2 := CrateKeys(b)
	if c := cmp.Compare(a1, b1); c != 0 {
		return c
	}
	return cmp.Compare(a2, b2)
}
