// Package owners resolves crate maintainers for report mentions.
//
// Lookup is the capability the renderer consumes. Implementations:
//   - CratesIO: the registry's owners API, rate limited
//   - Cached: memoises another Lookup per crate name, errors included
//   - Static: a fixed map, for tests and offline rendering
//
// A repository crate's owner is its repository owner; ForCrate answers
// that without calling the Lookup.
package owners
