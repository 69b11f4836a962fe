// Package ir provides the shared data model for craterreport.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - CrateID and SuspectedCause are sealed interfaces whose variants are
//     comparable structs, so both can key a map without wrapping
//   - Ordering is explicit (CompareCrateIDs, CompareCauses) and never
//     depends on map iteration
//   - Unknown carries no payload; every ambiguous crate shares one bucket
package ir
