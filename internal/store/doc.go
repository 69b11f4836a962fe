// Package store provides SQLite-backed storage for regression records.
//
// Each ingested log is one row keyed by the full crate identity and the
// toolchain role. A regression record is the pair of rows sharing an
// identity; it is assembled on read.
//
// # Critical Patterns
//
// Write-once slots
//   - PRIMARY KEY(kind, key1, key2, role)
//   - Insert uses ON CONFLICT DO NOTHING; zero rows affected means the slot
//     was already filled and Insert returns a *DuplicateLogError
//
// Deterministic reads
//   - All record queries use ORDER BY kind, key1 COLLATE BINARY, key2 COLLATE BINARY
//   - This is exactly ir.CompareCrateIDs, so callers never re-sort
//
// All-or-nothing ingestion
//   - An ingestion writes its run row and every log through one Tx
//   - A database either holds a complete run or no run at all
//
// Full identity keys
//   - Registry and repo crates never share a row even when their key
//     strings coincide, and every version of a package is its own record
//
// # Database Configuration
//
//   - WAL mode for file databases (":memory:" reports "memory")
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - a single connection, which also keeps ":memory:" databases alive
package store
