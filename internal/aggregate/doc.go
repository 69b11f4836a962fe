// Package aggregate groups classified regressions by suspected cause.
//
// The result is a Table: buckets ordered by ir.CompareCauses, each holding
// its regressions in the order they were supplied (the store's crate
// order). Aggregation is a partition: every input regression lands in
// exactly one bucket.
//
// A bucket with one member is a root regression. A bucket with several
// members is a shared root cause; the Unknown bucket is the one shared
// bucket with no attributable crate.
package aggregate
