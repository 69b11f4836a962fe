// Package archive reads an experiment's regressed-logs archive.
//
// The archive is a gzip-compressed tar stream. Every regular file is one
// build log, addressed by its path:
//
//	<root>/reg/<package>/<version>/<toolchain>.txt
//	<root>/gh/<owner>/<repository>/<toolchain>.txt
//
// Reader yields entries in archive order; Ingest parses each path into a
// crate identity and toolchain role and stores the log. Any malformed path,
// unknown toolchain, or duplicate log aborts ingestion: the archive is
// inconsistent and no partial report is produced.
package archive
