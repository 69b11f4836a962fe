// Package crater downloads an experiment's published artifacts.
//
// Experiments publish under a single base URL:
//
//	<base>/<experiment>/config.json
//	<base>/<experiment>/logs-archives/regressed.tar.gz
//
// Only the regressed-crates archive is fetched; logs of crates that did
// not regress are never downloaded.
package crater
