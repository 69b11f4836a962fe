package ir

// Run describes one ingestion of an experiment's regressed-logs archive.
// It is persisted next to the records so a stored database can be rendered
// again without downloading the run configuration.
type Run struct {
	// ID is a UUIDv7 assigned when ingestion starts.
	ID string `json:"id"`

	// Experiment is the experiment name; log links are built under it.
	Experiment string `json:"experiment"`

	// StartToolchain and EndToolchain are the toolchain labels of the run,
	// as they appear in archive paths and log URLs.
	StartToolchain string `json:"start_toolchain"`
	EndToolchain   string `json:"end_toolchain"`
}

// Toolchain returns the label for role.
func (r Run) Toolchain(role ToolchainRole) string {
	if role == RoleStart {
		return r.StartToolchain
	}
	return r.EndToolchain
}
