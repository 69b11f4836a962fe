package archive

import (
	"fmt"
	"log/slog"
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/craterreport/internal/ir"
)

// logSuffix is stripped from the last path segment to get the toolchain label.
const logSuffix = ".txt"

// PathError reports an archive path that does not address a crate log.
type PathError struct {
	Path    string
	Message string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("unexpected archive path %q: %s", e.Path, e.Message)
}

// LogPath is a parsed archive entry path.
type LogPath struct {
	ID        ir.CrateID
	Toolchain string
}

// ParsePath splits an entry path into crate identity and toolchain label.
// Segments are kept byte for byte: report links address the S3 key the
// archive was built from, and distinct spellings are distinct crates.
func ParsePath(p string) (LogPath, error) {
	cleaned := strings.TrimPrefix(path.Clean(strings.TrimPrefix(p, "./")), "/")
	segs := strings.Split(cleaned, "/")
	if len(segs) != 5 {
		return LogPath{}, &PathError{Path: p, Message: fmt.Sprintf("want 5 segments, got %d", len(segs))}
	}
	for _, s := range segs[1:4] {
		if !norm.NFC.IsNormalString(s) {
			slog.Warn("archive path segment is not NFC", "path", p, "segment", s)
		}
	}

	kind, name, versionOrRepo := segs[1], segs[2], segs[3]
	toolchain := strings.TrimSuffix(segs[4], logSuffix)
	if name == "" || versionOrRepo == "" || toolchain == "" {
		return LogPath{}, &PathError{Path: p, Message: "empty segment"}
	}

	var id ir.CrateID
	switch kind {
	case ir.KindRegistry.String():
		id = ir.RegistryCrate{Package: name, Version: versionOrRepo}
	case ir.KindRepo.String():
		id = ir.RepoCrate{Owner: name, Name: versionOrRepo}
	default:
		return LogPath{}, &PathError{Path: p, Message: fmt.Sprintf("unexpected component: %q", kind)}
	}

	return LogPath{ID: id, Toolchain: toolchain}, nil
}
