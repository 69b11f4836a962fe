package render

import (
	"strings"

	"github.com/roach88/craterreport/internal/ir"
)

// DefaultBaseURL is the bucket experiment artifacts are published under.
const DefaultBaseURL = "https://crater-reports.s3.amazonaws.com"

// LinkBuilder produces the URL of one crate's log for one toolchain.
type LinkBuilder interface {
	LogURL(id ir.CrateID, role ir.ToolchainRole) string
}

// Links builds log URLs for a run:
//
//	<base>/<experiment>/<toolchain>/reg/<package>-<version>/log.txt
//	<base>/<experiment>/<toolchain>/gh/<owner>.<repository>/log.txt
type Links struct {
	BaseURL string
	Run     ir.Run
}

// LogURL implements LinkBuilder.
func (l Links) LogURL(id ir.CrateID, role ir.ToolchainRole) string {
	var crate string
	switch v := id.(type) {
	case ir.RegistryCrate:
		crate = "reg/" + v.Package + "-" + v.Version
	case ir.RepoCrate:
		crate = "gh/" + v.Owner + "." + v.Name
	}
	base := strings.TrimRight(l.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return encodeURL(base + "/" + l.Run.Experiment + "/" + l.Run.Toolchain(role) + "/" + crate + "/log.txt")
}

// encodeURL percent-encodes control bytes, non-ASCII bytes, and the
// characters in shouldEscape. Path separators and the scheme are kept.
func encodeURL(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if shouldEscape(c) {
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0F])
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func shouldEscape(c byte) bool {
	if c < 0x20 || c >= 0x7F {
		return true
	}
	switch c {
	case ' ', '"', '#', '<', '>', '`', '?', '{', '}', '+':
		return true
	}
	return false
}
