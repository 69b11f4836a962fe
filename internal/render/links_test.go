package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/craterreport/internal/ir"
)

func TestLinks_LogURL(t *testing.T) {
	tests := []struct {
		name string
		run  ir.Run
		id   ir.CrateID
		role ir.ToolchainRole
		want string
	}{
		{
			name: "registry crate start log",
			run:  testRun,
			id:   ir.RegistryCrate{Package: "serde", Version: "1.0.0"},
			role: ir.RoleStart,
			want: "https://crater-reports.s3.amazonaws.com/pr-1/stable/reg/serde-1.0.0/log.txt",
		},
		{
			name: "repo crate joins owner and name with a dot",
			run:  testRun,
			id:   ir.RepoCrate{Owner: "octo", Name: "widget"},
			role: ir.RoleEnd,
			want: "https://crater-reports.s3.amazonaws.com/pr-1/beta/gh/octo.widget/log.txt",
		},
		{
			name: "ci toolchain hash is escaped",
			run:  ir.Run{Experiment: "pr-2", StartToolchain: "master#abc123", EndToolchain: "try#def456"},
			id:   ir.RegistryCrate{Package: "foo", Version: "0.1.0"},
			role: ir.RoleEnd,
			want: "https://crater-reports.s3.amazonaws.com/pr-2/try%23def456/reg/foo-0.1.0/log.txt",
		},
		{
			name: "plus in build metadata is escaped",
			run:  testRun,
			id:   ir.RegistryCrate{Package: "foo", Version: "1.0.0+build.1"},
			role: ir.RoleStart,
			want: "https://crater-reports.s3.amazonaws.com/pr-1/stable/reg/foo-1.0.0%2Bbuild.1/log.txt",
		},
		{
			name: "non-ascii bytes are escaped",
			run:  testRun,
			id:   ir.RepoCrate{Owner: "café", Name: "x"},
			role: ir.RoleStart,
			want: "https://crater-reports.s3.amazonaws.com/pr-1/stable/gh/caf%C3%A9.x/log.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			links := Links{Run: tt.run}
			assert.Equal(t, tt.want, links.LogURL(tt.id, tt.role))
		})
	}
}

func TestLinks_CustomBaseURL(t *testing.T) {
	links := Links{BaseURL: "http://localhost:9000/reports/", Run: testRun}
	got := links.LogURL(ir.RegistryCrate{Package: "a", Version: "1"}, ir.RoleStart)
	assert.Equal(t, "http://localhost:9000/reports/pr-1/stable/reg/a-1/log.txt", got)
}

func TestEncodeURL_KeepsStructure(t *testing.T) {
	assert.Equal(t, "https://h/a/b-c_d.e~f/log.txt", encodeURL("https://h/a/b-c_d.e~f/log.txt"))
	assert.Equal(t, "a%20b%22c%3Cd%3Ee%60f%3Fg%7Bh%7D", encodeURL("a b\"c<d>e`f?g{h}"))
}
