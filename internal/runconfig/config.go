package runconfig

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	cuejson "cuelang.org/go/encoding/json"

	"github.com/roach88/craterreport/internal/ir"
)

//go:embed schema.cue
var schemaCUE string

// Source types accepted in a toolchain's "source.type".
const (
	SourceCI   = "ci"
	SourceDist = "dist"
)

// Config is the subset of an experiment's config.json that the report uses.
type Config struct {
	Name       string      `json:"name"`
	Toolchains []Toolchain `json:"toolchains"`
}

// Toolchain is one compiler under test.
type Toolchain struct {
	Source Source `json:"source"`
}

// Source says where a toolchain came from: a CI build or a dist channel.
type Source struct {
	Type string `json:"type"`
	SHA  string `json:"sha,omitempty"`
	Try  bool   `json:"try,omitempty"`
	Name string `json:"name,omitempty"`
}

// Label renders the source the way archive paths and log URLs name it.
func (s Source) Label() string {
	if s.Type == SourceCI {
		branch := "master"
		if s.Try {
			branch = "try"
		}
		return branch + "#" + s.SHA
	}
	return s.Name
}

// ConfigError is a validation failure with its position in the input.
type ConfigError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *ConfigError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// UnknownToolchainError reports a toolchain label matching neither
// toolchain of the run.
type UnknownToolchainError struct {
	Label string
	Start string
	End   string
}

func (e *UnknownToolchainError) Error() string {
	return fmt.Sprintf("unknown toolchain: %q, valid options: %q or %q", e.Label, e.Start, e.End)
}

// Load reads and parses the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read run config: %w", err)
	}
	return Parse(path, data)
}

// Parse validates data (JSON) against the schema and decodes it.
// filename is only used in error positions.
func Parse(filename string, data []byte) (*Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile run config schema: %w", err)
	}

	expr, err := cuejson.Extract(filename, data)
	if err != nil {
		return nil, formatCUEError(err)
	}
	v := ctx.BuildExpr(expr)
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	unified := schema.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var cfg Config
	if err := unified.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode run config: %w", err)
	}
	return &cfg, nil
}

// Label returns the toolchain label for role.
func (c *Config) Label(role ir.ToolchainRole) string {
	idx := 0
	if role == ir.RoleEnd {
		idx = 1
	}
	return c.Toolchains[idx].Source.Label()
}

// Role resolves an archive toolchain label to its role.
// Returns *UnknownToolchainError if the label names neither toolchain.
func (c *Config) Role(label string) (ir.ToolchainRole, error) {
	start, end := c.Label(ir.RoleStart), c.Label(ir.RoleEnd)
	switch label {
	case start:
		return ir.RoleStart, nil
	case end:
		return ir.RoleEnd, nil
	default:
		return 0, &UnknownToolchainError{Label: label, Start: start, End: end}
	}
}

// Run returns the run metadata for this config under runID.
func (c *Config) Run(runID string) ir.Run {
	return ir.Run{
		ID:             runID,
		Experiment:     c.Name,
		StartToolchain: c.Label(ir.RoleStart),
		EndToolchain:   c.Label(ir.RoleEnd),
	}
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	field := "config"
	if path := firstErr.Path(); len(path) > 0 {
		field = strings.Join(path, ".")
	}
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &ConfigError{
			Field:   field,
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return &ConfigError{Field: field, Message: firstErr.Error()}
}
