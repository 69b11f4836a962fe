package cli

import (
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/craterreport/internal/ir"
	"github.com/roach88/craterreport/internal/owners"
	"github.com/roach88/craterreport/internal/store"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Output string

	// Lookup overrides the crates.io owner lookup (for testing).
	Lookup owners.Lookup
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	return newRenderCommand(&RenderOptions{RootOptions: rootOpts})
}

func newRenderCommand(opts *RenderOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <" + strings.Join(ir.PolicyNames, "|") + ">",
		Short: "Print the regression report for an ingested database",
		Long: `Classify the regressions stored by "craterreport ingest" and print the
markdown report. The database is only read, so the same run can be
rendered again with a different policy.

Example:
  craterreport render roots --db pr-12345.db
  craterreport render all --db pr-12345.db -o report.md --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the report to a file instead of stdout")
	addSettingsFlags(cmd, flagDatabase, flagCrateList, flagBaseURL, flagRegistryURL, flagUserAgent)

	return cmd
}

func runRender(opts *RenderOptions, policyName string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	policy, err := ir.ParseDetailPolicy(policyName)
	if err != nil {
		return failWithCode(formatter, ErrCodeInvalidPolicy, ExitCommandError, "invalid arguments", err)
	}

	settings, err := loadSettings(cmd, opts.RootOptions)
	if err != nil {
		return failWithCode(formatter, ErrCodeSettings, ExitCommandError, "invalid settings", err)
	}
	if settings.Database == "" {
		return failWithCode(formatter, ErrCodeSettings, ExitCommandError, "invalid settings",
			errors.New("render needs a database: pass --db or set database in the settings file"))
	}
	// Opening creates missing files; a typo would otherwise render an empty run.
	if _, err := os.Stat(settings.Database); err != nil {
		return failWithCode(formatter, ErrCodeStore, ExitCommandError, "database not found", err)
	}

	st, err := store.Open(settings.Database)
	if err != nil {
		return failWithCode(formatter, ErrCodeStore, ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	ctx, stop := signalContext(cmd)
	defer stop()

	run, err := st.LoadRun(ctx)
	if err != nil {
		return fail(formatter, "failed to load run", err)
	}
	formatter.TraceID = run.ID

	lookup := opts.Lookup
	if lookup == nil {
		lookup = newLookup(settings)
	}
	text, result, err := renderReport(ctx, settings, st, policy, lookup)
	if err != nil {
		return fail(formatter, "failed to render report", err)
	}

	return emitReport(formatter, text, result, opts.Output)
}
