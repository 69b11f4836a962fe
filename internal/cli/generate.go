package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/craterreport/internal/ir"
	"github.com/roach88/craterreport/internal/owners"
	"github.com/roach88/craterreport/internal/store"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Archive string
	Config  string
	Output  string

	// RunIDs overrides the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs RunIDGenerator

	// Lookup overrides the crates.io owner lookup (for testing).
	Lookup owners.Lookup
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	return newGenerateCommand(&GenerateOptions{RootOptions: rootOpts})
}

func newGenerateCommand(opts *GenerateOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <experiment> <" + strings.Join(ir.PolicyNames, "|") + ">",
		Short: "Download an experiment and print its regression report",
		Long: `Download an experiment's run configuration and regressed-crate logs,
classify every regression and print the markdown report.

The second argument selects who gets mentioned:
  all         root crates, shared causes and every affected crate
  roots       root crates and shared causes only
  none        nobody (print-list is an alias)

The list of affected crates is always written to --crate-list.

Example:
  craterreport generate pr-12345 roots
  craterreport generate pr-12345 all --archive regressed.tar.gz --config config.json -o report.md`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Archive, "archive", "", "read regressed logs from a local .tar.gz instead of downloading")
	cmd.Flags().StringVar(&opts.Config, "config", "", "read the run config from a local config.json instead of downloading")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the report to a file instead of stdout")
	addSettingsFlags(cmd, flagDatabase, flagCrateList, flagBaseURL, flagRegistryURL, flagUserAgent)

	return cmd
}

func runGenerate(opts *GenerateOptions, experiment, policyName string, cmd *cobra.Command) error {
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

	dbPath := settings.Database
	if dbPath == "" {
		dbPath = store.MemoryPath
	}
	st, err := store.Open(dbPath)
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

	ids := opts.RunIDs
	if ids == nil {
		ids = UUIDv7Generator{}
	}
	ingested, err := ingestExperiment(ctx, settings, IngestSource{
		Experiment: experiment,
		Archive:    opts.Archive,
		Config:     opts.Config,
	}, st, ids)
	if err != nil {
		return fail(formatter, fmt.Sprintf("failed to ingest %s", experiment), err)
	}
	formatter.TraceID = ingested.RunID
	formatter.VerboseLog("Ingested %d log(s) for %d regression(s)", ingested.Logs, ingested.Regressions)

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

// signalContext derives a context from cmd that is cancelled on SIGINT or
// SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	return signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
}
