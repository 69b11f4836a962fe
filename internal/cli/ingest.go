package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/craterreport/internal/store"
)

// IngestOptions holds flags for the ingest command.
type IngestOptions struct {
	*RootOptions
	Archive string
	Config  string

	// RunIDs overrides the run id generator (for testing).
	RunIDs RunIDGenerator
}

// NewIngestCommand creates the ingest command.
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	return newIngestCommand(&IngestOptions{RootOptions: rootOpts})
}

func newIngestCommand(opts *IngestOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <experiment>",
		Short: "Download an experiment's regressed logs into a database",
		Long: `Download an experiment's run configuration and regressed-crate logs and
store them in a SQLite database, so reports can be rendered later with
"craterreport render" without downloading again.

The database must not already hold a run.

Example:
  craterreport ingest pr-12345 --db pr-12345.db
  craterreport ingest pr-12345 --db pr-12345.db --archive regressed.tar.gz --config config.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Archive, "archive", "", "read regressed logs from a local .tar.gz instead of downloading")
	cmd.Flags().StringVar(&opts.Config, "config", "", "read the run config from a local config.json instead of downloading")
	addSettingsFlags(cmd, flagDatabase, flagBaseURL, flagUserAgent)

	return cmd
}

func runIngest(opts *IngestOptions, experiment string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	settings, err := loadSettings(cmd, opts.RootOptions)
	if err != nil {
		return failWithCode(formatter, ErrCodeSettings, ExitCommandError, "invalid settings", err)
	}
	if settings.Database == "" {
		return failWithCode(formatter, ErrCodeSettings, ExitCommandError, "invalid settings",
			fmt.Errorf("ingest needs a database: pass --%s or set database in the settings file", flagDatabase))
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

	ids := opts.RunIDs
	if ids == nil {
		ids = UUIDv7Generator{}
	}
	result, err := ingestExperiment(ctx, settings, IngestSource{
		Experiment: experiment,
		Archive:    opts.Archive,
		Config:     opts.Config,
	}, st, ids)
	if err != nil {
		return fail(formatter, fmt.Sprintf("failed to ingest %s", experiment), err)
	}
	result.Database = settings.Database
	formatter.TraceID = result.RunID
	return formatter.Success(result)
}
