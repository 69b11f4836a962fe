package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/roach88/craterreport/internal/aggregate"
	"github.com/roach88/craterreport/internal/appconfig"
	"github.com/roach88/craterreport/internal/archive"
	"github.com/roach88/craterreport/internal/crater"
	"github.com/roach88/craterreport/internal/ir"
	"github.com/roach88/craterreport/internal/owners"
	"github.com/roach88/craterreport/internal/render"
	"github.com/roach88/craterreport/internal/runconfig"
	"github.com/roach88/craterreport/internal/store"
)

// IngestSource says where an experiment's artifacts come from. Empty
// paths are downloaded from the configured base URL.
type IngestSource struct {
	Experiment string
	Archive    string // local regressed.tar.gz
	Config     string // local config.json
}

// IngestResult is the JSON payload of a finished ingestion.
type IngestResult struct {
	Experiment  string `json:"experiment"`
	RunID       string `json:"run_id"`
	Start       string `json:"start_toolchain"`
	End         string `json:"end_toolchain"`
	Logs        int    `json:"logs"`
	Regressions int    `json:"regressions"`
	Database    string `json:"database,omitempty"`
}

// WriteText prints the ingestion summary.
func (r IngestResult) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Ingested %d log(s) for %d regression(s) of %s into %s\n  run %s: %s v. %s\n",
		r.Logs, r.Regressions, r.Experiment, r.Database, r.RunID, r.Start, r.End)
	return err
}

// ReportResult is the JSON payload of a rendered report.
type ReportResult struct {
	Experiment  string `json:"experiment"`
	RunID       string `json:"run_id"`
	Policy      string `json:"policy"`
	Regressions int    `json:"regressions"`
	Causes      int    `json:"causes"`
	Roots       int    `json:"roots"`
	CrateList   string `json:"crate_list"`
	Output      string `json:"output,omitempty"`
	Report      string `json:"report,omitempty"`
}

// WriteText prints the report itself, or a summary when it went to a file.
func (r ReportResult) WriteText(w io.Writer) error {
	if r.Output != "" {
		_, err := fmt.Fprintf(w, "Wrote report for %d regression(s) in %d cause(s) to %s\n",
			r.Regressions, r.Causes, r.Output)
		return err
	}
	_, err := io.WriteString(w, r.Report)
	return err
}

// ingestExperiment loads the run configuration and archive for src and
// fills st in a single transaction. st must not hold a run yet.
func ingestExperiment(ctx context.Context, settings appconfig.Config, src IngestSource, st *store.Store, ids RunIDGenerator) (IngestResult, error) {
	client := crater.New(crater.Options{BaseURL: settings.BaseURL, UserAgent: settings.UserAgent})

	runCfg, err := loadRunConfig(ctx, client, src)
	if err != nil {
		return IngestResult{}, err
	}
	if runCfg.Name != src.Experiment {
		slog.Warn("run config names a different experiment", "experiment", src.Experiment, "config_name", runCfg.Name)
	}

	run := runCfg.Run(ids.Generate())
	run.Experiment = src.Experiment

	// The run row and every log commit together: a failed ingestion leaves
	// no run behind for render to pick up.
	tx, err := st.Begin(ctx)
	if err != nil {
		return IngestResult{}, err
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.Error("error rolling back ingestion", "error", rbErr)
		}
	}()

	if err := tx.SaveRun(ctx, run); err != nil {
		return IngestResult{}, err
	}
	slog.Info("ingesting", "experiment", run.Experiment, "run_id", run.ID,
		"start", run.StartToolchain, "end", run.EndToolchain)

	body, err := openArchive(ctx, client, src)
	if err != nil {
		return IngestResult{}, err
	}
	defer body.Close()

	r, err := archive.NewReader(body)
	if err != nil {
		return IngestResult{}, err
	}
	defer r.Close()

	logs, err := archive.Ingest(ctx, r, runCfg, tx)
	if err != nil {
		return IngestResult{}, fmt.Errorf("ingest archive: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return IngestResult{}, err
	}

	count, err := st.Count(ctx)
	if err != nil {
		return IngestResult{}, err
	}
	slog.Info("ingested", "logs", logs, "regressions", count)

	return IngestResult{
		Experiment:  run.Experiment,
		RunID:       run.ID,
		Start:       run.StartToolchain,
		End:         run.EndToolchain,
		Logs:        logs,
		Regressions: count,
	}, nil
}

func loadRunConfig(ctx context.Context, client *crater.Client, src IngestSource) (*runconfig.Config, error) {
	if src.Config != "" {
		return runconfig.Load(src.Config)
	}
	slog.Debug("downloading run config", "url", client.ConfigURL(src.Experiment))
	return client.FetchConfig(ctx, src.Experiment)
}

func openArchive(ctx context.Context, client *crater.Client, src IngestSource) (io.ReadCloser, error) {
	if src.Archive != "" {
		f, err := os.Open(src.Archive)
		if err != nil {
			return nil, fmt.Errorf("open archive: %w", err)
		}
		return f, nil
	}
	slog.Debug("downloading archive", "url", client.ArchiveURL(src.Experiment))
	return client.OpenArchive(ctx, src.Experiment)
}

// newLookup builds the crates.io owner lookup from settings.
func newLookup(settings appconfig.Config) owners.Lookup {
	return owners.NewCratesIO(owners.CratesIOConfig{
		BaseURL:           settings.RegistryURL,
		UserAgent:         settings.UserAgent,
		RequestsPerSecond: settings.RequestsPerSecond,
	})
}

// renderReport classifies the records in st, writes the crate list and
// returns the report text. lookup is wrapped in a per-report cache.
func renderReport(ctx context.Context, settings appconfig.Config, st *store.Store, policy ir.DetailPolicy, lookup owners.Lookup) (string, ReportResult, error) {
	run, err := st.LoadRun(ctx)
	if err != nil {
		return "", ReportResult{}, err
	}
	regressions, err := st.Regressions(ctx)
	if err != nil {
		return "", ReportResult{}, err
	}

	table, err := aggregate.Build(regressions, nil)
	if err != nil {
		return "", ReportResult{}, err
	}

	result := ReportResult{
		Experiment:  run.Experiment,
		RunID:       run.ID,
		Policy:      policy.String(),
		Regressions: table.Len(),
		Causes:      len(table.Buckets),
		CrateList:   settings.CrateList,
	}
	for _, b := range table.Buckets {
		if b.IsRoot() {
			result.Roots++
		}
	}
	slog.Info("classified", "regressions", result.Regressions, "causes", result.Causes, "roots", result.Roots)

	if err := os.WriteFile(settings.CrateList, []byte(aggregate.CrateList(regressions)), 0o644); err != nil {
		return "", result, fmt.Errorf("write crate list: %w", err)
	}

	r := render.New(owners.NewCached(lookup), render.Links{BaseURL: settings.BaseURL, Run: run}, policy)
	text, err := r.Render(ctx, table)
	if err != nil {
		return "", result, err
	}
	return text, result, nil
}

// emitReport writes the report to output, or hands it to the formatter
// when output is empty.
func emitReport(formatter *OutputFormatter, text string, result ReportResult, output string) error {
	if output == "" {
		result.Report = text
		return formatter.Success(result)
	}
	if err := os.WriteFile(output, []byte(text), 0o644); err != nil {
		return failWithCode(formatter, ErrCodeWriteFailed, ExitFailure, "write report", err)
	}
	result.Output = output
	return formatter.Success(result)
}
