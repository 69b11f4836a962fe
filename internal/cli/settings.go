package cli

import (
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/craterreport/internal/appconfig"
)

// Flags that override settings. Registered per command with addSettingsFlags.
const (
	flagBaseURL     = "base-url"
	flagRegistryURL = "registry-url"
	flagUserAgent   = "user-agent"
	flagCrateList   = "crate-list"
	flagDatabase    = "db"
)

var settingsFlagUsage = map[string]string{
	flagBaseURL:     "experiment artifact base URL",
	flagRegistryURL: "crates.io API base URL",
	flagUserAgent:   "User-Agent sent with every request",
	flagCrateList:   "affected-crate list output path",
	flagDatabase:    "path to SQLite record database",
}

func addSettingsFlags(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		cmd.Flags().String(name, "", settingsFlagUsage[name])
	}
}

// loadSettings resolves settings: defaults, settings file, environment,
// then whichever settings flags were set on cmd.
func loadSettings(cmd *cobra.Command, root *RootOptions) (appconfig.Config, error) {
	cfg, err := appconfig.Load(root.Settings)
	if err != nil {
		return cfg, err
	}
	if cfg.Source != "" {
		slog.Debug("loaded settings", "path", cfg.Source)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}

	targets := map[string]*string{
		flagBaseURL:     &cfg.BaseURL,
		flagRegistryURL: &cfg.RegistryURL,
		flagUserAgent:   &cfg.UserAgent,
		flagCrateList:   &cfg.CrateList,
		flagDatabase:    &cfg.Database,
	}
	for name, target := range targets {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			*target = f.Value.String()
		}
	}
	return cfg, cfg.Validate()
}

// RunIDGenerator produces ingestion run ids.
// Implemented by UUIDv7Generator (production) and fixed generators in tests.
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run ids.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 string.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
