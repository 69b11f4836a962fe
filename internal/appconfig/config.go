// Package appconfig loads craterreport's own settings.
//
// Settings come from, in increasing precedence: built-in defaults, a YAML
// settings file, CRATERREPORT_* environment variables, and command-line
// flags (applied by the cli package). The settings file is the first of
//
//	./.craterreport.yaml
//	$XDG_CONFIG_HOME/craterreport/config.yaml
//
// that exists, unless a path is given explicitly.
package appconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/roach88/craterreport/internal/crater"
	"github.com/roach88/craterreport/internal/owners"
)

const (
	// FileName is the settings file looked up in the working directory.
	FileName = ".craterreport.yaml"

	// DefaultCrateList is where the affected-crate list is written.
	DefaultCrateList = "crate-list.txt"
)

// Environment variables overriding file settings.
const (
	EnvBaseURL           = "CRATERREPORT_BASE_URL"
	EnvRegistryURL       = "CRATERREPORT_REGISTRY_URL"
	EnvUserAgent         = "CRATERREPORT_USER_AGENT"
	EnvRequestsPerSecond = "CRATERREPORT_REQUESTS_PER_SECOND"
)

// Config holds the resolved settings.
type Config struct {
	// BaseURL is where experiment artifacts are downloaded from and where
	// report log links point.
	BaseURL string `yaml:"base_url"`

	// RegistryURL is the crates.io API host used for owner lookups.
	RegistryURL string `yaml:"registry_url"`

	UserAgent string `yaml:"user_agent"`

	// RequestsPerSecond limits registry lookups. Negative disables the limit.
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// CrateList is the output path of the affected-crate list.
	CrateList string `yaml:"crate_list"`

	// Database is the record store path. Empty means in-memory.
	Database string `yaml:"database"`

	// Source is the settings file that was read, if any.
	Source string `yaml:"-"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		BaseURL:           crater.DefaultBaseURL,
		RegistryURL:       owners.DefaultRegistryURL,
		UserAgent:         crater.DefaultUserAgent,
		RequestsPerSecond: owners.DefaultRequestsPerSecond,
		CrateList:         DefaultCrateList,
	}
}

// Find returns the first settings file that exists, or "" if none does.
func Find() (string, error) {
	candidates := []string{FileName}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "craterreport", "config.yaml"))
	}

	for _, path := range candidates {
		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("stat settings file: %w", err)
		}
		if !info.IsDir() {
			return path, nil
		}
	}
	return "", nil
}

// Load reads the settings file at path over the defaults. An empty path
// searches with Find; finding nothing yields the defaults. An explicit
// path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		found, err := Find()
		if err != nil {
			return cfg, err
		}
		if found == "" {
			return cfg, nil
		}
		path = found
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read settings file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.Source = path

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid settings in %s: %w", path, err)
	}
	return cfg, nil
}

// LookupEnvFunc matches os.LookupEnv.
type LookupEnvFunc func(key string) (string, bool)

// ApplyEnv overrides settings from the environment. Variables that are
// unset or empty are ignored.
func (c *Config) ApplyEnv(lookup LookupEnvFunc) error {
	if v, ok := lookup(EnvBaseURL); ok && v != "" {
		c.BaseURL = v
	}
	if v, ok := lookup(EnvRegistryURL); ok && v != "" {
		c.RegistryURL = v
	}
	if v, ok := lookup(EnvUserAgent); ok && v != "" {
		c.UserAgent = v
	}
	if v, ok := lookup(EnvRequestsPerSecond); ok && v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRequestsPerSecond, err)
		}
		c.RequestsPerSecond = rps
	}
	return c.Validate()
}

// Validate checks that URLs are absolute http(s) URLs and required
// values are present.
func (c *Config) Validate() error {
	if err := validateURL("base_url", c.BaseURL); err != nil {
		return err
	}
	if err := validateURL("registry_url", c.RegistryURL); err != nil {
		return err
	}
	if c.UserAgent == "" {
		return errors.New("user_agent: must not be empty")
	}
	if c.CrateList == "" {
		return errors.New("crate_list: must not be empty")
	}
	return nil
}

func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s: %q is not an absolute http(s) URL", field, raw)
	}
	return nil
}
