package cli

import (
	"archive/tar"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/craterreport/internal/appconfig"
)

type fixedRunID string

func (f fixedRunID) Generate() string { return string(f) }

const testRunID = "0190a5b2-0000-7000-8000-000000000001"

const testRunConfig = `{
	"name": "pr-1",
	"toolchains": [
		{"source": {"type": "dist", "name": "stable"}},
		{"source": {"type": "dist", "name": "beta"}}
	]
}`

type archiveEntry struct {
	path    string
	content string
}

// testLogs regress alpha and beta on libfoo and gamma on its own tests.
var testLogs = []archiveEntry{
	{"pr-1/reg/alpha/1.0/stable.txt", "Finished"},
	{"pr-1/reg/alpha/1.0/beta.txt", "error: could not compile `libfoo`"},
	{"pr-1/reg/beta/2.0/stable.txt", "Finished"},
	{"pr-1/reg/beta/2.0/beta.txt", "error: could not compile `libfoo`"},
	{"pr-1/reg/gamma/0.3/stable.txt", "Finished"},
	{"pr-1/reg/gamma/0.3/beta.txt", "error: test failed, to rerun pass '--lib'"},
}

// isolate runs the test in a fresh working directory with no settings
// file and no CRATERREPORT_* overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prevDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prevDir) })
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	for _, key := range []string{
		appconfig.EnvBaseURL, appconfig.EnvRegistryURL,
		appconfig.EnvUserAgent, appconfig.EnvRequestsPerSecond,
	} {
		t.Setenv(key, "")
	}
	return dir
}

func writeArchive(t *testing.T, path string, entries []archiveEntry) {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, e := range entries {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     e.path,
			Mode:     0o644,
			Size:     int64(len(e.content)),
			Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write([]byte(e.content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

// writeFixtures writes config.json and regressed.tar.gz into dir.
func writeFixtures(t *testing.T, dir string, entries []archiveEntry) (configPath, archivePath string) {
	t.Helper()
	configPath = filepath.Join(dir, "config.json")
	archivePath = filepath.Join(dir, "regressed.tar.gz")
	require.NoError(t, os.WriteFile(configPath, []byte(testRunConfig), 0o644))
	writeArchive(t, archivePath, entries)
	return configPath, archivePath
}

// execute runs cmd and returns what it wrote to stdout and stderr.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	out, diag := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(diag)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), diag.String(), err
}

func logURL(toolchain, crate string) string {
	return "https://crater-reports.s3.amazonaws.com/pr-1/" + toolchain + "/reg/" + crate + "/log.txt"
}

func row(crate string) string {
	return crate + ": [start](" + logURL("stable", crate) + ") v. [end](" + logURL("beta", crate) + ")"
}
