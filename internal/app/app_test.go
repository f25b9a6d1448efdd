package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/deltalens/internal/analyze"
	"github.com/blackwell-systems/deltalens/internal/report"
	"github.com/blackwell-systems/deltalens/internal/sheet"
)

// writeExport creates a sheet export directory and a config file pointing at
// it, and returns the config path.
func writeExport(t *testing.T, cache bool) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "precinct12")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	base := time.Date(2024, 1, 5, 17, 0, 0, 0, time.UTC)
	deltas := []analyze.Delta{
		{Version: 1, User: "bob@x.com", App: "canvass", Timestamp: base, Value: analyze.Contents{"RecId": {"r1"}, "Party": {"D"}}},
		{Version: 2, User: "bob@x.com", App: "canvass", Timestamp: base.Add(5 * time.Minute), Value: analyze.Contents{"RecId": {"r2"}, "Party": {"R"}}},
	}
	for name, v := range map[string]any{
		sheet.InfoFile:       sheet.Info{Name: "Precinct 12", LatestVersion: 2, CountRecords: 10},
		sheet.DeltasFile:     deltas,
		sheet.HouseholdsFile: map[string]string{"r1": "h1"},
	} {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}

	cfg := fmt.Sprintf("source:\n  kind: file\n  path: %s\ncache:\n  enabled: %t\n  path: %s\ntimezone: UTC\n",
		dir, cache, filepath.Join(root, "cache", "deltalens.db"))
	path := filepath.Join(root, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

// execute runs the root command and resets the package-level flag vars
// afterwards, since cobra leaves them set between runs.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := executeSplit(t, args...)
	return out, err
}

// executeSplit is execute with stderr captured separately.
func executeSplit(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Cleanup(func() {
		flagJSON, flagConfig, flagNoColor, flagVerbose = false, "", false, false
		reportFlagCSV, reportFlagCSVDir = false, ""
		deltaFlagYAML = false
		syncFlagWatch, syncFlagQuiet, syncFlagNotify = false, false, false
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append(args, "--no-color"))
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "browse", "report", "delta", "modes", "sync"} {
		assert.True(t, names[want], "missing command %q", want)
	}
}

func TestModes_JSON(t *testing.T) {
	out, err := execute(t, "modes", "--json")
	require.NoError(t, err)

	var descs []report.Descriptor
	require.NoError(t, json.Unmarshal([]byte(out), &descs))
	assert.Equal(t, report.Descriptors(), descs)
}

func TestModes_Table(t *testing.T) {
	out, err := execute(t, "modes")
	require.NoError(t, err)
	assert.Contains(t, out, "show=daily")
	assert.Contains(t, out, "show=sessions")
}

func TestReport_Default(t *testing.T) {
	cfg := writeExport(t, false)
	out, err := execute(t, "report", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "#show=daily")
	assert.Contains(t, out, "bob@x.com")
}

func TestReport_JSON(t *testing.T) {
	cfg := writeExport(t, false)
	out, err := execute(t, "report", "show=sessions", "--json", "--config", cfg)
	require.NoError(t, err)

	var page pageJSON
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	assert.Equal(t, "show=sessions", page.Hash)
	assert.Equal(t, report.KindSessions, page.Kind)
	assert.NotEmpty(t, page.Blocks)
}

func TestReport_UnknownMode(t *testing.T) {
	cfg := writeExport(t, false)
	_, err := execute(t, "report", "show=nope", "--config", cfg)
	assert.ErrorIs(t, err, report.ErrUnknownMode)
}

func TestReport_CSVDir(t *testing.T) {
	cfg := writeExport(t, false)
	dir := t.TempDir()
	_, err := execute(t, "report", "--csv", "--csv-dir", dir, "--config", cfg)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "daily.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "bob@x.com")
}

func TestReport_JSONWithStreamedCSV(t *testing.T) {
	cfg := writeExport(t, false)
	out, errOut, err := executeSplit(t, "report", "--json", "--csv", "--config", cfg)
	require.NoError(t, err)

	var page pageJSON
	require.NoError(t, json.Unmarshal([]byte(out), &page), "stdout must hold only the JSON document")
	assert.Equal(t, "show=daily", page.Hash)
	assert.Contains(t, errOut, "# daily.csv")
	assert.Contains(t, errOut, "User,20240105,Total")
}

func TestDelta(t *testing.T) {
	cfg := writeExport(t, false)

	out, err := execute(t, "delta", "2", "--config", cfg)
	require.NoError(t, err)
	var d analyze.Delta
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, 2, d.Version)
	assert.Equal(t, "bob@x.com", d.User)

	out, err = execute(t, "delta", "2", "--yaml", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "version: 2")

	_, err = execute(t, "delta", "99", "--config", cfg)
	assert.ErrorIs(t, err, analyze.ErrVersionNotFound)

	_, err = execute(t, "delta", "two", "--config", cfg)
	assert.Error(t, err)
}

func TestSync_Once(t *testing.T) {
	cfg := writeExport(t, true)
	out, err := execute(t, "sync", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Added 2 changes; cache at version 2")

	out, err = execute(t, "sync", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Added 0 changes; cache at version 2")
}

func TestSync_NeedsCache(t *testing.T) {
	cfg := writeExport(t, false)
	_, err := execute(t, "sync", "--config", cfg)
	assert.ErrorIs(t, err, sheet.ErrNoCache)
}
