package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source.Kind != SourceFile {
		t.Errorf("Source.Kind = %q, want %q", cfg.Source.Kind, SourceFile)
	}
	if cfg.Cluster.MaxGap != 15*time.Minute {
		t.Errorf("Cluster.MaxGap = %v, want 15m", cfg.Cluster.MaxGap)
	}
	if cfg.Serve.Addr != DefaultServe.Addr {
		t.Errorf("Serve.Addr = %q", cfg.Serve.Addr)
	}
	if !cfg.Cache.Enabled {
		t.Error("cache should be enabled by default")
	}
	if cfg.Location() == nil {
		t.Error("Location() returned nil")
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
source:
  kind: http
  url: https://sheets.example.com
  sheet_id: s1
  timeout: 5s
cluster:
  max_gap: 20m
timezone: America/Los_Angeles
serve:
  addr: ":9000"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source.Kind != SourceHTTP || cfg.Source.SheetID != "s1" {
		t.Errorf("source = %+v", cfg.Source)
	}
	if cfg.Source.Timeout != 5*time.Second {
		t.Errorf("Source.Timeout = %v", cfg.Source.Timeout)
	}
	if cfg.Cluster.MaxGap != 20*time.Minute {
		t.Errorf("Cluster.MaxGap = %v", cfg.Cluster.MaxGap)
	}
	if cfg.Location().String() != "America/Los_Angeles" {
		t.Errorf("Location = %v", cfg.Location())
	}
	if cfg.Serve.Addr != ":9000" {
		t.Errorf("Serve.Addr = %q", cfg.Serve.Addr)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("DELTALENS_SOURCE_TOKEN", "secret")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source.Token != "secret" {
		t.Errorf("Source.Token = %q, want env value", cfg.Source.Token)
	}
}

func TestLoad_Invalid(t *testing.T) {
	for name, body := range map[string]string{
		"source kind": "source:\n  kind: ftp\n",
		"timezone":    "timezone: Mars/Olympus\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandPath("~/x/y"); got != filepath.Join(home, "x/y") {
		t.Errorf("expandPath = %q", got)
	}
	if got := expandPath("/abs"); got != "/abs" {
		t.Errorf("expandPath = %q", got)
	}
}
