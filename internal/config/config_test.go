package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aliasarr/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadExpandsAndValidates(t *testing.T) {
	base := t.TempDir()
	seriesDB := filepath.Join(base, "sonarr.db")
	path := writeConfig(t, `
[paths]
series_db = "`+seriesDB+`"
log_dir = "`+filepath.Join(base, "logs")+`"
`)

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be reported as existing")
	}
	if resolved != path {
		t.Fatalf("expected resolved path %q, got %q", path, resolved)
	}
	if cfg.Paths.SeriesDB != seriesDB {
		t.Fatalf("unexpected series db path: %q", cfg.Paths.SeriesDB)
	}
	if !cfg.SeriesEnabled() || cfg.MoviesEnabled() {
		t.Fatalf("unexpected tracker enablement: series=%v movies=%v", cfg.SeriesEnabled(), cfg.MoviesEnabled())
	}
	if cfg.Reconcile.MinIntervalSeconds <= 0 {
		t.Fatal("expected reconcile interval default to apply")
	}
}

func TestLoadRejectsMissingTrackers(t *testing.T) {
	t.Setenv("SONARR_DB", "")
	t.Setenv("RADARR_DB", "")
	path := writeConfig(t, `
[logging]
format = "json"
`)
	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected error when no tracker is configured")
	}
	if !strings.Contains(err.Error(), "no tracker configured") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadHonorsTrackerEnvFallback(t *testing.T) {
	base := t.TempDir()
	moviesDB := filepath.Join(base, "radarr.db")
	t.Setenv("SONARR_DB", "")
	t.Setenv("RADARR_DB", moviesDB)

	path := writeConfig(t, `
[paths]
log_dir = "`+filepath.Join(base, "logs")+`"
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Paths.MoviesDB != moviesDB {
		t.Fatalf("expected movies db from env, got %q", cfg.Paths.MoviesDB)
	}
}

func TestLoadRejectsUnknownLogFormat(t *testing.T) {
	path := writeConfig(t, `
[paths]
series_db = "/tmp/sonarr.db"

[logging]
format = "yaml"
`)
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "logging.format") {
		t.Fatalf("expected log format error, got %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "series_db") {
		t.Fatal("expected sample to mention series_db")
	}
}
