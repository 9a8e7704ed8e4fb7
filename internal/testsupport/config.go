package testsupport

import (
	"path/filepath"
	"testing"

	"aliasarr/internal/config"
)

// NewConfig produces a config seeded with unique temp paths per test. The
// tracker database files do not exist until a fixture creates them.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.SeriesDB = filepath.Join(base, "sonarr.db")
	cfg.Paths.MoviesDB = filepath.Join(base, "radarr.db")
	cfg.Paths.LedgerDB = filepath.Join(base, "ledger.db")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	return &cfg
}
