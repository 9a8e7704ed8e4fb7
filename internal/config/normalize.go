package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeReconcile()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error

	// Tracker paths fall back to the environment so container deployments
	// can point at mounted databases without a config file.
	if strings.TrimSpace(c.Paths.SeriesDB) == "" {
		if value, ok := os.LookupEnv("SONARR_DB"); ok {
			c.Paths.SeriesDB = value
		}
	}
	if strings.TrimSpace(c.Paths.MoviesDB) == "" {
		if value, ok := os.LookupEnv("RADARR_DB"); ok {
			c.Paths.MoviesDB = value
		}
	}

	if strings.TrimSpace(c.Paths.SeriesDB) != "" {
		if c.Paths.SeriesDB, err = ExpandPath(c.Paths.SeriesDB); err != nil {
			return fmt.Errorf("paths.series_db: %w", err)
		}
	}
	if strings.TrimSpace(c.Paths.MoviesDB) != "" {
		if c.Paths.MoviesDB, err = ExpandPath(c.Paths.MoviesDB); err != nil {
			return fmt.Errorf("paths.movies_db: %w", err)
		}
	}
	if strings.TrimSpace(c.Paths.LedgerDB) == "" {
		c.Paths.LedgerDB = defaultLedgerDB
	}
	if c.Paths.LedgerDB, err = ExpandPath(c.Paths.LedgerDB); err != nil {
		return fmt.Errorf("paths.ledger_db: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeReconcile() {
	if c.Reconcile.MinIntervalSeconds <= 0 {
		c.Reconcile.MinIntervalSeconds = defaultReconcileInterval
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
