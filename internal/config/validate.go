package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTrackers(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTrackers() error {
	if !c.SeriesEnabled() && !c.MoviesEnabled() {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/aliasarr/config.toml"
		}
		return fmt.Errorf("no tracker configured. Set paths.series_db or paths.movies_db in %s (create with 'aliasarr config init'), or export SONARR_DB / RADARR_DB", defaultPath)
	}
	if c.MoviesEnabled() && c.Paths.LedgerDB == "" {
		return errors.New("paths.ledger_db must be set when a movie tracker is configured")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
}
