package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"aliasarr/internal/config"
	"aliasarr/internal/ledger"
	"aliasarr/internal/logging"
	"aliasarr/internal/movies"
	"aliasarr/internal/search"
	"aliasarr/internal/series"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// app bundles the opened repositories for one command invocation.
type app struct {
	cfg    *config.Config
	log    *slog.Logger
	led    *ledger.Ledger
	series *series.Repository
	movies *movies.Repository
}

// openApp opens every configured tracker. The ledger is only needed when the
// movie tracker is configured.
func (c *commandContext) openApp() (*app, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: logger}
	if cfg.SeriesEnabled() {
		a.series, err = series.Open(cfg, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
	}
	if cfg.MoviesEnabled() {
		a.led, err = ledger.Open(cfg)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.movies, err = movies.Open(cfg, a.led, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

func (a *app) Close() {
	if a.movies != nil {
		_ = a.movies.Close()
	}
	if a.series != nil {
		_ = a.series.Close()
	}
	if a.led != nil {
		_ = a.led.Close()
	}
}

func (a *app) aggregator() *search.Aggregator {
	var sources []search.Source
	if a.series != nil {
		sources = append(sources, a.series)
	}
	if a.movies != nil {
		sources = append(sources, a.movies)
	}
	return search.New(a.log, sources...)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
