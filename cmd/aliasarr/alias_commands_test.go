package main

import (
	"strings"
	"testing"

	"aliasarr/internal/testsupport"
)

func TestAliasAddAndSearchSeries(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.AddSeries(t, env.cfg, 100, "The Wire", "thewire", 2002, "ended")

	out, _, err := runCLI(t, []string{"alias", "add", "--series", "100", "The Wired"}, env.configPath)
	if err != nil {
		t.Fatalf("alias add: %v", err)
	}
	requireContains(t, out, "Added alias \"The Wired\"")
	requireContains(t, out, "key thewired")

	out, _, err = runCLI(t, []string{"search", "wire"}, env.configPath)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	requireContains(t, out, "The Wire")
	requireContains(t, out, "The Wired")
}

func TestAliasAddNetworkPairReportsBothRows(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.AddSeries(t, env.cfg, 100, "The Wire", "thewire", 2002, "ended")

	out, _, err := runCLI(t, []string{"alias", "add", "--series", "100", "--network", "HBO", "The Corner"}, env.configPath)
	if err != nil {
		t.Fatalf("alias add: %v", err)
	}
	requireContains(t, out, "Added alias \"The Corner\"")
	requireContains(t, out, "Added alias \"The Corner HBO\"")
}

func TestAliasAddRequiresSingleTarget(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"alias", "add", "Nope"}, env.configPath); err == nil {
		t.Fatal("expected error without target flag")
	}
	if _, _, err := runCLI(t, []string{"alias", "add", "--series", "1", "--movie", "2", "Nope"}, env.configPath); err == nil {
		t.Fatal("expected error with both target flags")
	}
}

func TestAliasAddRejectsSeriesFlagsForMovies(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.AddMovie(t, env.cfg, 10, 550, "Fight Club", "fightclub", 1999, "released")

	_, _, err := runCLI(t, []string{"alias", "add", "--movie", "10", "--network", "HBO", "Brawl Society"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "series aliases only") {
		t.Fatalf("expected series-only flag error, got %v", err)
	}
}

func TestAliasRemoveMovie(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.AddMovie(t, env.cfg, 10, 550, "Fight Club", "fightclub", 1999, "released")

	out, _, err := runCLI(t, []string{"alias", "add", "--movie", "10", "Brawl Society"}, env.configPath)
	if err != nil {
		t.Fatalf("alias add: %v", err)
	}
	requireContains(t, out, "key brawlsociety")

	out, _, err = runCLI(t, []string{"alias", "remove", "--movie", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("alias remove: %v", err)
	}
	requireContains(t, out, "Removed alias 1")

	remaining := testsupport.Count(t, env.cfg.Paths.MoviesDB, `SELECT COUNT(*) FROM "AlternativeTitles"`)
	if remaining != 0 {
		t.Fatalf("expected alias removed from tracker, %d rows remain", remaining)
	}
}

func TestHealthReportsConfiguredTrackers(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"health"}, env.configPath)
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	requireContains(t, out, "series: ok")
	requireContains(t, out, "movies: ok")
}
