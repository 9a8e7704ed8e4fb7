package testsupport

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"aliasarr/internal/config"
	"aliasarr/internal/ledger"
	"aliasarr/internal/logging"
	"aliasarr/internal/movies"
	"aliasarr/internal/series"
)

const seriesSchema = `
CREATE TABLE "Series" (
    "Id"         INTEGER PRIMARY KEY,
    "TvdbId"     INTEGER NOT NULL,
    "Title"      TEXT NOT NULL,
    "CleanTitle" TEXT NOT NULL,
    "Year"       INTEGER,
    "Status"     TEXT
);
CREATE TABLE "SceneMappings" (
    "Id"                INTEGER PRIMARY KEY AUTOINCREMENT,
    "Title"             TEXT NOT NULL,
    "ParseTerm"         TEXT NOT NULL,
    "SearchTerm"        TEXT,
    "TvdbId"            INTEGER NOT NULL,
    "SeasonNumber"      INTEGER,
    "SceneSeasonNumber" INTEGER,
    "SceneOrigin"       TEXT,
    "SearchMode"        INTEGER,
    "Comment"           TEXT,
    "FilterRegex"       TEXT,
    "Type"              TEXT NOT NULL
);
`

const moviesSchema = `
CREATE TABLE "Movies" (
    "Id"              INTEGER PRIMARY KEY,
    "MovieMetadataId" INTEGER NOT NULL
);
CREATE TABLE "MovieMetadata" (
    "Id"         INTEGER PRIMARY KEY,
    "TmdbId"     INTEGER,
    "Title"      TEXT NOT NULL,
    "CleanTitle" TEXT NOT NULL,
    "Year"       INTEGER,
    "Status"     TEXT
);
CREATE TABLE "AlternativeTitles" (
    "Id"              INTEGER PRIMARY KEY AUTOINCREMENT,
    "Title"           TEXT NOT NULL,
    "CleanTitle"      TEXT NOT NULL,
    "SourceType"      INTEGER NOT NULL,
    "MovieMetadataId" INTEGER NOT NULL
);
`

// CreateSeriesFixture creates a series-tracker-shaped database at the
// configured path.
func CreateSeriesFixture(t testing.TB, cfg *config.Config) {
	t.Helper()
	Exec(t, cfg.Paths.SeriesDB, seriesSchema)
}

// CreateMoviesFixture creates a movie-tracker-shaped database at the
// configured path.
func CreateMoviesFixture(t testing.TB, cfg *config.Config) {
	t.Helper()
	Exec(t, cfg.Paths.MoviesDB, moviesSchema)
}

// AddSeries inserts a media row into the series fixture.
func AddSeries(t testing.TB, cfg *config.Config, tvdbID int64, title, cleanTitle string, year int, status string) {
	t.Helper()
	Exec(t, cfg.Paths.SeriesDB,
		`INSERT INTO "Series" ("TvdbId", "Title", "CleanTitle", "Year", "Status") VALUES (?, ?, ?, ?, ?)`,
		tvdbID, title, cleanTitle, year, status)
}

// AddNativeSeriesAlias inserts a tracker-owned scene mapping row.
func AddNativeSeriesAlias(t testing.TB, cfg *config.Config, tvdbID int64, title, parseTerm string) {
	t.Helper()
	Exec(t, cfg.Paths.SeriesDB,
		`INSERT INTO "SceneMappings" ("Title", "ParseTerm", "SearchTerm", "TvdbId", "SeasonNumber", "SceneOrigin", "SearchMode", "Type")
         VALUES (?, ?, ?, ?, -1, 'tvdb', 0, 'TheXem')`,
		title, parseTerm, title, tvdbID)
}

// AddMovie inserts a movie and its metadata row into the movie fixture.
func AddMovie(t testing.TB, cfg *config.Config, metadataID, tmdbID int64, title, cleanTitle string, year int, status string) {
	t.Helper()
	Exec(t, cfg.Paths.MoviesDB,
		`INSERT INTO "MovieMetadata" ("Id", "TmdbId", "Title", "CleanTitle", "Year", "Status") VALUES (?, ?, ?, ?, ?, ?)`,
		metadataID, tmdbID, title, cleanTitle, year, status)
	Exec(t, cfg.Paths.MoviesDB,
		`INSERT INTO "Movies" ("MovieMetadataId") VALUES (?)`,
		metadataID)
}

// AddNativeMovieAlias inserts a tracker-owned alternative title row.
func AddNativeMovieAlias(t testing.TB, cfg *config.Config, metadataID int64, title, cleanTitle string) {
	t.Helper()
	Exec(t, cfg.Paths.MoviesDB,
		`INSERT INTO "AlternativeTitles" ("Title", "CleanTitle", "SourceType", "MovieMetadataId") VALUES (?, ?, 0, ?)`,
		title, cleanTitle, metadataID)
}

// Exec runs a statement against an arbitrary SQLite file, creating it when
// absent. Used to build fixtures and to simulate the external tracker
// rewriting its own tables.
func Exec(t testing.TB, dbPath, query string, args ...any) {
	t.Helper()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open %s: %v", dbPath, err)
	}
	defer db.Close()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

// Count returns the number of rows a query yields. The query must be a
// SELECT COUNT expression.
func Count(t testing.TB, dbPath, query string, args ...any) int {
	t.Helper()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open %s: %v", dbPath, err)
	}
	defer db.Close()
	var count int
	if err := db.QueryRow(query, args...).Scan(&count); err != nil {
		t.Fatalf("count %q: %v", query, err)
	}
	return count
}

// MustOpenLedger opens the ledger for tests and registers cleanup.
func MustOpenLedger(t testing.TB, cfg *config.Config) *ledger.Ledger {
	t.Helper()
	led, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() { led.Close() })
	return led
}

// MustOpenSeries opens the series repository for tests and registers
// cleanup.
func MustOpenSeries(t testing.TB, cfg *config.Config) *series.Repository {
	t.Helper()
	repo, err := series.Open(cfg, logging.Discard())
	if err != nil {
		t.Fatalf("series.Open: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

// MustOpenMovies opens the movie repository for tests and registers
// cleanup.
func MustOpenMovies(t testing.TB, cfg *config.Config, led *ledger.Ledger) *movies.Repository {
	t.Helper()
	repo, err := movies.Open(cfg, led, logging.Discard())
	if err != nil {
		t.Fatalf("movies.Open: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}
