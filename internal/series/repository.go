package series

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"aliasarr/internal/alias"
	"aliasarr/internal/config"
	"aliasarr/internal/storage"
	"aliasarr/internal/title"
)

const (
	// Alias rows created by this overlay carry the manual type so the
	// tracker treats them like user scene mappings and this overlay can
	// tell them apart from tracker-native rows.
	manualType   = "ManualMapping"
	manualOrigin = "manual"

	// SearchMode values understood by the tracker.
	searchModeDefault    = 0
	searchModeTitleAndID = 2

	// Paired rows carry "network:<qualifier>|<link tag>" in the free-text
	// Comment column; the tracker ignores it, the overlay uses it to fold
	// the pair back together.
	pairCommentPrefix = "network:"

	unscopedSeason = -1
)

// Repository provides manual alias management against the series tracker.
type Repository struct {
	db  *sql.DB
	log *slog.Logger
}

// Open connects to the series tracker database. The database file must
// already exist; the tracker owns it.
func Open(cfg *config.Config, logger *slog.Logger) (*Repository, error) {
	db, err := storage.OpenTracker(cfg.Paths.SeriesDB)
	if err != nil {
		return nil, err
	}
	return &Repository{db: db, log: logger}, nil
}

// Close closes the underlying database connection.
func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Label identifies this source in aggregated output.
func (r *Repository) Label() string {
	return "series"
}

// Health probes the tracker's media table.
func (r *Repository) Health(ctx context.Context) error {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM "Series" LIMIT 1`).Scan(&one)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", alias.ErrStorageUnavailable, err)
	}
	return nil
}

// FindByMedia returns all alias entries for a series, native rows before
// manual ones, then by creation order.
func (r *Repository) FindByMedia(ctx context.Context, mediaRef int64) ([]alias.Entry, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT "Id", "Title", "SearchTerm", "ParseTerm", "SeasonNumber", "Type", "Comment"
         FROM "SceneMappings"
         WHERE "TvdbId" = ?
         ORDER BY CASE WHEN "Type" = ? THEN 1 ELSE 0 END, "Id"`,
		mediaRef,
		manualType,
	)
	if err != nil {
		return nil, fmt.Errorf("query aliases: %w", err)
	}
	defer rows.Close()

	var entries []alias.Entry
	for rows.Next() {
		entry, err := scanEntry(rows, mediaRef)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Exists reports whether a manual alias with the given canonical key is
// already registered for the series. Native rows are not considered: a
// manual alias may share a key with a tracker-native one.
func (r *Repository) Exists(ctx context.Context, mediaRef int64, canonicalKey string) (bool, error) {
	return manualExists(ctx, r.db, mediaRef, canonicalKey)
}

// InsertManual registers a manual alias. When the request carries a network
// qualifier, two linked rows are created atomically: the base title and
// "<title> <network>", each canonicalized independently. Returns the created
// entries.
func (r *Repository) InsertManual(ctx context.Context, req alias.NewAlias) ([]alias.Entry, error) {
	displayTitle := strings.TrimSpace(req.Title)
	if req.MediaRef == 0 || displayTitle == "" {
		return nil, fmt.Errorf("%w: media reference and title are required", alias.ErrInvalidTitle)
	}
	canonicalKey := title.Key(displayTitle, title.Series)
	if canonicalKey == "" {
		return nil, fmt.Errorf("%w: %q normalizes to an empty key", alias.ErrInvalidTitle, displayTitle)
	}

	searchTerm := strings.TrimSpace(req.SearchTerm)
	if searchTerm == "" {
		searchTerm = displayTitle
	}
	season := unscopedSeason
	if req.Season != nil {
		season = *req.Season
	}
	network := strings.TrimSpace(req.Network)

	var created []alias.Entry
	err := storage.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		created = created[:0]

		if err := rejectDuplicate(ctx, tx, req.MediaRef, canonicalKey, displayTitle); err != nil {
			return err
		}

		if network == "" {
			id, err := insertRow(ctx, tx, rowSpec{
				title:        displayTitle,
				canonicalKey: canonicalKey,
				searchTerm:   searchTerm,
				mediaRef:     req.MediaRef,
				season:       season,
				searchMode:   searchModeDefault,
			})
			if err != nil {
				return err
			}
			created = append(created, alias.Entry{
				ID:           id,
				Title:        displayTitle,
				SearchTerm:   searchTerm,
				CanonicalKey: canonicalKey,
				MediaRef:     req.MediaRef,
				Provenance:   alias.ProvenanceManual,
				Season:       req.Season,
			})
			return nil
		}

		pairedTitle := displayTitle + " " + network
		pairedKey := title.Key(pairedTitle, title.Series)
		if pairedKey == "" {
			return fmt.Errorf("%w: %q normalizes to an empty key", alias.ErrInvalidTitle, pairedTitle)
		}
		// A qualifier that normalizes away would leave both rows with one
		// key and break manual uniqueness.
		if pairedKey == canonicalKey {
			return fmt.Errorf("%w: network %q adds nothing to the matching key", alias.ErrInvalidTitle, network)
		}
		if err := rejectDuplicate(ctx, tx, req.MediaRef, pairedKey, pairedTitle); err != nil {
			return err
		}

		// The base row's canonical key doubles as the link tag; the pair
		// shares one comment payload.
		comment := pairCommentPrefix + network + "|" + canonicalKey
		for _, spec := range []rowSpec{
			{
				title:        displayTitle,
				canonicalKey: canonicalKey,
				searchTerm:   searchTerm,
				mediaRef:     req.MediaRef,
				season:       season,
				searchMode:   searchModeTitleAndID,
				comment:      comment,
			},
			{
				title:        pairedTitle,
				canonicalKey: pairedKey,
				searchTerm:   pairedTitle,
				mediaRef:     req.MediaRef,
				season:       season,
				searchMode:   searchModeTitleAndID,
				comment:      comment,
			},
		} {
			id, err := insertRow(ctx, tx, spec)
			if err != nil {
				return err
			}
			created = append(created, alias.Entry{
				ID:           id,
				Title:        spec.title,
				SearchTerm:   spec.searchTerm,
				CanonicalKey: spec.canonicalKey,
				MediaRef:     req.MediaRef,
				Provenance:   alias.ProvenanceManual,
				Season:       req.Season,
				Network:      network,
				LinkTag:      canonicalKey,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := storage.Checkpoint(ctx, r.db); err != nil {
		return nil, err
	}
	r.log.Info("registered manual alias", "media_ref", req.MediaRef, "key", canonicalKey, "rows", len(created))
	return created, nil
}

// DeleteManual removes a manual alias by id. Deleting either row of a
// network pair removes both rows in one transaction.
func (r *Repository) DeleteManual(ctx context.Context, id int64) error {
	err := storage.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var (
			rowTitle string
			rowType  string
			mediaRef int64
			comment  sql.NullString
		)
		err := tx.QueryRowContext(
			ctx,
			`SELECT "Title", "Type", "TvdbId", "Comment" FROM "SceneMappings" WHERE "Id" = ?`,
			id,
		).Scan(&rowTitle, &rowType, &mediaRef, &comment)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: id %d", alias.ErrNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("load alias: %w", err)
		}
		if rowType != manualType {
			return fmt.Errorf("%w: %q is tracker-native", alias.ErrForbidden, rowTitle)
		}

		if _, _, ok := parsePairComment(comment.String); ok {
			_, err = tx.ExecContext(
				ctx,
				`DELETE FROM "SceneMappings" WHERE "TvdbId" = ? AND "Comment" = ? AND "Type" = ?`,
				mediaRef,
				comment.String,
				manualType,
			)
		} else {
			_, err = tx.ExecContext(ctx, `DELETE FROM "SceneMappings" WHERE "Id" = ?`, id)
		}
		if err != nil {
			return fmt.Errorf("delete alias: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := storage.Checkpoint(ctx, r.db); err != nil {
		return err
	}
	r.log.Info("removed manual alias", "id", id)
	return nil
}

// Search returns series whose title or canonical title contains the term,
// with their alias entries, ordered by title.
func (r *Repository) Search(ctx context.Context, term string) ([]alias.MediaItem, error) {
	titlePattern := "%" + term + "%"
	keyPattern := "%" + strings.ReplaceAll(strings.ToLower(term), " ", "") + "%"

	rows, err := r.db.QueryContext(
		ctx,
		`SELECT "TvdbId", "Title", "Year", "Status"
         FROM "Series"
         WHERE "Title" LIKE ? OR "CleanTitle" LIKE ?
         ORDER BY "Title"`,
		titlePattern,
		keyPattern,
	)
	if err != nil {
		return nil, fmt.Errorf("search series: %w", err)
	}
	defer rows.Close()

	var items []alias.MediaItem
	for rows.Next() {
		var (
			item   alias.MediaItem
			year   sql.NullInt64
			status sql.NullString
		)
		if err := rows.Scan(&item.MediaRef, &item.Title, &year, &status); err != nil {
			return nil, err
		}
		item.Year = int(year.Int64)
		item.Status = status.String
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range items {
		entries, err := r.FindByMedia(ctx, items[i].MediaRef)
		if err != nil {
			return nil, err
		}
		items[i].Aliases = entries
	}
	return items, nil
}

type rowSpec struct {
	title        string
	canonicalKey string
	searchTerm   string
	mediaRef     int64
	season       int
	searchMode   int
	comment      string
}

func insertRow(ctx context.Context, tx *sql.Tx, spec rowSpec) (int64, error) {
	res, err := tx.ExecContext(
		ctx,
		`INSERT INTO "SceneMappings"
         ("Title", "ParseTerm", "SearchTerm", "TvdbId", "SeasonNumber",
          "SceneSeasonNumber", "SceneOrigin", "SearchMode", "Comment",
          "FilterRegex", "Type")
         VALUES (?, ?, ?, ?, ?, NULL, ?, ?, ?, NULL, ?)`,
		spec.title,
		spec.canonicalKey,
		spec.searchTerm,
		spec.mediaRef,
		spec.season,
		manualOrigin,
		spec.searchMode,
		storage.NullableString(spec.comment),
		manualType,
	)
	if err != nil {
		return 0, fmt.Errorf("insert alias: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func manualExists(ctx context.Context, q querier, mediaRef int64, canonicalKey string) (bool, error) {
	var one int
	err := q.QueryRowContext(
		ctx,
		`SELECT 1 FROM "SceneMappings" WHERE "ParseTerm" = ? AND "TvdbId" = ? AND "Type" = ?`,
		canonicalKey,
		mediaRef,
		manualType,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check alias: %w", err)
	}
	return true, nil
}

func rejectDuplicate(ctx context.Context, q querier, mediaRef int64, canonicalKey, displayTitle string) error {
	exists, err := manualExists(ctx, q, mediaRef, canonicalKey)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %q already registered for series %d", alias.ErrDuplicateAlias, displayTitle, mediaRef)
	}
	return nil
}

func parsePairComment(comment string) (network, linkTag string, ok bool) {
	if !strings.HasPrefix(comment, pairCommentPrefix) {
		return "", "", false
	}
	payload := strings.TrimPrefix(comment, pairCommentPrefix)
	network, linkTag, found := strings.Cut(payload, "|")
	if !found || network == "" || linkTag == "" {
		return "", "", false
	}
	return network, linkTag, true
}

func scanEntry(rows *sql.Rows, mediaRef int64) (alias.Entry, error) {
	var (
		id         int64
		rowTitle   string
		searchTerm sql.NullString
		parseTerm  sql.NullString
		seasonNum  sql.NullInt64
		rowType    sql.NullString
		comment    sql.NullString
	)
	if err := rows.Scan(&id, &rowTitle, &searchTerm, &parseTerm, &seasonNum, &rowType, &comment); err != nil {
		return alias.Entry{}, err
	}

	entry := alias.Entry{
		ID:           id,
		Title:        rowTitle,
		SearchTerm:   searchTerm.String,
		CanonicalKey: parseTerm.String,
		MediaRef:     mediaRef,
		Provenance:   alias.ProvenanceNative,
	}
	if rowType.String == manualType {
		entry.Provenance = alias.ProvenanceManual
	}
	if seasonNum.Valid && seasonNum.Int64 >= 0 {
		season := int(seasonNum.Int64)
		entry.Season = &season
	}
	if network, linkTag, ok := parsePairComment(comment.String); ok {
		entry.Network = network
		entry.LinkTag = linkTag
	}
	return entry, nil
}
