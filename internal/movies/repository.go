package movies

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"aliasarr/internal/alias"
	"aliasarr/internal/config"
	"aliasarr/internal/ledger"
	"aliasarr/internal/storage"
	"aliasarr/internal/title"
)

// sourceTypeManual is the AlternativeTitles source discriminator reserved
// for rows added by this overlay. All other values are tracker-native.
const sourceTypeManual = 2

// Repository provides manual alias management against the movie tracker.
type Repository struct {
	db      *sql.DB
	ledger  *ledger.Ledger
	log     *slog.Logger
	limiter *rate.Limiter
	repair  bool
}

// Open connects to the movie tracker database and back-fills the ledger
// from any manual rows already present in the tracker's alias table. The
// database file must already exist; the tracker owns it.
func Open(cfg *config.Config, led *ledger.Ledger, logger *slog.Logger) (*Repository, error) {
	if led == nil {
		return nil, errors.New("movie repository requires a ledger")
	}
	db, err := storage.OpenTracker(cfg.Paths.MoviesDB)
	if err != nil {
		return nil, err
	}

	interval := time.Duration(cfg.Reconcile.MinIntervalSeconds) * time.Second
	repo := &Repository{
		db:      db,
		ledger:  led,
		log:     logger,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		repair:  cfg.Reconcile.Enabled,
	}

	if err := repo.backfillLedger(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the underlying database connection. The ledger is owned by
// the caller and stays open.
func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Label identifies this source in aggregated output.
func (r *Repository) Label() string {
	return "movies"
}

// Health probes the tracker's media table.
func (r *Repository) Health(ctx context.Context) error {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM "Movies" LIMIT 1`).Scan(&one)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", alias.ErrStorageUnavailable, err)
	}
	return nil
}

// backfillLedger records manual rows that predate the ledger, so aliases
// created before the ledger existed survive tracker rewrites too.
func (r *Repository) backfillLedger(ctx context.Context) error {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT "Title", "CleanTitle", "MovieMetadataId" FROM "AlternativeTitles" WHERE "SourceType" = ?`,
		sourceTypeManual,
	)
	if err != nil {
		return fmt.Errorf("backfill ledger: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rowTitle     string
			canonicalKey string
			mediaRef     int64
		)
		if err := rows.Scan(&rowTitle, &canonicalKey, &mediaRef); err != nil {
			return err
		}
		if err := r.ledger.Record(ctx, rowTitle, canonicalKey, mediaRef); err != nil {
			return err
		}
	}
	return rows.Err()
}

// FindByMedia returns all alias entries for a movie, native rows before
// manual ones, then by creation order.
func (r *Repository) FindByMedia(ctx context.Context, mediaRef int64) ([]alias.Entry, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT "Id", "Title", "CleanTitle", "SourceType"
         FROM "AlternativeTitles"
         WHERE "MovieMetadataId" = ?
         ORDER BY CASE WHEN "SourceType" = ? THEN 1 ELSE 0 END, "Id"`,
		mediaRef,
		sourceTypeManual,
	)
	if err != nil {
		return nil, fmt.Errorf("query aliases: %w", err)
	}
	defer rows.Close()

	var entries []alias.Entry
	for rows.Next() {
		var (
			entry      alias.Entry
			sourceType int
		)
		if err := rows.Scan(&entry.ID, &entry.Title, &entry.CanonicalKey, &sourceType); err != nil {
			return nil, err
		}
		entry.MediaRef = mediaRef
		entry.Provenance = alias.ProvenanceNative
		if sourceType == sourceTypeManual {
			entry.Provenance = alias.ProvenanceManual
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Exists reports whether a manual alias with the given canonical key is
// already registered for the movie. Native rows are not considered.
func (r *Repository) Exists(ctx context.Context, mediaRef int64, canonicalKey string) (bool, error) {
	return manualExists(ctx, r.db, mediaRef, canonicalKey)
}

// InsertManual registers a manual alias and mirrors it to the ledger. The
// movie must already exist in the tracker's metadata table.
func (r *Repository) InsertManual(ctx context.Context, req alias.NewAlias) (alias.Entry, error) {
	displayTitle := strings.TrimSpace(req.Title)
	if req.MediaRef == 0 || displayTitle == "" {
		return alias.Entry{}, fmt.Errorf("%w: media reference and title are required", alias.ErrInvalidTitle)
	}
	canonicalKey := title.Key(displayTitle, title.Movie)
	if canonicalKey == "" {
		return alias.Entry{}, fmt.Errorf("%w: %q normalizes to an empty key", alias.ErrInvalidTitle, displayTitle)
	}

	var id int64
	err := storage.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		known, err := metadataExists(ctx, tx, req.MediaRef)
		if err != nil {
			return err
		}
		if !known {
			return fmt.Errorf("%w: movie %d", alias.ErrNotFound, req.MediaRef)
		}
		exists, err := manualExists(ctx, tx, req.MediaRef, canonicalKey)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %q already registered for movie %d", alias.ErrDuplicateAlias, displayTitle, req.MediaRef)
		}
		id, err = insertRow(ctx, tx, displayTitle, canonicalKey, req.MediaRef)
		return err
	})
	if err != nil {
		return alias.Entry{}, err
	}
	if err := storage.Checkpoint(ctx, r.db); err != nil {
		return alias.Entry{}, err
	}
	if err := r.ledger.Record(ctx, displayTitle, canonicalKey, req.MediaRef); err != nil {
		return alias.Entry{}, err
	}
	r.log.Info("registered manual alias", "media_ref", req.MediaRef, "key", canonicalKey)

	return alias.Entry{
		ID:           id,
		Title:        displayTitle,
		CanonicalKey: canonicalKey,
		MediaRef:     req.MediaRef,
		Provenance:   alias.ProvenanceManual,
	}, nil
}

// DeleteManual removes a manual alias by id and forgets its ledger record
// so reconciliation does not resurrect it.
func (r *Repository) DeleteManual(ctx context.Context, id int64) error {
	var (
		canonicalKey string
		mediaRef     int64
	)
	err := storage.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var (
			rowTitle   string
			sourceType int
		)
		err := tx.QueryRowContext(
			ctx,
			`SELECT "Title", "CleanTitle", "SourceType", "MovieMetadataId" FROM "AlternativeTitles" WHERE "Id" = ?`,
			id,
		).Scan(&rowTitle, &canonicalKey, &sourceType, &mediaRef)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: id %d", alias.ErrNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("load alias: %w", err)
		}
		if sourceType != sourceTypeManual {
			return fmt.Errorf("%w: %q is tracker-native", alias.ErrForbidden, rowTitle)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM "AlternativeTitles" WHERE "Id" = ?`, id); err != nil {
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
	if err := r.ledger.Forget(ctx, mediaRef, canonicalKey); err != nil {
		return err
	}
	r.log.Info("removed manual alias", "id", id, "media_ref", mediaRef)
	return nil
}

// Reconcile re-inserts every ledger record missing from the tracker's alias
// table. Returns the number of repaired rows; a second call right after is
// a no-op.
func (r *Repository) Reconcile(ctx context.Context) (int, error) {
	records, err := r.ledger.Records(ctx)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	repaired := 0
	err = storage.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		repaired = 0
		for _, rec := range records {
			present, err := anyExists(ctx, tx, rec.MediaRef, rec.CanonicalKey)
			if err != nil {
				return err
			}
			if present {
				continue
			}
			known, err := metadataExists(ctx, tx, rec.MediaRef)
			if err != nil {
				return err
			}
			if !known {
				// The movie left the tracker; nothing to repair against.
				r.log.Debug("skipping ledger record for unknown movie", "media_ref", rec.MediaRef, "key", rec.CanonicalKey)
				continue
			}
			if _, err := insertRow(ctx, tx, rec.Title, rec.CanonicalKey, rec.MediaRef); err != nil {
				return err
			}
			repaired++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if repaired > 0 {
		if err := storage.Checkpoint(ctx, r.db); err != nil {
			return repaired, err
		}
		r.log.Info("reconciled manual aliases", "repaired", repaired)
	}
	return repaired, nil
}

// maybeReconcile runs a reconciliation pass ahead of a read when one is due.
// Failures are logged and never block the read.
func (r *Repository) maybeReconcile(ctx context.Context) {
	if !r.repair || !r.limiter.Allow() {
		return
	}
	if _, err := r.Reconcile(ctx); err != nil {
		r.log.Warn("alias reconciliation failed", "error", err)
	}
}

// Search returns movies whose title or canonical title contains the term,
// with their alias entries, ordered by title. A reconciliation pass runs
// first when due.
func (r *Repository) Search(ctx context.Context, term string) ([]alias.MediaItem, error) {
	r.maybeReconcile(ctx)

	titlePattern := "%" + term + "%"
	keyPattern := "%" + strings.ReplaceAll(strings.ToLower(term), " ", "") + "%"

	rows, err := r.db.QueryContext(
		ctx,
		`SELECT mm."Id", mm."Title", mm."Year", mm."Status"
         FROM "MovieMetadata" mm
         JOIN "Movies" m ON m."MovieMetadataId" = mm."Id"
         WHERE mm."Title" LIKE ? OR mm."CleanTitle" LIKE ?
         ORDER BY mm."Title"`,
		titlePattern,
		keyPattern,
	)
	if err != nil {
		return nil, fmt.Errorf("search movies: %w", err)
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

func insertRow(ctx context.Context, tx *sql.Tx, displayTitle, canonicalKey string, mediaRef int64) (int64, error) {
	res, err := tx.ExecContext(
		ctx,
		`INSERT INTO "AlternativeTitles" ("Title", "CleanTitle", "SourceType", "MovieMetadataId")
         VALUES (?, ?, ?, ?)`,
		displayTitle,
		canonicalKey,
		sourceTypeManual,
		mediaRef,
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
		`SELECT 1 FROM "AlternativeTitles" WHERE "CleanTitle" = ? AND "MovieMetadataId" = ? AND "SourceType" = ?`,
		canonicalKey,
		mediaRef,
		sourceTypeManual,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check alias: %w", err)
	}
	return true, nil
}

func anyExists(ctx context.Context, q querier, mediaRef int64, canonicalKey string) (bool, error) {
	var one int
	err := q.QueryRowContext(
		ctx,
		`SELECT 1 FROM "AlternativeTitles" WHERE "CleanTitle" = ? AND "MovieMetadataId" = ?`,
		canonicalKey,
		mediaRef,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check alias: %w", err)
	}
	return true, nil
}

func metadataExists(ctx context.Context, q querier, mediaRef int64) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM "MovieMetadata" WHERE "Id" = ?`, mediaRef).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check movie metadata: %w", err)
	}
	return true, nil
}
