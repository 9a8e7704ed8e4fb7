package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"aliasarr/internal/config"
	"aliasarr/internal/storage"
)

// Record mirrors one manually created movie alias outside the tracker's
// own table.
type Record struct {
	ID           string
	Title        string
	CanonicalKey string
	MediaRef     int64
	CreatedAt    time.Time
}

// Ledger manages the overlay-owned alias ledger database.
type Ledger struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

const schema = `
CREATE TABLE IF NOT EXISTS alias_ledger (
    id            TEXT PRIMARY KEY,
    title         TEXT NOT NULL,
    canonical_key TEXT NOT NULL,
    media_ref     INTEGER NOT NULL,
    created_at    TEXT NOT NULL,
    UNIQUE (media_ref, canonical_key)
);
`

// Open initializes or connects to the ledger database, creating it lazily.
// A lock file guards against a second overlay process writing the same
// ledger.
func Open(cfg *config.Config) (*Ledger, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	path := cfg.Paths.LedgerDB
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire ledger lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("ledger %s is locked by another process", path)
	}

	db, err := storage.OpenOwned(path)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("apply ledger schema: %w", err)
	}

	return &Ledger{db: db, path: path, lock: lock}, nil
}

// Close releases the database connection and the lock file.
func (l *Ledger) Close() error {
	if l == nil {
		return nil
	}
	var err error
	if l.db != nil {
		err = l.db.Close()
	}
	if l.lock != nil {
		_ = l.lock.Unlock()
	}
	return err
}

// Record appends a ledger record. Idempotent: repeat calls with the same
// (media_ref, canonical_key) are no-ops.
func (l *Ledger) Record(ctx context.Context, title, canonicalKey string, mediaRef int64) error {
	_, err := l.db.ExecContext(
		ctx,
		`INSERT INTO alias_ledger (id, title, canonical_key, media_ref, created_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT (media_ref, canonical_key) DO NOTHING`,
		uuid.NewString(),
		title,
		canonicalKey,
		mediaRef,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record alias: %w", err)
	}
	return nil
}

// Forget removes a ledger record so reconciliation does not resurrect an
// explicitly deleted alias.
func (l *Ledger) Forget(ctx context.Context, mediaRef int64, canonicalKey string) error {
	_, err := l.db.ExecContext(
		ctx,
		`DELETE FROM alias_ledger WHERE media_ref = ? AND canonical_key = ?`,
		mediaRef,
		canonicalKey,
	)
	if err != nil {
		return fmt.Errorf("forget alias: %w", err)
	}
	return nil
}

// Records returns every ledger record in creation order.
func (l *Ledger) Records(ctx context.Context) ([]Record, error) {
	rows, err := l.db.QueryContext(
		ctx,
		`SELECT id, title, canonical_key, media_ref, created_at FROM alias_ledger ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list ledger records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec        Record
			createdRaw string
		)
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.CanonicalKey, &rec.MediaRef, &createdRaw); err != nil {
			return nil, err
		}
		if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
			rec.CreatedAt = created
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
