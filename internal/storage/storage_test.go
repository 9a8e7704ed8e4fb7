package storage_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"aliasarr/internal/alias"
	"aliasarr/internal/storage"
)

func TestOpenTrackerMissingFile(t *testing.T) {
	_, err := storage.OpenTracker(filepath.Join(t.TempDir(), "missing.db"))
	if !errors.Is(err, alias.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestOpenTrackerEmptyPath(t *testing.T) {
	_, err := storage.OpenTracker("")
	if !errors.Is(err, alias.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestOpenOwnedCreatesFileAndCheckpointRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ledger.db")
	db, err := storage.OpenOwned(path)
	if err != nil {
		t.Fatalf("OpenOwned: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "CREATE TABLE t (id INTEGER PRIMARY KEY)"); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if err := storage.WithTx(ctx, db, func(tx *sql.Tx) error {
		_, execErr := tx.ExecContext(ctx, "INSERT INTO t (id) VALUES (1)")
		return execErr
	}); err != nil {
		t.Fatalf("WithTx: %v", err)
	}
	if err := storage.Checkpoint(ctx, db); err != nil {
		t.Fatalf("Checkpoint: %v", err)
	}
}
