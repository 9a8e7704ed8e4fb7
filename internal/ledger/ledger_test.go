package ledger_test

import (
	"context"
	"testing"

	"aliasarr/internal/testsupport"
)

func TestRecordIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	led := testsupport.MustOpenLedger(t, cfg)

	ctx := context.Background()
	if err := led.Record(ctx, "Wired", "wired", 42); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := led.Record(ctx, "Wired", "wired", 42); err != nil {
		t.Fatalf("repeat Record: %v", err)
	}

	records, err := led.Records(ctx)
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	if records[0].ID == "" {
		t.Fatal("expected generated record id")
	}
	if records[0].CreatedAt.IsZero() {
		t.Fatal("expected parsed creation time")
	}
}

func TestForgetRemovesRecord(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	led := testsupport.MustOpenLedger(t, cfg)

	ctx := context.Background()
	if err := led.Record(ctx, "Wired", "wired", 42); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := led.Forget(ctx, 42, "wired"); err != nil {
		t.Fatalf("Forget: %v", err)
	}

	records, err := led.Records(ctx)
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty ledger, got %d records", len(records))
	}

	// Forgetting an absent record is not an error.
	if err := led.Forget(ctx, 42, "wired"); err != nil {
		t.Fatalf("repeat Forget: %v", err)
	}
}

func TestRecordsKeepCreationOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	led := testsupport.MustOpenLedger(t, cfg)

	ctx := context.Background()
	keys := []string{"first", "second", "third"}
	for _, key := range keys {
		if err := led.Record(ctx, key, key, 1); err != nil {
			t.Fatalf("Record %q: %v", key, err)
		}
	}

	records, err := led.Records(ctx)
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(records) != len(keys) {
		t.Fatalf("expected %d records, got %d", len(keys), len(records))
	}
	for i, key := range keys {
		if records[i].CanonicalKey != key {
			t.Fatalf("record %d: got key %q, want %q", i, records[i].CanonicalKey, key)
		}
	}
}
