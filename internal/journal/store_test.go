package journal_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"vyshim/internal/journal"
	"vyshim/internal/testsupport"
)

func TestRecordAndRecent(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithJournal())
	store := testsupport.MustOpenJournal(t, cfg)
	ctx := context.Background()

	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := journal.Entry{
		InvocationID: "inv-1",
		StartedAt:    started,
		Duration:     150 * time.Millisecond,
		Descriptor:   "/opt/vyatta/.../interface.pyeth0",
		Initialized:  true,
		Status:       0x01,
		Outcome:      "success",
	}
	second := journal.Entry{
		InvocationID: "inv-2",
		StartedAt:    started.Add(time.Second),
		Descriptor:   "/x.py",
		Status:       0x02,
		Outcome:      "rejected",
		ExitCode:     1,
		Error:        "rejected: node update: daemon replied ERROR_COMMIT",
	}
	for _, e := range []journal.Entry{first, second} {
		if err := store.Record(ctx, e); err != nil {
			t.Fatalf("Record(%s): %v", e.InvocationID, err)
		}
	}

	entries, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].InvocationID != "inv-2" || entries[1].InvocationID != "inv-1" {
		t.Fatalf("expected newest first, got %s, %s", entries[0].InvocationID, entries[1].InvocationID)
	}
	got := entries[1]
	if !got.StartedAt.Equal(started) || got.Duration != 150*time.Millisecond || !got.Initialized || got.Status != 0x01 {
		t.Fatalf("unexpected round-tripped entry: %#v", got)
	}
	if entries[0].Error == "" || entries[0].ExitCode != 1 {
		t.Fatalf("unexpected rejected entry: %#v", entries[0])
	}
	if entries[1].Error != "" {
		t.Fatalf("expected empty error, got %q", entries[1].Error)
	}
}

func TestRecordRequiresInvocationID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)
	if err := store.Record(context.Background(), journal.Entry{Outcome: "success"}); err == nil {
		t.Fatal("expected error without invocation id")
	}
}

func TestPruneKeepsNewest(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		entry := journal.Entry{InvocationID: fmt.Sprintf("inv-%d", i), Outcome: "success"}
		if err := store.Record(ctx, entry); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	removed, err := store.Prune(ctx, 2)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed, got %d", removed)
	}
	count, err := store.Count(ctx)
	if err != nil || count != 2 {
		t.Fatalf("Count = %d, %v", count, err)
	}
	entries, err := store.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if entries[0].InvocationID != "inv-4" || entries[1].InvocationID != "inv-3" {
		t.Fatalf("unexpected survivors: %s, %s", entries[0].InvocationID, entries[1].InvocationID)
	}

	if _, err := store.Prune(ctx, -1); err == nil {
		t.Fatal("expected error for negative keep")
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)
	store.Close()

	db, err := sql.Open("sqlite", cfg.Journal.Path)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	db.Close()

	if _, err := journal.Open(cfg.Journal.Path); !errors.Is(err, journal.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Record(context.Background(), journal.Entry{InvocationID: "keep", Outcome: "pass"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	store.Close()

	reopened := testsupport.MustOpenJournal(t, cfg)
	count, err := reopened.Count(context.Background())
	if err != nil || count != 1 {
		t.Fatalf("Count after reopen = %d, %v", count, err)
	}
}
