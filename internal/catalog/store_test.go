package catalog_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"meetscribe/internal/artifact"
	"meetscribe/internal/catalog"
	"meetscribe/internal/media"
)

func openStore(t *testing.T, path string) *catalog.Store {
	t.Helper()
	store, err := catalog.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestLedgerKeepsInsertionOrderAndIgnoresDuplicates(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "meetscribe.db"))
	ctx := context.Background()
	ledger := store.Ledger("council")

	for _, id := range []string{"b", "a", "c"} {
		added, err := ledger.Add(ctx, id)
		if err != nil || !added {
			t.Fatalf("Add(%s) = %v, %v", id, added, err)
		}
	}
	added, err := ledger.Add(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if added {
		t.Fatal("duplicate identifier must not be added")
	}

	if _, err := store.Ledger("planning").Add(ctx, "a"); err != nil {
		t.Fatalf("same identifier in another series: %v", err)
	}

	entries, err := ledger.Entries(ctx)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	var got []string
	for _, e := range entries {
		got = append(got, e.Identifier)
		if e.Identity != nil {
			t.Fatalf("unexpected identity for unresolved item %s", e.Identifier)
		}
	}
	if len(got) != 3 || got[0] != "b" || got[1] != "a" || got[2] != "c" {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestIdentityPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "meetscribe.db")
	ctx := context.Background()

	store, err := catalog.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ledger := store.Ledger("council")
	if _, err := ledger.Add(ctx, "itemA"); err != nil {
		t.Fatal(err)
	}
	want := artifact.Identity{
		Metadata: media.Metadata{URL: "https://archive.org/details/itemA", Title: "Council", Date: "2024-01-02"},
		FileName: "council.mp4",
	}
	if err := ledger.RecordIdentity(ctx, "itemA", want); err != nil {
		t.Fatalf("RecordIdentity: %v", err)
	}
	if err := ledger.RecordIdentity(ctx, "unknown", want); err == nil {
		t.Fatal("expected error recording identity of untracked item")
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened := openStore(t, path)
	entries, err := reopened.Ledger("council").Entries(ctx)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 1 || entries[0].Identity == nil {
		t.Fatalf("unexpected entries %+v", entries)
	}
	if *entries[0].Identity != want {
		t.Fatalf("identity mismatch: got %+v want %+v", *entries[0].Identity, want)
	}
	if entries[0].AddedAt.IsZero() {
		t.Fatal("expected added_at timestamp")
	}
}

func TestResponseCacheHonoursTTL(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "meetscribe.db"))
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "k", time.Hour); err != nil || ok {
		t.Fatalf("expected miss on empty cache, got ok=%v err=%v", ok, err)
	}
	if err := store.Put(ctx, "k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	body, ok, err := store.Get(ctx, "k", time.Hour)
	if err != nil || !ok || string(body) != `{"a":1}` {
		t.Fatalf("expected hit, got %q ok=%v err=%v", body, ok, err)
	}
	if err := store.Put(ctx, "k", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	body, _, _ = store.Get(ctx, "k", time.Hour)
	if string(body) != `{"a":2}` {
		t.Fatalf("expected overwritten body, got %q", body)
	}

	time.Sleep(5 * time.Millisecond)
	if _, ok, _ := store.Get(ctx, "k", time.Millisecond); ok {
		t.Fatal("expected stale entry to miss")
	}
	removed, err := store.PruneCache(ctx, time.Millisecond)
	if err != nil || removed != 1 {
		t.Fatalf("PruneCache = %d, %v", removed, err)
	}
}
