package testsupport

import (
	"context"
	"testing"

	"dpdlookup/internal/config"
	"dpdlookup/internal/lookup"
	"dpdlookup/internal/lookupdb"
)

// MustOpenStore opens a lookupdb.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *lookupdb.Store {
	t.Helper()

	store, err := lookupdb.Open(cfg)
	if err != nil {
		t.Fatalf("lookupdb.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedRecord upserts records in a single committed transaction.
func SeedRecord(t testing.TB, store lookup.Store, recs ...*lookup.Record) {
	t.Helper()

	ctx := context.Background()
	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin seed tx: %v", err)
	}
	for _, rec := range recs {
		if err := tx.Upsert(ctx, rec); err != nil {
			_ = tx.Rollback()
			t.Fatalf("seed %q: %v", rec.Key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit seed tx: %v", err)
	}
}

// MustGet fetches key from store, failing the test on error.
func MustGet(t testing.TB, store *lookupdb.Store, key string) *lookup.Record {
	t.Helper()

	rec, err := store.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("store.Get(%q): %v", key, err)
	}
	return rec
}
