package lookupdb_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"dpdlookup/internal/lookup"
	"dpdlookup/internal/lookupdb"
	"dpdlookup/internal/testsupport"
)

var ignoreTimes = cmpopts.IgnoreFields(lookup.Record{}, "CreatedAt", "UpdatedAt")

func begin(t *testing.T, store *lookupdb.Store) lookup.Tx {
	t.Helper()
	tx, err := store.Begin(context.Background())
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	t.Cleanup(func() { _ = tx.Rollback() })
	return tx
}

func TestOpenAppliesMigrations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	version, err := store.SchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if version != "001_lookup" {
		t.Fatalf("unexpected schema version %q", version)
	}
	if store.Path() != cfg.Paths.Database {
		t.Fatalf("unexpected path %q", store.Path())
	}

	// Reopening an existing database must not re-run migrations.
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	reopened := testsupport.MustOpenStore(t, cfg)
	if _, err := reopened.Stats(context.Background()); err != nil {
		t.Fatalf("Stats after reopen: %v", err)
	}
}

func TestInsertAndGet(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	tx := begin(t, store)
	rec := &lookup.Record{Key: "dhamma", Variant: `["dhamma"]`, Help: `"help"`}
	if err := tx.Insert(ctx, rec); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	got := testsupport.MustGet(t, store, "dhamma")
	if diff := cmp.Diff(rec, got, ignoreTimes); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
	if got.CreatedAt.IsZero() || !got.CreatedAt.Equal(got.UpdatedAt) {
		t.Fatalf("expected matching timestamps on insert, got %v / %v", got.CreatedAt, got.UpdatedAt)
	}

	if missing := testsupport.MustGet(t, store, "absent"); missing != nil {
		t.Fatalf("expected nil for absent key, got %#v", missing)
	}
}

func TestInsertRejectsDuplicateAndEmpty(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	testsupport.SeedRecord(t, store, lookup.NewRecord("kamma", lookup.FieldVariant, `["kamma"]`))
	ctx := context.Background()

	tx := begin(t, store)
	err := tx.Insert(ctx, lookup.NewRecord("kamma", lookup.FieldHelp, `"x"`))
	if !errors.Is(err, lookup.ErrKeyExists) {
		t.Fatalf("expected ErrKeyExists, got %v", err)
	}
	if err := tx.Insert(ctx, &lookup.Record{Key: "empty"}); !errors.Is(err, lookup.ErrEmptyRecord) {
		t.Fatalf("expected ErrEmptyRecord from Insert, got %v", err)
	}
	if err := tx.Upsert(ctx, &lookup.Record{Key: "empty"}); !errors.Is(err, lookup.ErrEmptyRecord) {
		t.Fatalf("expected ErrEmptyRecord from Upsert, got %v", err)
	}
}

func TestUpsertPreservesCreatedAt(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	testsupport.SeedRecord(t, store, lookup.NewRecord("sati", lookup.FieldVariant, `["sati"]`))
	before := testsupport.MustGet(t, store, "sati")

	testsupport.SeedRecord(t, store, &lookup.Record{Key: "sati", Spelling: `["sati"]`})
	after := testsupport.MustGet(t, store, "sati")

	if after.Variant != "" || after.Spelling != `["sati"]` {
		t.Fatalf("expected full-row overwrite, got %#v", after)
	}
	if !after.CreatedAt.Equal(before.CreatedAt) {
		t.Fatalf("created_at changed: %v -> %v", before.CreatedAt, after.CreatedAt)
	}
}

func TestSetFieldTouchesOnlyOneColumn(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	testsupport.SeedRecord(t, store, &lookup.Record{Key: "buddha", Variant: `["a"]`, Grammar: `[["buddha","noun","masc"]]`})
	ctx := context.Background()

	tx := begin(t, store)
	if err := tx.SetField(ctx, "buddha", lookup.FieldVariant, `["b"]`); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	if err := tx.SetField(ctx, "missing", lookup.FieldVariant, `["b"]`); !errors.Is(err, lookup.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := tx.SetField(ctx, "buddha", lookup.FieldVariant, ""); err == nil {
		t.Fatal("expected error for empty payload")
	}
	if err := tx.SetField(ctx, "buddha", lookup.Field("bogus"), `["b"]`); err == nil {
		t.Fatal("expected error for unknown field")
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	want := &lookup.Record{Key: "buddha", Variant: `["b"]`, Grammar: `[["buddha","noun","masc"]]`}
	if diff := cmp.Diff(want, testsupport.MustGet(t, store, "buddha"), ignoreTimes); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestClearFieldRequiresOtherData(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	testsupport.SeedRecord(t, store,
		&lookup.Record{Key: "shared", Variant: `["v"]`, Help: `"h"`},
		&lookup.Record{Key: "sole", Variant: `["v"]`},
	)
	ctx := context.Background()

	tx := begin(t, store)
	ok, err := tx.ClearField(ctx, "shared", lookup.FieldVariant)
	if err != nil || !ok {
		t.Fatalf("ClearField shared: ok=%v err=%v", ok, err)
	}
	ok, err = tx.ClearField(ctx, "sole", lookup.FieldVariant)
	if err != nil {
		t.Fatalf("ClearField sole: %v", err)
	}
	if ok {
		t.Fatal("expected CAS miss when clearing the only field")
	}
	ok, err = tx.ClearField(ctx, "shared", lookup.FieldVariant)
	if err != nil || ok {
		t.Fatalf("expected CAS miss on already-empty field: ok=%v err=%v", ok, err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if rec := testsupport.MustGet(t, store, "shared"); rec.Variant != "" || rec.Help != `"h"` {
		t.Fatalf("unexpected shared record: %#v", rec)
	}
	if rec := testsupport.MustGet(t, store, "sole"); rec == nil || rec.Variant != `["v"]` {
		t.Fatalf("sole record must be untouched: %#v", rec)
	}
}

func TestDeleteRequiresSoleOwnership(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	testsupport.SeedRecord(t, store,
		&lookup.Record{Key: "shared", Variant: `["v"]`, Help: `"h"`},
		&lookup.Record{Key: "sole", Variant: `["v"]`},
	)
	ctx := context.Background()

	tx := begin(t, store)
	ok, err := tx.Delete(ctx, "shared", lookup.FieldVariant)
	if err != nil || ok {
		t.Fatalf("expected CAS miss deleting shared record: ok=%v err=%v", ok, err)
	}
	ok, err = tx.Delete(ctx, "sole", lookup.FieldVariant)
	if err != nil || !ok {
		t.Fatalf("Delete sole: ok=%v err=%v", ok, err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if rec := testsupport.MustGet(t, store, "shared"); rec == nil {
		t.Fatal("shared record must survive")
	}
	if rec := testsupport.MustGet(t, store, "sole"); rec != nil {
		t.Fatalf("sole record must be deleted, got %#v", rec)
	}
}

func TestRecordsWithFieldAndRollback(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	testsupport.SeedRecord(t, store,
		&lookup.Record{Key: "b", Variant: `["b"]`},
		&lookup.Record{Key: "a", Variant: `["a"]`, Help: `"a"`},
		&lookup.Record{Key: "c", Help: `"c"`},
	)
	ctx := context.Background()

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	recs, err := tx.RecordsWithField(ctx, lookup.FieldVariant)
	if err != nil {
		t.Fatalf("RecordsWithField: %v", err)
	}
	var keys []string
	for _, rec := range recs {
		keys = append(keys, rec.Key)
	}
	if diff := cmp.Diff([]string{"a", "b"}, keys); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}

	if _, err := tx.Delete(ctx, "b", lookup.FieldVariant); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if rec := testsupport.MustGet(t, store, "b"); rec == nil {
		t.Fatal("rollback must restore deleted record")
	}
}

func TestStatsAndList(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	empty, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats on empty db: %v", err)
	}
	if empty.Records != 0 || !empty.LastUpdated.IsZero() {
		t.Fatalf("unexpected empty stats: %+v", empty)
	}

	testsupport.SeedRecord(t, store,
		&lookup.Record{Key: "a", Variant: `["a"]`, Help: `"a"`},
		&lookup.Record{Key: "b", Variant: `["b"]`},
		&lookup.Record{Key: "c", EPD: `[["c","noun","c"]]`},
	)

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Records != 3 {
		t.Fatalf("expected 3 records, got %d", stats.Records)
	}
	want := map[lookup.Field]int{
		lookup.FieldDeconstructor: 0,
		lookup.FieldVariant:       2,
		lookup.FieldSpelling:      0,
		lookup.FieldGrammar:       0,
		lookup.FieldHelp:          1,
		lookup.FieldAbbrev:        0,
		lookup.FieldEPD:           1,
		lookup.FieldPronunciation: 0,
	}
	if diff := cmp.Diff(want, stats.Fields); diff != "" {
		t.Fatalf("field counts mismatch (-want +got):\n%s", diff)
	}
	if stats.LastUpdated.IsZero() {
		t.Fatal("expected last updated timestamp")
	}

	page, err := store.List(ctx, "a", 1)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page) != 1 || page[0].Key != "b" {
		t.Fatalf("unexpected page: %#v", page)
	}
}
