package lookupdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"dpdlookup/internal/lookup"
)

// Tx is a write transaction over the lookup table.
type Tx struct {
	tx  *sql.Tx
	now func() time.Time
}

var _ lookup.Tx = (*Tx)(nil)

// RecordsWithField lists records whose field is non-empty, ordered by key.
func (t *Tx) RecordsWithField(ctx context.Context, field lookup.Field) ([]*lookup.Record, error) {
	col, err := column(field)
	if err != nil {
		return nil, err
	}
	rows, err := t.tx.QueryContext(ensureContext(ctx),
		"SELECT "+recordColumns+" FROM lookup WHERE "+col+" != '' ORDER BY lookup_key")
	if err != nil {
		return nil, fmt.Errorf("records with %s: %w", field, err)
	}
	return collectRecords(rows)
}

// Get returns the record stored for key, or nil when absent.
func (t *Tx) Get(ctx context.Context, key string) (*lookup.Record, error) {
	return getRecord(ensureContext(ctx), t.tx, key)
}

// Upsert writes every producer column of rec, creating the row if needed.
func (t *Tx) Upsert(ctx context.Context, rec *lookup.Record) error {
	if rec.Empty() {
		return fmt.Errorf("upsert %q: %w", rec.Key, lookup.ErrEmptyRecord)
	}
	now := formatTime(t.now())
	assignments := make([]string, 0, len(fieldColumns)+1)
	for _, col := range fieldColumns {
		assignments = append(assignments, col+" = excluded."+col)
	}
	assignments = append(assignments, "updated_at = excluded.updated_at")

	query := insertStatement() + " ON CONFLICT(lookup_key) DO UPDATE SET " + strings.Join(assignments, ", ")
	if _, err := t.tx.ExecContext(ensureContext(ctx), query, insertArgs(rec, now)...); err != nil {
		return fmt.Errorf("upsert %q: %w", rec.Key, err)
	}
	return nil
}

// Insert creates rec. An existing key yields lookup.ErrKeyExists.
func (t *Tx) Insert(ctx context.Context, rec *lookup.Record) error {
	if rec.Empty() {
		return fmt.Errorf("insert %q: %w", rec.Key, lookup.ErrEmptyRecord)
	}
	_, err := t.tx.ExecContext(ensureContext(ctx), insertStatement(), insertArgs(rec, formatTime(t.now()))...)
	if isKeyConflict(err) {
		return fmt.Errorf("insert %q: %w", rec.Key, lookup.ErrKeyExists)
	}
	if err != nil {
		return fmt.Errorf("insert %q: %w", rec.Key, err)
	}
	return nil
}

// SetField stores packed in one column of an existing record.
func (t *Tx) SetField(ctx context.Context, key string, field lookup.Field, packed string) error {
	col, err := column(field)
	if err != nil {
		return err
	}
	if packed == "" {
		return fmt.Errorf("set %s on %q: empty payload (use ClearField)", field, key)
	}
	res, err := t.tx.ExecContext(ensureContext(ctx),
		"UPDATE lookup SET "+col+" = ?, updated_at = ? WHERE lookup_key = ?",
		packed, formatTime(t.now()), key)
	if err != nil {
		return fmt.Errorf("set %s on %q: %w", field, key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set %s on %q: rows affected: %w", field, key, err)
	}
	if n == 0 {
		return fmt.Errorf("set %s on %q: %w", field, key, lookup.ErrNotFound)
	}
	return nil
}

// ClearField empties field on key while some other field still holds data.
func (t *Tx) ClearField(ctx context.Context, key string, field lookup.Field) (bool, error) {
	col, err := column(field)
	if err != nil {
		return false, err
	}
	query := "UPDATE lookup SET " + col + " = '', updated_at = ? WHERE lookup_key = ? AND " +
		col + " != '' AND " + othersNonEmpty(field)
	res, err := t.tx.ExecContext(ensureContext(ctx), query, formatTime(t.now()), key)
	if err != nil {
		return false, fmt.Errorf("clear %s on %q: %w", field, key, err)
	}
	return affected(res, "clear", key)
}

// Delete removes key while every field other than owner is empty.
func (t *Tx) Delete(ctx context.Context, key string, owner lookup.Field) (bool, error) {
	if _, err := column(owner); err != nil {
		return false, err
	}
	res, err := t.tx.ExecContext(ensureContext(ctx),
		"DELETE FROM lookup WHERE lookup_key = ? AND "+othersEmpty(owner), key)
	if err != nil {
		return false, fmt.Errorf("delete %q: %w", key, err)
	}
	return affected(res, "delete", key)
}

func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

func insertStatement() string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(fieldColumns)+3), ", ")
	return "INSERT INTO lookup (" + recordColumns + ") VALUES (" + placeholders + ")"
}

func insertArgs(rec *lookup.Record, now string) []any {
	args := make([]any, 0, len(fieldColumns)+3)
	args = append(args, rec.Key)
	for _, f := range lookup.AllFields() {
		args = append(args, rec.Value(f))
	}
	return append(args, now, now)
}

func affected(res sql.Result, op, key string) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s %q: rows affected: %w", op, key, err)
	}
	return n > 0, nil
}
