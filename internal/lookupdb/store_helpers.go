package lookupdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"dpdlookup/internal/lookup"
)

var fieldColumns = func() []string {
	fields := lookup.AllFields()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = string(f)
	}
	return cols
}()

var recordColumns = "lookup_key, " + strings.Join(fieldColumns, ", ") + ", created_at, updated_at"

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// column returns the SQL column for field. Only known fields are ever
// interpolated into statements.
func column(field lookup.Field) (string, error) {
	if !field.Valid() {
		return "", fmt.Errorf("unknown producer field %q", field)
	}
	return string(field), nil
}

// othersNonEmpty renders "(a != '' OR b != '' ...)" over every field except owner.
func othersNonEmpty(owner lookup.Field) string {
	var parts []string
	for _, f := range lookup.AllFields() {
		if f != owner {
			parts = append(parts, string(f)+" != ''")
		}
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

// othersEmpty renders "a = '' AND b = '' ..." over every field except owner.
func othersEmpty(owner lookup.Field) string {
	var parts []string
	for _, f := range lookup.AllFields() {
		if f != owner {
			parts = append(parts, string(f)+" = ''")
		}
	}
	return strings.Join(parts, " AND ")
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*lookup.Record, error) {
	var (
		key        string
		values     = make([]string, len(fieldColumns))
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)
	dest := make([]any, 0, len(values)+3)
	dest = append(dest, &key)
	for i := range values {
		dest = append(dest, &values[i])
	}
	dest = append(dest, &createdRaw, &updatedRaw)
	if err := scanner.Scan(dest...); err != nil {
		return nil, err
	}

	rec := &lookup.Record{Key: key}
	for i, f := range lookup.AllFields() {
		rec.Set(f, values[i])
	}
	rec.CreatedAt = parseTime(createdRaw)
	rec.UpdatedAt = parseTime(updatedRaw)
	return rec, nil
}

func collectRecords(rows *sql.Rows) ([]*lookup.Record, error) {
	defer rows.Close()
	var out []*lookup.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

func getRecord(ctx context.Context, q querier, key string) (*lookup.Record, error) {
	row := q.QueryRowContext(ctx, "SELECT "+recordColumns+" FROM lookup WHERE lookup_key = ?", key)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record %q: %w", key, err)
	}
	return rec, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw sql.NullString) time.Time {
	if !raw.Valid || raw.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, raw.String)
	if err != nil {
		return time.Time{}
	}
	return t
}
