package lookup

import (
	"context"
	"errors"
)

var (
	// ErrEmptyRecord is returned when a write would persist a record with no
	// producer data.
	ErrEmptyRecord = errors.New("record has no producer data")
	// ErrKeyExists is returned by Insert when the key is already stored.
	ErrKeyExists = errors.New("lookup key already exists")
	// ErrNotFound is returned by SetField when the key is not stored.
	ErrNotFound = errors.New("lookup key not found")
)

// Store opens transactions over the lookup table.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is one transaction over the lookup table. Field-scoped writes touch a
// single column and leave every other producer's data alone.
type Tx interface {
	// RecordsWithField lists records whose field is non-empty.
	RecordsWithField(ctx context.Context, field Field) ([]*Record, error)
	// Get returns the record for key, or nil when absent.
	Get(ctx context.Context, key string) (*Record, error)
	// Upsert writes every column of rec.
	Upsert(ctx context.Context, rec *Record) error
	// Insert creates rec and fails if the key already exists.
	Insert(ctx context.Context, rec *Record) error
	// SetField stores a non-empty payload in one column of an existing record.
	// A missing key yields ErrNotFound.
	SetField(ctx context.Context, key string, field Field, packed string) error
	// ClearField empties field on key only while another field still holds
	// data. It reports whether a row matched.
	ClearField(ctx context.Context, key string, field Field) (bool, error)
	// Delete removes key only while every field other than owner is empty.
	// It reports whether a row matched.
	Delete(ctx context.Context, key string, owner Field) (bool, error)
	Commit() error
	Rollback() error
}
