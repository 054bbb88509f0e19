package lookupdb

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "modernc.org/sqlite"

	"dpdlookup/internal/config"
	"dpdlookup/internal/lookup"
)

// Store persists lookup records in SQLite. Every transaction it opens takes
// the database write lock up front (BEGIN IMMEDIATE).
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

var _ lookup.Store = (*Store)(nil)

// Open connects to the database named by the configuration, creating parent
// directories and applying migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.Paths.Database, cfg.Sync.BusyTimeoutMS)
}

// OpenPath connects to the SQLite database at path.
func OpenPath(path string, busyTimeoutMS int) (*Store, error) {
	if busyTimeoutMS <= 0 {
		busyTimeoutMS = 5000
	}
	db, err := sql.Open("sqlite", dsn(path, busyTimeoutMS))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	store := &Store{db: db, path: path, now: time.Now}
	if err := retryOnBusy(context.Background(), func() error {
		return store.applyMigrations(context.Background())
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func dsn(path string, busyTimeoutMS int) string {
	params := url.Values{}
	params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeoutMS))
	params.Add("_pragma", "journal_mode(WAL)")
	params.Add("_pragma", "synchronous(NORMAL)")
	params.Set("_txlock", "immediate")
	return "file:" + path + "?" + params.Encode()
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Begin opens a write transaction.
func (s *Store) Begin(ctx context.Context) (lookup.Tx, error) {
	ctx = ensureContext(ctx)
	var tx *sql.Tx
	err := retryOnBusy(ctx, func() error {
		var beginErr error
		tx, beginErr = s.db.BeginTx(ctx, nil)
		return beginErr
	})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &Tx{tx: tx, now: s.now}, nil
}

// Get returns the record stored for key, or nil when absent.
func (s *Store) Get(ctx context.Context, key string) (*lookup.Record, error) {
	return getRecord(ensureContext(ctx), s.db, key)
}

// List returns up to limit records ordered by key, starting after the given
// key. A limit of zero returns every remaining record.
func (s *Store) List(ctx context.Context, after string, limit int) ([]*lookup.Record, error) {
	ctx = ensureContext(ctx)
	query := "SELECT " + recordColumns + " FROM lookup WHERE lookup_key > ? ORDER BY lookup_key"
	args := []any{after}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return collectRecords(rows)
}
