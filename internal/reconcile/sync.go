package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"dpdlookup/internal/config"
	"dpdlookup/internal/logging"
	"dpdlookup/internal/lookup"
)

// Result reports what a committed (or dry-run) sync pass did.
type Result struct {
	SyncID string       `json:"sync_id"`
	Field  lookup.Field `json:"field"`
	// Added counts keys the producer newly claims; Created is the subset
	// that needed a new row.
	Added     int           `json:"added"`
	Created   int           `json:"created"`
	Updated   int           `json:"updated"`
	Cleared   int           `json:"cleared"`
	Deleted   int           `json:"deleted"`
	Unchanged int           `json:"unchanged"`
	DryRun    bool          `json:"dry_run"`
	Duration  time.Duration `json:"-"`
}

// Touched counts existing rows whose field was rewritten or emptied.
func (r Result) Touched() int {
	return r.Updated + r.Cleared
}

// Syncer reconciles one producer's mapping against the lookup table.
type Syncer struct {
	Store   lookup.Store
	LockDir string
	Logger  *slog.Logger
	// DryRun classifies and applies inside the transaction, then rolls back.
	DryRun bool
}

// NewSyncer builds a Syncer from application configuration.
func NewSyncer(store lookup.Store, cfg *config.Config, logger *slog.Logger) *Syncer {
	s := &Syncer{Store: store, Logger: logger}
	if cfg != nil {
		s.LockDir = cfg.Paths.LockDir
		s.DryRun = cfg.Sync.DryRun
	}
	return s
}

// Sync makes the table's field column match m exactly: keys in m carry
// their payload, every other record has the field empty, and records left
// with no data are deleted. Other producers' columns are never written.
// On any error the transaction is rolled back and a zero Result returned.
func (s *Syncer) Sync(ctx context.Context, m lookup.Mapping) (Result, error) {
	field := m.Field
	if !field.Valid() {
		return Result{}, fmt.Errorf("sync: unknown producer field %q", field)
	}
	if s.Store == nil {
		return Result{}, errors.New("sync: store is required")
	}

	started := time.Now()
	syncID := uuid.NewString()
	ctx = logging.WithProducer(logging.WithSyncID(ctx, syncID), string(field))
	logger := logging.WithContext(ctx, logging.NewComponentLogger(s.Logger, "reconcile"))

	lock, err := AcquireProducerLock(s.LockDir, field)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("release producer lock failed", logging.Error(err))
		}
	}()

	res, err := s.apply(ctx, logger, m)
	if err != nil {
		logger.Error("sync aborted",
			logging.String(logging.FieldEventType, "sync_aborted"),
			logging.Error(err),
		)
		return Result{}, err
	}
	res.SyncID = syncID
	res.Duration = time.Since(started)

	logger.Info("sync complete",
		logging.String(logging.FieldEventType, "sync_complete"),
		logging.Int("touched", res.Touched()),
		logging.Int("added", res.Added),
		logging.Int("created", res.Created),
		logging.Int("updated", res.Updated),
		logging.Int("cleared", res.Cleared),
		logging.Int("deleted", res.Deleted),
		logging.Int("unchanged", res.Unchanged),
		logging.Bool("dry_run", res.DryRun),
		logging.Duration("duration", res.Duration),
	)
	return res, nil
}

func (s *Syncer) apply(ctx context.Context, logger *slog.Logger, m lookup.Mapping) (Result, error) {
	field := m.Field

	tx, err := s.Store.Begin(ctx)
	if err != nil {
		return Result{}, wrap(ErrStore, field, "begin", err)
	}
	done := false
	defer func() {
		if !done {
			_ = tx.Rollback()
		}
	}()

	owned, err := tx.RecordsWithField(ctx, field)
	if err != nil {
		return Result{}, wrap(ErrStore, field, "load existing", err)
	}
	existing := make(map[string]string, len(owned))
	byKey := make(map[string]*lookup.Record, len(owned))
	for _, rec := range owned {
		existing[rec.Key] = rec.Value(field)
		byKey[rec.Key] = rec
	}

	cls := Classify(existing, m.Payloads)
	counts := cls.Counts()
	logger.Debug("classified mapping",
		logging.Int("incoming", m.Len()),
		logging.Int("existing", len(existing)),
		logging.Int("add", counts.Add),
		logging.Int("update", counts.Update),
		logging.Int("unchanged", counts.Unchanged),
		logging.Int("drop", counts.Drop),
	)

	res := Result{Field: field, Unchanged: counts.Unchanged, DryRun: s.DryRun}

	for _, key := range cls.Update {
		if err := tx.SetField(ctx, key, field, m.Payloads[key]); err != nil {
			return Result{}, storeOrInvariant(field, "update "+key, err)
		}
		res.Updated++
	}

	for _, key := range cls.Drop {
		rec := byKey[key]
		if lookup.HasOtherData(rec, field) {
			ok, err := tx.ClearField(ctx, key, field)
			if err != nil {
				return Result{}, wrap(ErrStore, field, "clear "+key, err)
			}
			if !ok {
				return Result{}, wrap(ErrInvariant, field, fmt.Sprintf("clear %q matched no row", key), nil)
			}
			res.Cleared++
			continue
		}
		ok, err := tx.Delete(ctx, key, field)
		if err != nil {
			return Result{}, wrap(ErrStore, field, "delete "+key, err)
		}
		if !ok {
			return Result{}, wrap(ErrInvariant, field, fmt.Sprintf("delete %q matched no row", key), nil)
		}
		res.Deleted++
	}

	for _, key := range cls.Add {
		payload := m.Payloads[key]
		if payload == "" {
			return Result{}, wrap(ErrInvariant, field, fmt.Sprintf("add %q with empty payload", key), nil)
		}
		rec, err := tx.Get(ctx, key)
		if err != nil {
			return Result{}, wrap(ErrStore, field, "get "+key, err)
		}
		switch {
		case rec == nil:
			if err := tx.Insert(ctx, lookup.NewRecord(key, field, payload)); err != nil {
				return Result{}, storeOrInvariant(field, "insert "+key, err)
			}
			res.Created++
		case rec.Has(field):
			return Result{}, wrap(ErrInvariant, field, fmt.Sprintf("add %q already owned", key), nil)
		default:
			if err := tx.SetField(ctx, key, field, payload); err != nil {
				return Result{}, storeOrInvariant(field, "attach "+key, err)
			}
		}
		res.Added++
	}

	if s.DryRun {
		done = true
		if err := tx.Rollback(); err != nil {
			return Result{}, wrap(ErrStore, field, "rollback dry run", err)
		}
		return res, nil
	}

	done = true
	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return Result{}, wrap(ErrStore, field, "commit", err)
	}
	return res, nil
}

// storeOrInvariant classifies a write error. A missing or duplicate key means
// the table disagrees with what this transaction just read.
func storeOrInvariant(field lookup.Field, operation string, err error) error {
	if errors.Is(err, lookup.ErrNotFound) || errors.Is(err, lookup.ErrKeyExists) {
		return wrap(ErrInvariant, field, operation, err)
	}
	return wrap(ErrStore, field, operation, err)
}
