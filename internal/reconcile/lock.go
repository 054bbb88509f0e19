package reconcile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"dpdlookup/internal/lookup"
)

// ProducerLock is an exclusive, cross-process lock for one producer.
type ProducerLock struct {
	lock *flock.Flock
}

// LockPath returns the lock file used for field under dir.
func LockPath(dir string, field lookup.Field) string {
	return filepath.Join(dir, "sync-"+string(field)+".lock")
}

// AcquireProducerLock takes the producer lock without waiting. A lock held
// elsewhere yields ErrBusy. An empty dir disables locking.
func AcquireProducerLock(dir string, field lookup.Field) (*ProducerLock, error) {
	if dir == "" {
		return &ProducerLock{}, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure lock directory: %w", err)
	}

	lock := flock.New(LockPath(dir, field))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, wrap(ErrBusy, field, "lock "+lock.Path(), nil)
	}
	return &ProducerLock{lock: lock}, nil
}

// Release drops the lock. It is safe to call on a nil or disabled lock.
func (l *ProducerLock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
