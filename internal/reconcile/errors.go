package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"dpdlookup/internal/lookup"
)

var (
	// ErrStore marks a begin, query, write, or commit failure. The pass was
	// rolled back in full.
	ErrStore = errors.New("store error")
	// ErrInvariant marks a compare-and-set that matched no row or a
	// classification the store contradicts. The pass was rolled back.
	ErrInvariant = errors.New("invariant violation")
	// ErrBusy marks a producer whose sync lock is held by another process.
	ErrBusy = errors.New("producer sync already running")
)

// wrap tags err with marker and the producer/operation that failed.
func wrap(marker error, field lookup.Field, operation string, err error) error {
	detail := "sync " + string(field)
	if operation = strings.TrimSpace(operation); operation != "" {
		detail += ": " + operation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}
