package lookup

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrEmptyKey is returned when a key normalizes to the empty string.
var ErrEmptyKey = errors.New("empty lookup key")

// NormalizeKey returns the canonical form of a lookup key: NFC composed,
// whitespace collapsed to single spaces, and case folded. Composed and
// decomposed spellings of the same word-form map to the same key.
func NormalizeKey(raw string) (string, error) {
	if !utf8.ValidString(raw) {
		return "", fmt.Errorf("lookup key %q: %w", raw, ErrInvalidUTF8)
	}
	collapsed := strings.Join(strings.Fields(raw), " ")
	if collapsed == "" {
		return "", ErrEmptyKey
	}
	// Casers carry state, so build the chain per call.
	t := transform.Chain(norm.NFC, cases.Fold(), norm.NFC)
	out, _, err := transform.String(t, collapsed)
	if err != nil {
		return "", fmt.Errorf("normalize key %q: %w", raw, err)
	}
	if out == "" {
		return "", ErrEmptyKey
	}
	return out, nil
}
