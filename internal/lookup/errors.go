package lookup

import (
	"errors"
	"fmt"
)

// ErrPack marks payloads that cannot be serialized into a producer field.
var ErrPack = errors.New("pack error")

// PackError describes a payload that failed to pack or unpack. Key is empty
// when the failure is not tied to a single lookup key.
type PackError struct {
	Field Field
	Key   string
	Err   error
}

func (e *PackError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("pack %s payload: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("pack %s payload for %q: %v", e.Field, e.Key, e.Err)
}

func (e *PackError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrPack) match any PackError.
func (e *PackError) Is(target error) bool { return target == ErrPack }
