package lookup

import (
	"errors"
	"fmt"
	"sort"
)

// Mapping is the packed input of one sync pass: every key the producer
// claims, with the payload it wants stored.
type Mapping struct {
	Field    Field
	Payloads map[string]string
}

// Len returns the number of claimed keys.
func (m Mapping) Len() int { return len(m.Payloads) }

// Keys returns the claimed keys in sorted order.
func (m Mapping) Keys() []string {
	keys := make([]string, 0, len(m.Payloads))
	for k := range m.Payloads {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewMapping normalizes keys of already packed payloads. Empty payloads are
// dropped because the producer has nothing to store for them. Two raw keys
// that normalize to one key must agree on the payload.
func NewMapping(field Field, packed map[string]string) (Mapping, error) {
	if !field.Valid() {
		return Mapping{}, fmt.Errorf("unknown producer field %q", field)
	}
	out := Mapping{Field: field, Payloads: make(map[string]string, len(packed))}
	origin := make(map[string]string, len(packed))

	// Walk raw keys in order so collision errors are reproducible.
	rawKeys := make([]string, 0, len(packed))
	for k := range packed {
		rawKeys = append(rawKeys, k)
	}
	sort.Strings(rawKeys)

	for _, raw := range rawKeys {
		payload := packed[raw]
		if payload == "" {
			continue
		}
		key, err := NormalizeKey(raw)
		if err != nil {
			return Mapping{}, &PackError{Field: field, Key: raw, Err: err}
		}
		if prev, ok := out.Payloads[key]; ok {
			if prev != payload {
				return Mapping{}, &PackError{
					Field: field,
					Key:   key,
					Err:   fmt.Errorf("keys %q and %q normalize to the same key with different payloads", origin[key], raw),
				}
			}
			continue
		}
		out.Payloads[key] = payload
		origin[key] = raw
	}
	return out, nil
}

// PackMapping packs every payload of raw with codec. The first failing key,
// in sorted order, aborts the whole mapping.
func PackMapping[T any](codec Codec[T], raw map[string]T) (Mapping, error) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	packed := make(map[string]string, len(raw))
	for _, key := range keys {
		value, err := codec.Pack(raw[key])
		if err != nil {
			return Mapping{}, WithKey(err, codec.Field(), key)
		}
		packed[key] = value
	}
	return NewMapping(codec.Field(), packed)
}

// WithKey attaches key to a pack error produced without one.
func WithKey(err error, field Field, key string) error {
	if err == nil {
		return nil
	}
	var pe *PackError
	if errors.As(err, &pe) {
		cp := *pe
		cp.Key = key
		return &cp
	}
	return &PackError{Field: field, Key: key, Err: err}
}
