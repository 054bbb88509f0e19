package lookup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"unicode/utf8"
)

// ErrInvalidUTF8 marks text that would not survive a JSON round trip.
var ErrInvalidUTF8 = errors.New("text is not valid UTF-8")

// Codec packs a producer's payload type T into its field's stored form.
// Packing is deterministic JSON; an empty payload packs to "".
type Codec[T any] struct {
	field    Field
	empty    func(T) bool
	validate func(T) error
}

// Field returns the producer field the codec writes.
func (c Codec[T]) Field() Field { return c.field }

// Pack validates and serializes v.
func (c Codec[T]) Pack(v T) (string, error) {
	if c.empty(v) {
		return "", nil
	}
	if !validText(reflect.ValueOf(v)) {
		return "", &PackError{Field: c.field, Err: ErrInvalidUTF8}
	}
	if c.validate != nil {
		if err := c.validate(v); err != nil {
			return "", &PackError{Field: c.field, Err: err}
		}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", &PackError{Field: c.field, Err: err}
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// Unpack decodes a stored value. The empty string yields the zero value.
func (c Codec[T]) Unpack(stored string) (T, error) {
	var v T
	if stored == "" {
		return v, nil
	}
	if err := json.Unmarshal([]byte(stored), &v); err != nil {
		return v, &PackError{Field: c.field, Err: fmt.Errorf("unpack: %w", err)}
	}
	return v, nil
}

// PackRaw decodes a raw JSON payload as T and packs it.
func (c Codec[T]) PackRaw(raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", &PackError{Field: c.field, Err: ErrInvalidUTF8}
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", &PackError{Field: c.field, Err: err}
	}
	return c.Pack(v)
}

// UnpackAny is Unpack without the static type, for display code.
func (c Codec[T]) UnpackAny(stored string) (any, error) {
	return c.Unpack(stored)
}

// RawCodec is the type-erased view of a Codec used when the producer is
// chosen at runtime.
type RawCodec interface {
	Field() Field
	PackRaw(raw []byte) (string, error)
	UnpackAny(stored string) (any, error)
}

var (
	DeconstructorCodec = Codec[[]Decomposition]{
		field:    FieldDeconstructor,
		empty:    isEmptySlice[Decomposition],
		validate: validateDecompositions,
	}
	VariantCodec = Codec[[]string]{
		field:    FieldVariant,
		empty:    isEmptySlice[string],
		validate: validateStrings,
	}
	SpellingCodec = Codec[[]string]{
		field:    FieldSpelling,
		empty:    isEmptySlice[string],
		validate: validateStrings,
	}
	GrammarCodec = Codec[[]GrammarEntry]{
		field: FieldGrammar,
		empty: isEmptySlice[GrammarEntry],
		validate: func(entries []GrammarEntry) error {
			for i, g := range entries {
				if g.Headword == "" {
					return fmt.Errorf("grammar entry %d has no headword", i)
				}
			}
			return nil
		},
	}
	HelpCodec = Codec[string]{
		field: FieldHelp,
		empty: func(s string) bool { return s == "" },
	}
	AbbrevCodec = Codec[Abbreviation]{
		field: FieldAbbrev,
		empty: Abbreviation.IsZero,
		validate: func(a Abbreviation) error {
			if a.Meaning == "" {
				return errors.New("abbreviation has no meaning")
			}
			return nil
		},
	}
	EPDCodec = Codec[[]EPDEntry]{
		field: FieldEPD,
		empty: isEmptySlice[EPDEntry],
		validate: func(entries []EPDEntry) error {
			for i, e := range entries {
				if e.Headword == "" {
					return fmt.Errorf("epd entry %d has no headword", i)
				}
			}
			return nil
		},
	}
	PronunciationCodec = Codec[[]string]{
		field:    FieldPronunciation,
		empty:    isEmptySlice[string],
		validate: validateStrings,
	}
)

var codecs = map[Field]RawCodec{
	FieldDeconstructor: DeconstructorCodec,
	FieldVariant:       VariantCodec,
	FieldSpelling:      SpellingCodec,
	FieldGrammar:       GrammarCodec,
	FieldHelp:          HelpCodec,
	FieldAbbrev:        AbbrevCodec,
	FieldEPD:           EPDCodec,
	FieldPronunciation: PronunciationCodec,
}

// CodecFor returns the codec owning field.
func CodecFor(field Field) (RawCodec, error) {
	c, ok := codecs[field]
	if !ok {
		return nil, fmt.Errorf("no codec for field %q", field)
	}
	return c, nil
}

// validText reports whether every string reachable from v is valid UTF-8.
// encoding/json would otherwise replace bad bytes with U+FFFD.
func validText(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return utf8.ValidString(v.String())
	case reflect.Slice, reflect.Array:
		for i := range v.Len() {
			if !validText(v.Index(i)) {
				return false
			}
		}
	case reflect.Struct:
		for i := range v.NumField() {
			if !validText(v.Field(i)) {
				return false
			}
		}
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			if !validText(iter.Key()) || !validText(iter.Value()) {
				return false
			}
		}
	case reflect.Pointer, reflect.Interface:
		if !v.IsNil() {
			return validText(v.Elem())
		}
	}
	return true
}

func isEmptySlice[T any](v []T) bool { return len(v) == 0 }

func validateDecompositions(candidates []Decomposition) error {
	for i, d := range candidates {
		if err := d.validate(); err != nil {
			return fmt.Errorf("candidate %d: %w", i, err)
		}
	}
	return nil
}

func validateStrings(values []string) error {
	for i, v := range values {
		if v == "" {
			return fmt.Errorf("value %d is empty", i)
		}
	}
	return nil
}
