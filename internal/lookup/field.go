package lookup

import (
	"fmt"
	"strings"
)

// Field names one producer-owned column of a Lookup record. The value is
// also the SQLite column name.
type Field string

const (
	FieldDeconstructor Field = "deconstructor"
	FieldVariant       Field = "variant"
	FieldSpelling      Field = "spelling"
	FieldGrammar       Field = "grammar"
	FieldHelp          Field = "help"
	FieldAbbrev        Field = "abbrev"
	FieldEPD           Field = "epd"
	FieldPronunciation Field = "pronunciation"
)

var allFields = []Field{
	FieldDeconstructor,
	FieldVariant,
	FieldSpelling,
	FieldGrammar,
	FieldHelp,
	FieldAbbrev,
	FieldEPD,
	FieldPronunciation,
}

var fieldSet = func() map[Field]struct{} {
	set := make(map[Field]struct{}, len(allFields))
	for _, f := range allFields {
		set[f] = struct{}{}
	}
	return set
}()

// fieldAliases accepts the producer names used by the batch scripts.
var fieldAliases = map[string]Field{
	"deconstruction": FieldDeconstructor,
	"variants":       FieldVariant,
	"sandhi":         FieldVariant,
	"spellings":      FieldSpelling,
	"abbreviation":   FieldAbbrev,
	"abbreviations":  FieldAbbrev,
}

// AllFields returns every producer field in column order.
func AllFields() []Field {
	out := make([]Field, len(allFields))
	copy(out, allFields)
	return out
}

// Valid reports whether f is a known producer field.
func (f Field) Valid() bool {
	_, ok := fieldSet[f]
	return ok
}

func (f Field) String() string { return string(f) }

// ParseField resolves a producer name to its field.
func ParseField(name string) (Field, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if f := Field(normalized); f.Valid() {
		return f, nil
	}
	if f, ok := fieldAliases[normalized]; ok {
		return f, nil
	}
	return "", fmt.Errorf("unknown producer %q", name)
}
