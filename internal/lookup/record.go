package lookup

import "time"

// Record is one row of the lookup table. Each producer field holds a packed
// payload or the empty string.
type Record struct {
	Key           string
	Deconstructor string
	Variant       string
	Spelling      string
	Grammar       string
	Help          string
	Abbrev        string
	EPD           string
	Pronunciation string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRecord returns a record carrying only the given field.
func NewRecord(key string, field Field, packed string) *Record {
	rec := &Record{Key: key}
	rec.Set(field, packed)
	return rec
}

// Value returns the packed payload stored for field.
func (r *Record) Value(field Field) string {
	if r == nil {
		return ""
	}
	if p := r.slot(field); p != nil {
		return *p
	}
	return ""
}

// Set stores a packed payload. Unknown fields are ignored.
func (r *Record) Set(field Field, packed string) {
	if p := r.slot(field); p != nil {
		*p = packed
	}
}

// Clear resets field to the canonical empty value.
func (r *Record) Clear(field Field) {
	r.Set(field, "")
}

// Has reports whether field is non-empty.
func (r *Record) Has(field Field) bool {
	return r.Value(field) != ""
}

// Empty reports whether every producer field is empty. Such a record must
// not be persisted.
func (r *Record) Empty() bool {
	for _, f := range allFields {
		if r.Has(f) {
			return false
		}
	}
	return true
}

// Fields returns the producer fields that currently hold data.
func (r *Record) Fields() []Field {
	var out []Field
	for _, f := range allFields {
		if r.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// HasOtherData reports whether any producer field other than excluding is
// non-empty. It decides between clearing one field and deleting the record.
func HasOtherData(r *Record, excluding Field) bool {
	if r == nil {
		return false
	}
	for _, f := range allFields {
		if f == excluding {
			continue
		}
		if r.Has(f) {
			return true
		}
	}
	return false
}

func (r *Record) slot(field Field) *string {
	if r == nil {
		return nil
	}
	switch field {
	case FieldDeconstructor:
		return &r.Deconstructor
	case FieldVariant:
		return &r.Variant
	case FieldSpelling:
		return &r.Spelling
	case FieldGrammar:
		return &r.Grammar
	case FieldHelp:
		return &r.Help
	case FieldAbbrev:
		return &r.Abbrev
	case FieldEPD:
		return &r.EPD
	case FieldPronunciation:
		return &r.Pronunciation
	default:
		return nil
	}
}
