package mapping

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-yaml"

	"dpdlookup/internal/lookup"
)

// Format identifies the encoding of a mapping file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("mapping %s: unsupported extension (use .json, .yaml, or .yml)", path)
	}
}

// ParseFormat resolves a user supplied format name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported mapping format %q", name)
	}
}

// Load reads the mapping file at path and packs it for field.
func Load(path string, field lookup.Field) (lookup.Mapping, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return lookup.Mapping{}, err
	}
	file, err := os.Open(path)
	if err != nil {
		return lookup.Mapping{}, fmt.Errorf("open mapping: %w", err)
	}
	defer file.Close()

	m, err := Read(file, format, field)
	if err != nil {
		return lookup.Mapping{}, fmt.Errorf("mapping %s: %w", path, err)
	}
	return m, nil
}

// Read decodes a key to payload object from r. Each payload is checked
// against field's payload type and packed; the first failing key, in sorted
// order, is reported as a *lookup.PackError.
func Read(r io.Reader, format Format, field lookup.Field) (lookup.Mapping, error) {
	codec, err := lookup.CodecFor(field)
	if err != nil {
		return lookup.Mapping{}, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return lookup.Mapping{}, fmt.Errorf("read mapping: %w", err)
	}
	if !utf8.Valid(data) {
		return lookup.Mapping{}, &lookup.PackError{Field: field, Err: lookup.ErrInvalidUTF8}
	}
	if format == FormatYAML {
		if data, err = yaml.YAMLToJSON(data); err != nil {
			return lookup.Mapping{}, fmt.Errorf("decode yaml: %w", err)
		}
	}

	raw, keys, err := decodeObject(data, field)
	if err != nil {
		return lookup.Mapping{}, err
	}

	packed := make(map[string]string, len(raw))
	for _, key := range keys {
		value, err := codec.PackRaw(raw[key])
		if err != nil {
			return lookup.Mapping{}, lookup.WithKey(err, field, key)
		}
		packed[key] = value
	}
	return lookup.NewMapping(field, packed)
}

// decodeObject splits a top-level JSON object into raw values and returns its
// keys sorted. A key repeated in the object is a pack error.
func decodeObject(data []byte, field lookup.Field) (map[string]json.RawMessage, []string, error) {
	raw := map[string]json.RawMessage{}
	if len(bytes.TrimSpace(data)) == 0 {
		return raw, nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, fmt.Errorf("decode mapping object: %w", err)
	}
	if tok == nil {
		return raw, nil, nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("decode mapping object: expected an object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("decode mapping object: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("decode mapping object: unexpected token %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, nil, fmt.Errorf("decode mapping value for %q: %w", key, err)
		}
		if _, dup := raw[key]; dup {
			return nil, nil, &lookup.PackError{Field: field, Key: key, Err: errors.New("key appears more than once")}
		}
		raw[key] = value
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, fmt.Errorf("decode mapping object: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, nil, errors.New("decode mapping object: trailing data after object")
	}

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return raw, keys, nil
}
