package lookup

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const partSeparator = " + "

// Decomposition is one ranked deconstruction candidate, e.g. [na, eva].
type Decomposition struct {
	Parts []string
}

// String renders the candidate the way the dictionary site displays it.
func (d Decomposition) String() string {
	return strings.Join(d.Parts, partSeparator)
}

// MarshalJSON packs the candidate as a single "a + b" string.
func (d Decomposition) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts either "a + b" or ["a", "b"].
func (d *Decomposition) UnmarshalJSON(data []byte) error {
	var joined string
	if err := json.Unmarshal(data, &joined); err == nil {
		d.Parts = splitParts(joined)
		return nil
	}
	var parts []string
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("decomposition must be a string or list of strings: %w", err)
	}
	d.Parts = parts
	return nil
}

func splitParts(joined string) []string {
	if strings.TrimSpace(joined) == "" {
		return nil
	}
	raw := strings.Split(joined, "+")
	parts := make([]string, len(raw))
	for i, p := range raw {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func (d Decomposition) validate() error {
	if len(d.Parts) == 0 {
		return errors.New("decomposition has no parts")
	}
	for _, p := range d.Parts {
		switch {
		case p == "":
			return errors.New("decomposition has an empty part")
		case strings.TrimSpace(p) != p:
			return fmt.Errorf("part %q has surrounding whitespace", p)
		case strings.Contains(p, "+"):
			return fmt.Errorf("part %q contains the separator", p)
		}
	}
	return nil
}

// GrammarEntry is one inflection parse: the headword it comes from, its part
// of speech, and the grammatical description.
type GrammarEntry struct {
	Headword string
	POS      string
	Grammar  string
}

func (g GrammarEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]string{g.Headword, g.POS, g.Grammar})
}

func (g *GrammarEntry) UnmarshalJSON(data []byte) error {
	var triple []string
	if err := json.Unmarshal(data, &triple); err != nil {
		return fmt.Errorf("grammar entry must be a list: %w", err)
	}
	if len(triple) != 3 {
		return fmt.Errorf("grammar entry needs 3 values, got %d", len(triple))
	}
	g.Headword, g.POS, g.Grammar = triple[0], triple[1], triple[2]
	return nil
}

// EPDEntry is one English-to-Pāli index line.
type EPDEntry struct {
	Headword string
	POS      string
	Meaning  string
}

func (e EPDEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]string{e.Headword, e.POS, e.Meaning})
}

func (e *EPDEntry) UnmarshalJSON(data []byte) error {
	var triple []string
	if err := json.Unmarshal(data, &triple); err != nil {
		return fmt.Errorf("epd entry must be a list: %w", err)
	}
	if len(triple) != 3 {
		return fmt.Errorf("epd entry needs 3 values, got %d", len(triple))
	}
	e.Headword, e.POS, e.Meaning = triple[0], triple[1], triple[2]
	return nil
}

// Abbreviation is the gloss attached to an abbreviation key.
type Abbreviation struct {
	Meaning     string `json:"meaning"`
	Pali        string `json:"pāli"`
	Example     string `json:"example"`
	Explanation string `json:"explanation"`
}

// IsZero reports whether the abbreviation carries no text.
func (a Abbreviation) IsZero() bool {
	return a == Abbreviation{}
}
