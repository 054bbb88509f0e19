package reconcile

import "sort"

// Classification partitions the union of existing and incoming keys. Each
// list is sorted and no key appears in more than one list.
type Classification struct {
	Add       []string
	Update    []string
	Unchanged []string
	Drop      []string
}

// Counts holds the size of each classification list.
type Counts struct {
	Add       int `json:"add"`
	Update    int `json:"update"`
	Unchanged int `json:"unchanged"`
	Drop      int `json:"drop"`
}

// Classify compares the payloads a producer currently owns with the payloads
// it now emits. existing maps key to the stored non-empty payload; incoming
// maps key to the new packed payload.
func Classify(existing, incoming map[string]string) Classification {
	var c Classification
	for key, payload := range incoming {
		stored, ok := existing[key]
		switch {
		case !ok:
			c.Add = append(c.Add, key)
		case stored != payload:
			c.Update = append(c.Update, key)
		default:
			c.Unchanged = append(c.Unchanged, key)
		}
	}
	for key := range existing {
		if _, ok := incoming[key]; !ok {
			c.Drop = append(c.Drop, key)
		}
	}
	sort.Strings(c.Add)
	sort.Strings(c.Update)
	sort.Strings(c.Unchanged)
	sort.Strings(c.Drop)
	return c
}

func (c Classification) Counts() Counts {
	return Counts{
		Add:       len(c.Add),
		Update:    len(c.Update),
		Unchanged: len(c.Unchanged),
		Drop:      len(c.Drop),
	}
}

// HasChanges reports whether applying c would write anything.
func (c Classification) HasChanges() bool {
	return len(c.Add)+len(c.Update)+len(c.Drop) > 0
}
