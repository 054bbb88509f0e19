package lookupdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"dpdlookup/internal/lookup"
)

// Stats summarizes lookup table occupancy.
type Stats struct {
	Records     int
	Fields      map[lookup.Field]int
	LastUpdated time.Time
}

// Stats counts records and the number of records each producer field claims.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	ctx = ensureContext(ctx)

	sums := make([]string, 0, len(fieldColumns))
	for _, col := range fieldColumns {
		sums = append(sums, "COALESCE(SUM(CASE WHEN "+col+" != '' THEN 1 ELSE 0 END), 0)")
	}
	query := "SELECT COUNT(1), " + strings.Join(sums, ", ") + ", MAX(updated_at) FROM lookup"

	var (
		total      int
		counts     = make([]int, len(fieldColumns))
		updatedRaw sql.NullString
	)
	dest := make([]any, 0, len(counts)+2)
	dest = append(dest, &total)
	for i := range counts {
		dest = append(dest, &counts[i])
	}
	dest = append(dest, &updatedRaw)

	if err := s.db.QueryRowContext(ctx, query).Scan(dest...); err != nil {
		return Stats{}, fmt.Errorf("lookup stats: %w", err)
	}

	stats := Stats{Records: total, Fields: make(map[lookup.Field]int, len(counts)), LastUpdated: parseTime(updatedRaw)}
	for i, f := range lookup.AllFields() {
		stats.Fields[f] = counts[i]
	}
	return stats, nil
}
