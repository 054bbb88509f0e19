package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"dpdlookup/internal/config"
	"dpdlookup/internal/lookup"
	"dpdlookup/internal/lookupdb"
)

const defaultListLimit = 50

type listEntry struct {
	Key       string         `json:"key"`
	Fields    []lookup.Field `json:"fields"`
	UpdatedAt string         `json:"updated_at,omitempty"`
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var (
		after   string
		limit   int
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List lookup keys and the producers holding data for them",
		Long: `List prints lookup records in key order, one page at a time.

Pass the last key of a page to --after to fetch the next one. A limit of 0
lists every remaining record.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("--limit must be >= 0, got %d", limit)
			}
			start := ""
			if strings.TrimSpace(after) != "" {
				key, err := lookup.NormalizeKey(after)
				if err != nil {
					return err
				}
				start = key
			}

			return ctx.withStore(func(_ *config.Config, store *lookupdb.Store) error {
				recs, err := store.List(cmd.Context(), start, limit)
				if err != nil {
					return err
				}
				entries := make([]listEntry, 0, len(recs))
				for _, rec := range recs {
					entry := listEntry{Key: rec.Key, Fields: rec.Fields()}
					if !rec.UpdatedAt.IsZero() {
						entry.UpdatedAt = rec.UpdatedAt.Format(time.RFC3339)
					}
					entries = append(entries, entry)
				}

				if jsonOut {
					return writeJSON(cmd, entries)
				}
				printList(cmd, entries, limit)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&after, "after", "", "Start after this lookup key")
	cmd.Flags().IntVarP(&limit, "limit", "n", defaultListLimit, "Maximum records to print (0 for all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Write records as JSON")
	return cmd
}

func printList(cmd *cobra.Command, entries []listEntry, limit int) {
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No lookup records")
		return
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		names := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			names[i] = string(f)
		}
		rows = append(rows, []string{e.Key, strings.Join(names, ", "), e.UpdatedAt})
	}
	fmt.Fprintln(out, renderTable([]string{"Key", "Producers", "Updated"}, rows, nil, shouldColorize(out)))
	if limit > 0 && len(entries) == limit {
		fmt.Fprintf(out, "More records may follow: --after %q\n", entries[len(entries)-1].Key)
	}
}
