package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"dpdlookup/internal/config"
	"dpdlookup/internal/lookup"
	"dpdlookup/internal/lookupdb"
)

type statsPayload struct {
	Database    string         `json:"database"`
	Records     int            `json:"records"`
	Fields      map[string]int `json:"fields"`
	LastUpdated string         `json:"last_updated,omitempty"`
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show record counts per producer field",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *lookupdb.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}

				payload := statsPayload{
					Database: store.Path(),
					Records:  stats.Records,
					Fields:   make(map[string]int, len(stats.Fields)),
				}
				for field, n := range stats.Fields {
					payload.Fields[string(field)] = n
				}
				if !stats.LastUpdated.IsZero() {
					payload.LastUpdated = stats.LastUpdated.Format(time.RFC3339)
				}
				if jsonOut {
					return writeJSON(cmd, payload)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Database: %s\n", payload.Database)
				rows := make([][]string, 0, len(stats.Fields)+1)
				for _, field := range lookup.AllFields() {
					rows = append(rows, []string{string(field), strconv.Itoa(stats.Fields[field])})
				}
				rows = append(rows, []string{"total records", strconv.Itoa(stats.Records)})
				fmt.Fprintln(out, renderTable([]string{"Field", "Records"}, rows, []columnAlignment{alignLeft, alignRight}, shouldColorize(out)))
				if payload.LastUpdated != "" {
					fmt.Fprintf(out, "Last updated: %s\n", stats.LastUpdated.Local().Format("2006-01-02 15:04:05"))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Write stats as JSON")
	return cmd
}
