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

type showPayload struct {
	Key       string               `json:"key"`
	Fields    map[lookup.Field]any `json:"fields"`
	CreatedAt string               `json:"created_at,omitempty"`
	UpdatedAt string               `json:"updated_at,omitempty"`
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <key>",
		Short: "Show the producer data stored for one lookup key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := lookup.NormalizeKey(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(_ *config.Config, store *lookupdb.Store) error {
				rec, err := store.Get(cmd.Context(), key)
				if err != nil {
					return err
				}
				if rec == nil {
					return fmt.Errorf("no lookup record for %q", key)
				}
				if jsonOut {
					payload, err := decodeRecord(rec)
					if err != nil {
						return err
					}
					return writeJSON(cmd, payload)
				}
				printRecord(cmd, rec)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Write decoded payloads as JSON")
	return cmd
}

func decodeRecord(rec *lookup.Record) (showPayload, error) {
	payload := showPayload{Key: rec.Key, Fields: map[lookup.Field]any{}}
	for _, field := range rec.Fields() {
		codec, err := lookup.CodecFor(field)
		if err != nil {
			return showPayload{}, err
		}
		value, err := codec.UnpackAny(rec.Value(field))
		if err != nil {
			return showPayload{}, lookup.WithKey(err, field, rec.Key)
		}
		payload.Fields[field] = value
	}
	if !rec.CreatedAt.IsZero() {
		payload.CreatedAt = rec.CreatedAt.Format(time.RFC3339)
	}
	if !rec.UpdatedAt.IsZero() {
		payload.UpdatedAt = rec.UpdatedAt.Format(time.RFC3339)
	}
	return payload, nil
}

func printRecord(cmd *cobra.Command, rec *lookup.Record) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Key: %s\n", rec.Key)

	rows := make([][]string, 0, len(lookup.AllFields()))
	for _, field := range rec.Fields() {
		rows = append(rows, []string{string(field), strings.TrimSpace(rec.Value(field))})
	}
	fmt.Fprintln(out, renderTable([]string{"Field", "Packed"}, rows, nil, shouldColorize(out)))
	if !rec.UpdatedAt.IsZero() {
		fmt.Fprintf(out, "Updated: %s\n", rec.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	}
}
