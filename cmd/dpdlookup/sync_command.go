package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"dpdlookup/internal/config"
	"dpdlookup/internal/lookup"
	"dpdlookup/internal/lookupdb"
	"dpdlookup/internal/mapping"
	"dpdlookup/internal/reconcile"
)

type syncReport struct {
	reconcile.Result
	Touched    int   `json:"touched"`
	DurationMS int64 `json:"duration_ms"`
}

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var (
		producer   string
		input      string
		formatName string
		dryRun     bool
		jsonOut    bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync one producer's mapping file into the lookup table",
		Long: `Sync makes the producer's column match the mapping file exactly.

Keys in the file get their payload, keys no longer in the file lose it, and
records left with no producer data are deleted. Other producers' columns are
never written. Use --input - to read the mapping from stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			field, err := lookup.ParseField(producer)
			if err != nil {
				return err
			}

			m, err := readMapping(cmd, input, formatName, field)
			if err != nil {
				return err
			}

			return ctx.withStore(func(cfg *config.Config, store *lookupdb.Store) error {
				syncer := reconcile.NewSyncer(store, cfg, ctx.log())
				if cmd.Flags().Changed("dry-run") {
					syncer.DryRun = dryRun
				}
				res, err := syncer.Sync(cmd.Context(), m)
				if err != nil {
					return err
				}
				report := syncReport{Result: res, Touched: res.Touched(), DurationMS: res.Duration.Milliseconds()}
				if jsonOut {
					return writeJSON(cmd, report)
				}
				printSyncReport(cmd, report)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&producer, "producer", "p", "", "Producer field to sync (e.g. deconstructor, variant)")
	cmd.Flags().StringVarP(&input, "input", "i", "", "Mapping file (.json, .yaml, .yml) or - for stdin")
	cmd.Flags().StringVar(&formatName, "format", "", "Mapping format override (json or yaml)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Classify and report without committing")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Write the result as JSON")
	_ = cmd.MarkFlagRequired("producer")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func readMapping(cmd *cobra.Command, input, formatName string, field lookup.Field) (lookup.Mapping, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return lookup.Mapping{}, errors.New("--input is required")
	}

	if input != "-" && formatName == "" {
		return mapping.Load(input, field)
	}

	format := mapping.FormatJSON
	if formatName != "" {
		parsed, err := mapping.ParseFormat(formatName)
		if err != nil {
			return lookup.Mapping{}, err
		}
		format = parsed
	}

	if input == "-" {
		return mapping.Read(cmd.InOrStdin(), format, field)
	}
	file, err := os.Open(input)
	if err != nil {
		return lookup.Mapping{}, fmt.Errorf("open mapping: %w", err)
	}
	defer file.Close()
	return mapping.Read(file, format, field)
}

func printSyncReport(cmd *cobra.Command, report syncReport) {
	out := cmd.OutOrStdout()
	color := shouldColorize(out)

	verb := "Synced"
	tone := ansiGreen
	if report.DryRun {
		verb = "Dry run for"
		tone = ansiYellow
	}
	summary := fmt.Sprintf("%s %s: %d touched, %d added, %d deleted", verb, report.Field, report.Touched, report.Added, report.Deleted)
	fmt.Fprintln(out, colorize(summary, tone, color))

	rows := [][]string{
		{"added", strconv.Itoa(report.Added)},
		{"  created", strconv.Itoa(report.Created)},
		{"updated", strconv.Itoa(report.Updated)},
		{"cleared", strconv.Itoa(report.Cleared)},
		{"deleted", strconv.Itoa(report.Deleted)},
		{"unchanged", strconv.Itoa(report.Unchanged)},
	}
	fmt.Fprintln(out, renderTable([]string{"Change", "Records"}, rows, []columnAlignment{alignLeft, alignRight}, color))
	fmt.Fprintf(out, "sync %s in %s\n", report.SyncID, report.Duration.Round(time.Millisecond))
}
