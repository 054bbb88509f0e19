package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"dpdlookup/internal/lookup"
	"dpdlookup/internal/reconcile"
)

type producerStatus struct {
	Field    lookup.Field `json:"field"`
	Syncing  bool         `json:"syncing"`
	LockFile string       `json:"lock_file"`
}

func newProducersCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "producers",
		Short: "List producer fields and whether a sync is running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := make([]producerStatus, 0, len(lookup.AllFields()))
			for _, field := range lookup.AllFields() {
				status := producerStatus{Field: field, LockFile: reconcile.LockPath(cfg.Paths.LockDir, field)}
				lock, err := reconcile.AcquireProducerLock(cfg.Paths.LockDir, field)
				switch {
				case errors.Is(err, reconcile.ErrBusy):
					status.Syncing = true
				case err != nil:
					return err
				default:
					_ = lock.Release()
				}
				statuses = append(statuses, status)
			}

			if jsonOut {
				return writeJSON(cmd, statuses)
			}

			out := cmd.OutOrStdout()
			color := shouldColorize(out)
			rows := make([][]string, 0, len(statuses))
			for _, s := range statuses {
				state := "idle"
				if s.Syncing {
					state = colorize("syncing", ansiYellow, color)
				}
				rows = append(rows, []string{string(s.Field), state, s.LockFile})
			}
			fmt.Fprintln(out, renderTable([]string{"Producer", "State", "Lock"}, rows, nil, color))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Write producer status as JSON")
	return cmd
}
