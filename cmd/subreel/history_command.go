package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"subreel/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent ingest runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return fmt.Errorf("run history is disabled (history.enabled = false)")
			}
			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No ingest runs recorded")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, historyRow(run))
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Status", "Started", "Duration", "Videos", "Failure"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of runs to show (0 for all)")
	return cmd
}

func historyRow(run history.Run) []string {
	id := run.ID
	if len(id) > 8 {
		id = id[:8]
	}
	duration := "-"
	if d := run.Duration(); d > 0 {
		duration = d.Round(time.Millisecond).String()
	}
	videos := "-"
	if run.Status != history.StatusRunning {
		videos = fmt.Sprintf("%d/%d", run.Processed, run.Total)
	}
	failure := run.ErrorKind
	if run.FailedFile != "" {
		failure = fmt.Sprintf("%s (%s)", run.ErrorKind, run.FailedFile)
	}
	return []string{
		id,
		string(run.Status),
		run.StartedAt.Local().Format("2006-01-02 15:04:05"),
		duration,
		videos,
		failure,
	}
}
