package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/apkt-tools/apkt-agent/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		runLog, err := initRunLog()
		if err != nil {
			return err
		}
		defer runLog.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := runLog.List(ctx, limit)
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Fprintln(os.Stderr, "No runs recorded.")
			return nil
		}

		formatRuns(os.Stdout, entries)
		return nil
	},
}

func formatRuns(w *os.File, entries []store.Entry) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tDATASET\tPERIOD\tSTATUS\tROWS\tWARN\tSTARTED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			e.RunID, e.Dataset, e.PeriodYM, e.Status, e.Rows, e.Warnings,
			e.StartedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = tw.Flush()
}

func init() {
	runsCmd.Flags().Int("limit", 20, "max number of runs to display")
	rootCmd.AddCommand(runsCmd)
}
