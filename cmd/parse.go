package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/apkt-tools/apkt-agent/internal/dataset"
)

var parseCmd = &cobra.Command{
	Use:   "parse <dataset> <dir>",
	Short: "Parse already-downloaded workbooks into CSV",
	Long:  "Parses every .xlsx in the directory with the dataset's parser and writes one combined CSV. No portal access.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = filepath.Join(args[1], args[0]+".csv")
		}

		runLog, err := initRunLog()
		if err != nil {
			return err
		}
		defer runLog.Close() //nolint:errcheck

		runner := dataset.NewRunner(cfg, dataset.NewRegistry(), runLog)
		report, err := runner.ParseDir(ctx, args[0], args[1], out)
		if err != nil {
			return err
		}

		printReport(os.Stdout, report)
		return nil
	},
}

func init() {
	parseCmd.Flags().String("out", "", "output CSV path (default <dir>/<dataset>.csv)")
	rootCmd.AddCommand(parseCmd)
}
