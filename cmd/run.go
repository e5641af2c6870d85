package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/apkt-tools/apkt-agent/internal/dataset"
	"github.com/apkt-tools/apkt-agent/internal/model"
	"github.com/apkt-tools/apkt-agent/internal/sink"
)

var runCmd = &cobra.Command{
	Use:   "run <dataset> <period>",
	Short: "Fetch, parse, and emit one dataset for a period",
	Long:  "Downloads every unit's workbook for the given dataset and YYYYMM period, parses them, and writes the combined CSV into a fresh run directory. Prompts for an OTP code during login.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		runLog, err := initRunLog()
		if err != nil {
			return err
		}
		defer runLog.Close() //nolint:errcheck

		units, _ := cmd.Flags().GetStringSlice("units")

		runner := dataset.NewRunner(cfg, dataset.NewRegistry(), runLog)
		report, err := runner.Run(ctx, dataset.RunOpts{
			Dataset:  args[0],
			PeriodYM: args[1],
			Units:    units,
		})
		if err != nil {
			return err
		}

		printReport(os.Stdout, report)
		if report.Status == model.RunFailed {
			return fmt.Errorf("run %s failed", report.RunID)
		}

		if doUpload, _ := cmd.Flags().GetBool("upload"); doUpload {
			up, err := sink.NewUploader(ctx, cfg.Sheets.CredentialsPath, cfg.Sheets.SpreadsheetID)
			if err != nil {
				return err
			}
			result, err := up.UploadCSV(ctx, report.OutputCSV, cfg.Sheets.Worksheet, sink.ModeReplace)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Uploaded %d rows to %q\n", result.Rows, result.Worksheet)
		}
		return nil
	},
}

func printReport(w *os.File, report *model.RunReport) {
	fmt.Fprintf(w, "Run:      %s\n", report.RunID)
	fmt.Fprintf(w, "Status:   %s\n", report.Status)
	fmt.Fprintf(w, "Rows:     %d\n", report.Rows)
	fmt.Fprintf(w, "Output:   %s\n", report.OutputCSV)
	if len(report.Warnings) > 0 {
		fmt.Fprintf(w, "Warnings: %d\n", len(report.Warnings))
	}
	for _, f := range report.Failures {
		fmt.Fprintf(w, "FAILED    %s (%s): %s\n", f.File, f.Unit, f.Error)
	}
}

func init() {
	runCmd.Flags().StringSlice("units", nil, "restrict to specific unit codes (e.g. DIST_LAMPUNG)")
	runCmd.Flags().Bool("upload", false, "upload the combined CSV to Google Sheets after parsing")
	rootCmd.AddCommand(runCmd)
}
