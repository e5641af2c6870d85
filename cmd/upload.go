package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/apkt-tools/apkt-agent/internal/sink"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <csv>",
	Short: "Upload a parsed CSV to Google Sheets",
	Long:  "Pushes the CSV into the configured spreadsheet. Mode 'replace' clears the worksheet first; 'append' adds data rows below the existing ones.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if cfg.Sheets.SpreadsheetID == "" {
			return eris.New("upload: sheets.spreadsheet_id is not configured")
		}
		if cfg.Sheets.CredentialsPath == "" {
			return eris.New("upload: sheets.credentials_path is not configured")
		}

		modeFlag, _ := cmd.Flags().GetString("mode")
		mode, err := sink.ParseMode(modeFlag)
		if err != nil {
			return err
		}

		worksheet, _ := cmd.Flags().GetString("worksheet")
		if worksheet == "" {
			worksheet = cfg.Sheets.Worksheet
		}

		up, err := sink.NewUploader(ctx, cfg.Sheets.CredentialsPath, cfg.Sheets.SpreadsheetID)
		if err != nil {
			return err
		}

		result, err := up.UploadCSV(ctx, args[0], worksheet, mode)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "Uploaded %d rows to %q (%s)\n", result.Rows, result.Worksheet, mode)
		return nil
	},
}

func init() {
	uploadCmd.Flags().String("mode", "replace", "upload mode: replace or append")
	uploadCmd.Flags().String("worksheet", "", "target worksheet (default from config)")
	rootCmd.AddCommand(uploadCmd)
}
