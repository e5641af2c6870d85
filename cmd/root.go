package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/apkt-tools/apkt-agent/internal/config"
	"github.com/apkt-tools/apkt-agent/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "apkt-agent",
	Short: "APKT SE004 report agent",
	Long:  "Logs into the PLN APKT portal, downloads SAIDI/SAIFI SE004 exports per unit, normalizes Indonesian-locale numerics into semicolon-delimited CSV, and uploads to Google Sheets.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func initRunLog() (*store.RunLog, error) {
	return store.Open(cfg.Store.Path)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
