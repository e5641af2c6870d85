package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/apkt-tools/apkt-agent/internal/config"
	"github.com/apkt-tools/apkt-agent/internal/se004"
	"github.com/apkt-tools/apkt-agent/internal/store"
)

const urlCheckTimeout = 10 * time.Second

// checkURL probes a portal URL without a session. Any HTTP response
// counts as reachable; only transport failures are reported, since
// the portal answers unauthenticated requests with redirects.
func checkURL(ctx context.Context, client *http.Client, rawURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return eris.Wrapf(err, "doctor: build request for %s", rawURL)
	}
	resp, err := client.Do(req)
	if err != nil {
		return eris.Wrapf(err, "doctor: reach %s", rawURL)
	}
	return resp.Body.Close()
}

var doctorOffline bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, environment, and portal reachability",
	Long:  "Verifies credentials, workspace, run log, and Sheets settings, then probes the configured portal URLs without logging in.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		failed := false
		check := func(name string, err error) {
			if err != nil {
				failed = true
				fmt.Fprintf(os.Stdout, "FAIL  %s: %v\n", name, err)
				return
			}
			fmt.Fprintf(os.Stdout, "ok    %s\n", name)
		}

		check("credentials file", func() error {
			_, err := config.LoadCredentials(cfg.APKT.CredentialsFile)
			return err
		}())

		check("workspace root", os.MkdirAll(cfg.Workspace.Root, 0o755))

		check("run log", func() error {
			runLog, err := store.Open(cfg.Store.Path)
			if err != nil {
				return err
			}
			return runLog.Close()
		}())

		check("unit list", func() error {
			for _, code := range cfg.APKT.Units {
				if _, ok := se004.UnitName(code); !ok {
					return fmt.Errorf("unknown unit code %q", code)
				}
			}
			return nil
		}())

		if cfg.Sheets.SpreadsheetID == "" {
			fmt.Fprintln(os.Stdout, "warn  sheets.spreadsheet_id not set; upload disabled")
		} else {
			check("sheets credentials", func() error {
				_, err := os.Stat(cfg.Sheets.CredentialsPath)
				return err
			}())
		}

		if doctorOffline {
			fmt.Fprintln(os.Stdout, "warn  skipping portal reachability (--offline)")
		} else {
			client := &http.Client{Timeout: urlCheckTimeout}
			for _, u := range []string{cfg.APKT.LoginURL, cfg.APKT.IAMLoginURL, cfg.APKT.APKTSSURL} {
				if u == "" {
					continue
				}
				check(fmt.Sprintf("reach %s", u), checkURL(cmd.Context(), client, u))
			}
		}

		if failed {
			return fmt.Errorf("doctor found problems")
		}
		return nil
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorOffline, "offline", false, "skip portal reachability checks")
	rootCmd.AddCommand(doctorCmd)
}
