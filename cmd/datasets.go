package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/apkt-tools/apkt-agent/internal/dataset"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List the report types the agent knows",
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg := dataset.NewRegistry()

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tCOLUMNS\tDESCRIPTION")
		for _, ds := range reg.All() {
			fmt.Fprintf(w, "%s\t%d\t%s\n", ds.Name(), len(ds.Columns()), ds.Description())
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(datasetsCmd)
}
