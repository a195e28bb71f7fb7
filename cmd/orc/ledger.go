package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/orchestrated/intentgate/internal/capability"
	"github.com/orchestrated/intentgate/internal/ledger"
)

var ledgerTraceLimit int

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Query the trace ledger",
}

var ledgerTraceCmd = &cobra.Command{
	Use:     "trace <intent-id>",
	Short:   "Show recent ledger entries recorded against an intent",
	GroupID: "inspection",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, root, err := loadConfig()
		if err != nil {
			return err
		}
		paths := enginePathsFromConfig(cfg, root)

		l := ledger.New(paths.LedgerFile, root, capability.GitProbe{})
		entries := l.GetRecentEntries(args[0], ledgerTraceLimit)

		if outputFormat(cfg) == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}

		if len(entries) == 0 {
			fmt.Printf("No ledger entries found for %s.\n", args[0])
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIMESTAMP\tFILE\tREVISION")
		fmt.Fprintln(w, "---------\t----\t--------")
		for _, e := range entries {
			path := "-"
			if len(e.Files) > 0 {
				path = e.Files[0].RelativePath
			}
			rev := "-"
			if e.VCS.RevisionID != nil {
				rev = *e.VCS.RevisionID
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.Timestamp.Format("2006-01-02T15:04:05Z"), path, rev)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(ledgerCmd)
	ledgerCmd.AddCommand(ledgerTraceCmd)
	ledgerTraceCmd.Flags().IntVar(&ledgerTraceLimit, "limit", 20, "maximum number of entries to show")
}
