package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/orchestrated/intentgate/internal/capability"
	"github.com/orchestrated/intentgate/internal/session"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect and maintain the cooperative session table",
}

var sessionHeartbeatIntent string

var sessionHeartbeatCmd = &cobra.Command{
	Use:     "heartbeat",
	Short:   "Record this session as alive, optionally against an intent",
	GroupID: "lifecycle",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, _, err := enginePaths()
		if err != nil {
			return err
		}

		session.New(paths.BrainFile).Heartbeat(sessionFlag, sessionHeartbeatIntent, capability.SystemClock{}.Now())
		fmt.Printf("heartbeat recorded for session %s\n", sessionFlag)
		return nil
	},
}

var sessionListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List every session in the cooperative table",
	GroupID: "inspection",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, root, err := loadConfig()
		if err != nil {
			return err
		}
		paths := enginePathsFromConfig(cfg, root)

		infos := session.New(paths.BrainFile).ListSessions()

		if outputFormat(cfg) == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(infos)
		}

		if len(infos) == 0 {
			fmt.Println("No active sessions.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SESSION\tINTENT\tLAST HEARTBEAT")
		fmt.Fprintln(w, "-------\t------\t--------------")
		for _, info := range infos {
			intent := info.IntentID
			if intent == "" {
				intent = "none"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", info.SessionID, intent, info.Timestamp.Format("2006-01-02T15:04:05Z"))
		}
		return w.Flush()
	},
}

var sessionCleanupCmd = &cobra.Command{
	Use:     "cleanup",
	Short:   "Remove stale session rows from the cooperative table",
	GroupID: "lifecycle",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, _, err := enginePaths()
		if err != nil {
			return err
		}

		removed := session.New(paths.BrainFile).CleanupStaleSessions(capability.SystemClock{}.Now())
		fmt.Printf("removed %d stale session(s)\n", removed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionHeartbeatCmd, sessionListCmd, sessionCleanupCmd)
	sessionHeartbeatCmd.Flags().StringVar(&sessionHeartbeatIntent, "intent", "", "intent id this session currently has selected")
}
