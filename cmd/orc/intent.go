package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/orchestrated/intentgate/internal/capability"
	"github.com/orchestrated/intentgate/internal/catalog"
	"github.com/orchestrated/intentgate/internal/types"
)

var intentCmd = &cobra.Command{
	Use:   "intent",
	Short: "List, show, and transition intents",
}

var intentListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List every intent in the catalog",
	GroupID: "inspection",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, root, err := loadConfig()
		if err != nil {
			return err
		}
		paths := enginePathsFromConfig(cfg, root)

		intents := catalog.New(paths.CatalogFile).Load()

		if outputFormat(cfg) == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(intents)
		}

		if len(intents) == 0 {
			fmt.Println("No intents in the catalog.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATUS\tNAME")
		fmt.Fprintln(w, "--\t------\t----")
		for _, in := range intents {
			fmt.Fprintf(w, "%s\t%s\t%s\n", in.ID, in.Status, in.Name)
		}
		return w.Flush()
	},
}

var intentShowCmd = &cobra.Command{
	Use:     "show <intent-id>",
	Short:   "Show one intent's full declaration",
	GroupID: "inspection",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, root, err := loadConfig()
		if err != nil {
			return err
		}
		paths := enginePathsFromConfig(cfg, root)

		intent, ok := catalog.New(paths.CatalogFile).Get(args[0])
		if !ok {
			return fmt.Errorf("%w: %s", types.ErrIntentNotFound, args[0])
		}

		if outputFormat(cfg) == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(intent)
		}

		fmt.Printf("id:      %s\n", intent.ID)
		fmt.Printf("name:    %s\n", intent.Name)
		fmt.Printf("status:  %s\n", intent.Status)
		fmt.Printf("version: %d\n", intent.Version)
		fmt.Println("owned_scope:")
		for _, p := range intent.OwnedScope {
			fmt.Printf("  - %s\n", p)
		}
		if len(intent.Constraints) > 0 {
			fmt.Println("constraints:")
			for _, c := range intent.Constraints {
				fmt.Printf("  - %s\n", c)
			}
		}
		if len(intent.AcceptanceCriteria) > 0 {
			fmt.Println("acceptance_criteria:")
			for _, c := range intent.AcceptanceCriteria {
				fmt.Printf("  - %s\n", c)
			}
		}
		return nil
	},
}

var intentTransitionCmd = &cobra.Command{
	Use:     "transition <intent-id> <status>",
	Short:   "Move an intent to a new lifecycle status",
	Long:    "Valid statuses: PENDING, IN_PROGRESS, BLOCKED, COMPLETE, ARCHIVED.",
	GroupID: "lifecycle",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, _, err := enginePaths()
		if err != nil {
			return err
		}

		status := types.Status(args[1])
		if !types.ValidStatuses[status] {
			return fmt.Errorf("unknown status %q", args[1])
		}

		c := catalog.New(paths.CatalogFile)
		if err := c.TransitionIntent(args[0], status, capability.SystemClock{}.Now()); err != nil {
			return err
		}

		fmt.Printf("%s -> %s\n", args[0], status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(intentCmd)
	intentCmd.AddCommand(intentListCmd, intentShowCmd, intentTransitionCmd)
}
