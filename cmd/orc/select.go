package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var selectActiveIntentCmd = &cobra.Command{
	Use:     "select-active-intent <intent-id>",
	Short:   "Select an intent as this session's active intent and print its context block",
	GroupID: "lifecycle",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, root, err := loadConfig()
		if err != nil {
			return err
		}

		registry := registryFor(cfg)
		eng := registry.Get(root, sessionFlag)

		result := eng.SelectActiveIntent(args[0])
		if result.Err != nil {
			return result.Err
		}

		fmt.Println(result.ContextBlock)
		return nil
	},
}

var verifyAcceptanceCriteriaCmd = &cobra.Command{
	Use:     "verify-acceptance-criteria <intent-id>",
	Short:   "Mark an in-progress intent complete",
	GroupID: "lifecycle",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, root, err := loadConfig()
		if err != nil {
			return err
		}

		registry := registryFor(cfg)
		eng := registry.Get(root, sessionFlag)

		if err := eng.VerifyAcceptanceCriteria(args[0]); err != nil {
			return err
		}

		fmt.Printf("%s complete\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(selectActiveIntentCmd, verifyAcceptanceCriteriaCmd)
}
