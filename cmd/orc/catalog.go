package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/orchestrated/intentgate/internal/catalog"
	"github.com/orchestrated/intentgate/internal/config"
	"github.com/orchestrated/intentgate/internal/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the intent catalog",
}

type catalogValidateResult struct {
	Valid       bool     `json:"valid"`
	Errors      []string `json:"errors,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
	IntentCount int      `json:"intent_count"`
}

var catalogValidateCmd = &cobra.Command{
	Use:     "validate",
	Short:   "Validate the intent catalog and report every issue found",
	GroupID: "inspection",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, root, err := loadConfig()
		if err != nil {
			return err
		}
		paths := enginePathsFromConfig(cfg, root)

		result := catalogValidateResult{Valid: true}

		data, err := os.ReadFile(paths.CatalogFile)
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("read catalog: %v", err))
			return outputCatalogValidateResult(cfg, result)
		}

		var raw struct {
			ActiveIntents []yaml.Node `yaml:"active_intents"`
			Intents       []yaml.Node `yaml:"intents"`
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("parse catalog: %v", err))
			return outputCatalogValidateResult(cfg, result)
		}

		nodes := raw.ActiveIntents
		if len(nodes) == 0 {
			nodes = raw.Intents
		}

		seen := map[string]bool{}
		for i, node := range nodes {
			var intent types.Intent
			if err := node.Decode(&intent); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("entry %d: malformed: %v", i, err))
				continue
			}

			for _, v := range catalog.Validate(intent, seen) {
				line := fmt.Sprintf("%s (%s): %s", intent.ID, v.Field, v.Message)
				if v.Severity == catalog.SeverityError {
					result.Errors = append(result.Errors, line)
				} else {
					result.Warnings = append(result.Warnings, line)
				}
			}
			seen[intent.ID] = true
			result.IntentCount++
		}

		result.Valid = len(result.Errors) == 0
		return outputCatalogValidateResult(cfg, result)
	},
}

func outputCatalogValidateResult(cfg *config.Config, result catalogValidateResult) error {
	if outputFormat(cfg) == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		if result.Valid {
			fmt.Printf("VALID: %d intents\n", result.IntentCount)
		} else {
			fmt.Printf("INVALID: %d errors\n", len(result.Errors))
		}
		for _, e := range result.Errors {
			fmt.Printf("  ERROR: %s\n", e)
		}
		for _, w := range result.Warnings {
			fmt.Printf("  WARN: %s\n", w)
		}
	}

	if !result.Valid {
		return fmt.Errorf("catalog validation failed")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
}
