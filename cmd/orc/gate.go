package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/orchestrated/intentgate/internal/engine"
)

// gateCmd groups the subprocess entry points a non-Go host shells out
// to when it cannot link the engine directly.
var gateCmd = &cobra.Command{
	Use:   "gate",
	Short: "Run one hook decision as a subprocess",
}

var (
	gateToolName  string
	gateFilePath  string
	gateIntentID  string
	gateParamsRaw string
)

var gatePreToolUseCmd = &cobra.Command{
	Use:     "pre-tool-use",
	Short:   "Evaluate one PreToolUse gate decision and print the result as JSON",
	GroupID: "gate",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, root, err := loadConfig()
		if err != nil {
			return err
		}

		params, err := decodeParams(gateParamsRaw)
		if err != nil {
			return err
		}

		registry := registryFor(cfg)
		eng := registry.Get(root, sessionFlag)

		result := eng.PreToolUse(engine.PreToolUseRequest{
			ToolName: gateToolName,
			FilePath: gateFilePath,
			IntentID: gateIntentID,
			Params:   params,
		})

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
		if !result.Allowed {
			os.Exit(2)
		}
		return nil
	},
}

var (
	gatePostSuccess bool
	gatePostError   string
	gatePostModel   string
	gatePostStart   int
	gatePostEnd     int
	gatePostHash    string
)

var gatePostToolUseCmd = &cobra.Command{
	Use:     "post-tool-use",
	Short:   "Record one PostToolUse ledger entry; exits 0 unless config or params fail to load",
	GroupID: "gate",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, root, err := loadConfig()
		if err != nil {
			return err
		}

		params, err := decodeParams(gateParamsRaw)
		if err != nil {
			return err
		}

		registry := registryFor(cfg)
		eng := registry.Get(root, sessionFlag)

		var preHash *string
		if gatePostHash != "" {
			preHash = &gatePostHash
		}

		eng.PostToolUse(context.Background(), engine.PostToolUseRequest{
			ToolName:        gateToolName,
			FilePath:        gateFilePath,
			IntentID:        gateIntentID,
			Params:          params,
			PreHash:         preHash,
			Success:         gatePostSuccess,
			Error:           gatePostError,
			ModelIdentifier: gatePostModel,
			StartLine:       gatePostStart,
			EndLine:         gatePostEnd,
		})
		return nil
	},
}

func decodeParams(raw string) (map[string]string, error) {
	if raw == "" {
		return nil, nil
	}
	var params map[string]string
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return nil, err
	}
	return params, nil
}

func init() {
	rootCmd.AddCommand(gateCmd)
	gateCmd.AddCommand(gatePreToolUseCmd, gatePostToolUseCmd)

	for _, c := range []*cobra.Command{gatePreToolUseCmd, gatePostToolUseCmd} {
		c.Flags().StringVar(&gateToolName, "tool", "", "tool name")
		c.Flags().StringVar(&gateFilePath, "path", "", "file path the tool acted on")
		c.Flags().StringVar(&gateIntentID, "intent", "", "intent id")
		c.Flags().StringVar(&gateParamsRaw, "params", "", "tool params as a JSON object")
		_ = c.MarkFlagRequired("tool") //nolint:errcheck
	}

	gatePostToolUseCmd.Flags().BoolVar(&gatePostSuccess, "success", true, "whether the tool call succeeded")
	gatePostToolUseCmd.Flags().StringVar(&gatePostError, "error", "", "error text if the tool call failed")
	gatePostToolUseCmd.Flags().StringVar(&gatePostModel, "model", "", "model identifier that issued the call")
	gatePostToolUseCmd.Flags().IntVar(&gatePostStart, "start-line", 0, "start line of the edit, if applicable")
	gatePostToolUseCmd.Flags().IntVar(&gatePostEnd, "end-line", 0, "end line of the edit, if applicable")
	gatePostToolUseCmd.Flags().StringVar(&gatePostHash, "pre-hash", "", "pre-hash recorded by the matching pre-tool-use call")
}
