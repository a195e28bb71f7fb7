// Command orc is the host-facing CLI for the intent gate: catalog
// inspection, lifecycle transitions, ledger queries, session
// coordination, and the two thin subprocess entry points a non-Go host
// shells out to for the pre/post tool-use hooks.
package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/orchestrated/intentgate/internal/config"
	"github.com/orchestrated/intentgate/internal/engine"
	"github.com/orchestrated/intentgate/internal/hitl"
	"github.com/orchestrated/intentgate/internal/logging"
)

var (
	workspaceFlag string
	orchDirFlag   string
	outputFlag    string
	verboseFlag   string
	sessionFlag   string
	cfgFileFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "orc",
	Short: "Intent gate: governance middleware for agent tool calls",
	Long: `orc inspects and operates the intent catalog, trace ledger, spatial
map, and session table that govern which tool calls an assistant may
make against a workspace.

Inspection:
  catalog validate     Validate the intent catalog
  intent list/show     List or show intents
  ledger trace         Show recent ledger entries for an intent
  session list         Show the cooperative session table

Lifecycle:
  intent transition          Move an intent to a new status
  select-active-intent       Select an intent for this session
  verify-acceptance-criteria Complete an intent
  session heartbeat/cleanup  Maintain the session table

Gate (subprocess hook entry points):
  gate pre-tool-use     Evaluate a tool call before it runs
  gate post-tool-use     Log a tool call after it ran`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.SetVerbose(verboseFlag == "true" || verboseFlag == "1" || verboseFlag == "debug")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&workspaceFlag, "workspace", "C", "", "workspace root (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&orchDirFlag, "orchestration-dir", "", "orchestration directory, relative to workspace (default: .orchestration)")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "", "output format: table or json (default: from config)")
	rootCmd.PersistentFlags().StringVarP(&verboseFlag, "verbose", "v", "", "enable verbose diagnostic logging")
	rootCmd.PersistentFlags().StringVar(&sessionFlag, "session", "cli", "session id to act as")
	rootCmd.PersistentFlags().StringVar(&cfgFileFlag, "config", "", "config file (default: .orchestration/config.yaml)")

	rootCmd.AddGroup(
		&cobra.Group{ID: "inspection", Title: "Inspection:"},
		&cobra.Group{ID: "lifecycle", Title: "Lifecycle:"},
		&cobra.Group{ID: "gate", Title: "Gate:"},
	)
}

// Execute runs the root command and exits 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// workspaceRoot resolves the workspace root: the --workspace flag if
// given, else the current working directory.
func workspaceRoot() (string, error) {
	if workspaceFlag != "" {
		abs, err := filepath.Abs(workspaceFlag)
		if err != nil {
			return "", err
		}
		return abs, nil
	}
	return os.Getwd()
}

// loadConfig resolves the effective config for this invocation,
// folding in whichever persistent flags were explicitly set.
func loadConfig() (*config.Config, string, error) {
	root, err := workspaceRoot()
	if err != nil {
		return nil, "", err
	}

	if cfgFileFlag != "" {
		os.Setenv("INTENTGATE_CONFIG", cfgFileFlag)
	}

	overrides := &config.Config{}
	if outputFlag != "" {
		overrides.Output = outputFlag
	}
	if orchDirFlag != "" {
		overrides.OrchestrationDir = orchDirFlag
	}

	cfg, err := config.Load(root, overrides)
	if err != nil {
		return nil, "", err
	}
	return cfg, root, nil
}

// enginePaths resolves the engine.Paths for this invocation.
func enginePaths() (engine.Paths, string, error) {
	cfg, root, err := loadConfig()
	if err != nil {
		return engine.Paths{}, "", err
	}
	return enginePathsFromConfig(cfg, root), root, nil
}

// enginePathsFromConfig derives engine.Paths from a config already
// loaded by loadConfig, avoiding a second load in callers that also
// need the config for other fields such as Output.
func enginePathsFromConfig(cfg *config.Config, root string) engine.Paths {
	return engine.DefaultPaths(root, cfg.OrchestrationDir)
}

// registryFor builds a Registry honoring cfg's HITL.Enabled setting; a
// disabled gate auto-approves every destructive call instead of
// prompting, for unattended or non-interactive invocations.
func registryFor(cfg *config.Config) *engine.Registry {
	gate := hitl.NewCLIGate()
	gate.SetEnabled(cfg.HITL.Enabled)
	return engine.NewRegistry(cfg.OrchestrationDir, nil, nil, nil, gate)
}

func outputFormat(cfg *config.Config) string {
	if outputFlag != "" {
		return outputFlag
	}
	return cfg.Output
}
