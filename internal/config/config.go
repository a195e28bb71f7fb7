// Package config provides configuration management for the intent gate.
// Configuration is loaded from (highest to lowest priority):
//  1. Command-line flags
//  2. Environment variables (INTENTGATE_*)
//  3. Project config (.orchestration/config.yaml under the workspace
//     root, or the file named by INTENTGATE_CONFIG)
//  4. Home config (~/.intentgate/config.yaml)
//  5. Defaults
package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all intent-gate configuration.
type Config struct {
	// Output controls the default CLI output format: json or table; the
	// CLI renders any other value as table.
	Output string `yaml:"output" json:"output"`

	// OrchestrationDir is the workspace-relative hidden directory holding
	// the catalog, ledger, spatial map, brain, and ignore file.
	OrchestrationDir string `yaml:"orchestration_dir" json:"orchestration_dir"`

	// Verbose enables verbose diagnostic logging.
	Verbose bool `yaml:"verbose" json:"verbose"`

	// Catalog settings.
	Catalog CatalogConfig `yaml:"catalog" json:"catalog"`

	// Ledger settings.
	Ledger LedgerConfig `yaml:"ledger" json:"ledger"`

	// Context settings.
	Context ContextConfig `yaml:"context" json:"context"`

	// Session settings.
	Session SessionConfig `yaml:"session" json:"session"`

	// HITL settings.
	HITL HITLConfig `yaml:"hitl" json:"hitl"`
}

// CatalogConfig holds catalog-loading settings.
type CatalogConfig struct {
	// CacheTTLSeconds is how long a loaded catalog is reused before the
	// loader re-reads the file from disk.
	CacheTTLSeconds int `yaml:"cache_ttl_seconds" json:"cache_ttl_seconds"`
}

// LedgerConfig holds append-only ledger settings.
type LedgerConfig struct {
	// RetryDelayMillis is the delay before the single retry on append
	// failure.
	RetryDelayMillis int `yaml:"retry_delay_millis" json:"retry_delay_millis"`

	// RecentEntriesLimit bounds getRecentEntries when the caller does not
	// specify one.
	RecentEntriesLimit int `yaml:"recent_entries_limit" json:"recent_entries_limit"`
}

// ContextConfig holds intent-activation context-builder settings.
type ContextConfig struct {
	// ByteBudget is the serialized-size ceiling for a built context.
	ByteBudget int `yaml:"byte_budget" json:"byte_budget"`

	// SpecExcerptBytes truncates each resolved related-spec excerpt.
	SpecExcerptBytes int `yaml:"spec_excerpt_bytes" json:"spec_excerpt_bytes"`
}

// SessionConfig holds cooperative session-coordination settings.
type SessionConfig struct {
	// StaleAfterSeconds is how old a heartbeat can be before
	// cleanupStaleSessions removes it.
	StaleAfterSeconds int `yaml:"stale_after_seconds" json:"stale_after_seconds"`
}

// HITLConfig holds human-in-the-loop gate settings.
type HITLConfig struct {
	// Enabled controls whether destructive operations require approval.
	// When false, the gate auto-approves everything.
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// Defaults, mirrored in §6 and §4 of the spec.
const (
	defaultOutput              = "table"
	defaultOrchestrationDir    = ".orchestration"
	defaultCatalogCacheTTL     = 5
	defaultLedgerRetryDelayMs  = 100
	defaultLedgerRecentLimit   = 20
	defaultContextByteBudget   = 16384
	defaultSpecExcerptBytes    = 2048
	defaultSessionStaleSeconds = 5 * 60
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Output:           defaultOutput,
		OrchestrationDir: defaultOrchestrationDir,
		Verbose:          false,
		Catalog: CatalogConfig{
			CacheTTLSeconds: defaultCatalogCacheTTL,
		},
		Ledger: LedgerConfig{
			RetryDelayMillis:   defaultLedgerRetryDelayMs,
			RecentEntriesLimit: defaultLedgerRecentLimit,
		},
		Context: ContextConfig{
			ByteBudget:       defaultContextByteBudget,
			SpecExcerptBytes: defaultSpecExcerptBytes,
		},
		Session: SessionConfig{
			StaleAfterSeconds: defaultSessionStaleSeconds,
		},
		HITL: HITLConfig{
			Enabled: true,
		},
	}
}

// Load loads configuration with proper precedence: flags > env > project
// > home > defaults. workspaceRoot is the directory Load treats as the
// project root for locating .orchestration/config.yaml.
func Load(workspaceRoot string, flagOverrides *Config) (*Config, error) {
	cfg := Default()

	if homeConfig, _ := loadFromPath(homeConfigPath()); homeConfig != nil {
		cfg = merge(cfg, homeConfig)
	}

	if projectConfig, _ := loadFromPath(projectConfigPath(workspaceRoot)); projectConfig != nil {
		cfg = merge(cfg, projectConfig)
	}

	cfg = applyEnv(cfg)

	if flagOverrides != nil {
		cfg = merge(cfg, flagOverrides)
	}

	return cfg, nil
}

// homeConfigPath returns the home config path.
func homeConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".intentgate", "config.yaml")
}

// projectConfigPath returns the project config path, honoring an
// explicit override via INTENTGATE_CONFIG.
func projectConfigPath(workspaceRoot string) string {
	if override := strings.TrimSpace(os.Getenv("INTENTGATE_CONFIG")); override != "" {
		return override
	}
	return filepath.Join(workspaceRoot, defaultOrchestrationDir, "config.yaml")
}

// loadFromPath loads config from a YAML file.
func loadFromPath(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv applies environment variable overrides.
func applyEnv(cfg *Config) *Config {
	if v := os.Getenv("INTENTGATE_OUTPUT"); v != "" {
		cfg.Output = v
	}
	if v := os.Getenv("INTENTGATE_ORCHESTRATION_DIR"); v != "" {
		cfg.OrchestrationDir = v
	}
	if v := os.Getenv("INTENTGATE_VERBOSE"); v == "true" || v == "1" {
		cfg.Verbose = true
	}
	if v := os.Getenv("INTENTGATE_HITL_ENABLED"); v == "false" || v == "0" {
		cfg.HITL.Enabled = false
	}
	return cfg
}

// mergeStr overwrites dst with src when src is non-empty.
func mergeStr(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// mergeInt overwrites dst with src when src is non-zero.
func mergeInt(dst *int, src int) {
	if src != 0 {
		*dst = src
	}
}

// merge merges src into dst, with src values taking precedence.
func merge(dst, src *Config) *Config {
	mergeStr(&dst.Output, src.Output)
	mergeStr(&dst.OrchestrationDir, src.OrchestrationDir)
	if src.Verbose {
		dst.Verbose = true
	}

	mergeInt(&dst.Catalog.CacheTTLSeconds, src.Catalog.CacheTTLSeconds)
	mergeInt(&dst.Ledger.RetryDelayMillis, src.Ledger.RetryDelayMillis)
	mergeInt(&dst.Ledger.RecentEntriesLimit, src.Ledger.RecentEntriesLimit)
	mergeInt(&dst.Context.ByteBudget, src.Context.ByteBudget)
	mergeInt(&dst.Context.SpecExcerptBytes, src.Context.SpecExcerptBytes)
	mergeInt(&dst.Session.StaleAfterSeconds, src.Session.StaleAfterSeconds)

	return dst
}
