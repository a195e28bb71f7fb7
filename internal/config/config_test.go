package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Output != "table" {
		t.Errorf("Output = %q, want table", cfg.Output)
	}
	if cfg.OrchestrationDir != ".orchestration" {
		t.Errorf("OrchestrationDir = %q, want .orchestration", cfg.OrchestrationDir)
	}
	if cfg.Context.ByteBudget != 16384 {
		t.Errorf("Context.ByteBudget = %d, want 16384", cfg.Context.ByteBudget)
	}
	if cfg.Session.StaleAfterSeconds != 300 {
		t.Errorf("Session.StaleAfterSeconds = %d, want 300", cfg.Session.StaleAfterSeconds)
	}
	if !cfg.HITL.Enabled {
		t.Errorf("HITL.Enabled = false, want true by default")
	}
}

func TestLoadProjectOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	orchDir := filepath.Join(dir, ".orchestration")
	if err := os.MkdirAll(orchDir, 0700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	yamlContent := `
output: json
context:
  byte_budget: 8192
`
	if err := os.WriteFile(filepath.Join(orchDir, "config.yaml"), []byte(yamlContent), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(dir, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Output != "json" {
		t.Errorf("Output = %q, want json", cfg.Output)
	}
	if cfg.Context.ByteBudget != 8192 {
		t.Errorf("Context.ByteBudget = %d, want 8192", cfg.Context.ByteBudget)
	}
	// Unset fields retain their defaults.
	if cfg.Session.StaleAfterSeconds != 300 {
		t.Errorf("Session.StaleAfterSeconds = %d, want default 300", cfg.Session.StaleAfterSeconds)
	}
}

func TestLoadEnvOverridesProject(t *testing.T) {
	dir := t.TempDir()
	orchDir := filepath.Join(dir, ".orchestration")
	if err := os.MkdirAll(orchDir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(orchDir, "config.yaml"), []byte("output: json\nhitl:\n  enabled: true\n"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("INTENTGATE_OUTPUT", "yaml")
	t.Setenv("INTENTGATE_HITL_ENABLED", "false")

	cfg, err := Load(dir, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Output != "yaml" {
		t.Errorf("Output = %q, want yaml", cfg.Output)
	}
	if cfg.HITL.Enabled {
		t.Errorf("HITL.Enabled = true, want false via env override")
	}
}

func TestLoadFlagOverridesEverything(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("INTENTGATE_OUTPUT", "yaml")

	cfg, err := Load(dir, &Config{Output: "json"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Output != "json" {
		t.Errorf("Output = %q, want json (flag should win)", cfg.Output)
	}
}

func TestProjectConfigPathHonorsEnvOverride(t *testing.T) {
	t.Setenv("INTENTGATE_CONFIG", "/custom/path.yaml")
	if got := projectConfigPath("/workspace"); got != "/custom/path.yaml" {
		t.Errorf("projectConfigPath = %q, want /custom/path.yaml", got)
	}
}
