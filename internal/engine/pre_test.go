package engine

import (
	"strings"
	"testing"
)

func TestPreToolUseExemptToolAllowed(t *testing.T) {
	te := newTestEngine(t, testCatalogYAML)

	result := te.PreToolUse(PreToolUseRequest{ToolName: "read_file", FilePath: "src/client.go"})
	if !result.Allowed {
		t.Fatalf("PreToolUse() = %+v, want allowed", result)
	}
	if !result.Metadata["exempt"] {
		t.Errorf("Metadata = %v, want exempt=true", result.Metadata)
	}
}

func TestPreToolUseUnclassifiedToolAllowedWithoutIntent(t *testing.T) {
	te := newTestEngine(t, testCatalogYAML)

	result := te.PreToolUse(PreToolUseRequest{ToolName: "browser_action"})
	if !result.Allowed {
		t.Fatalf("PreToolUse() = %+v, want allowed", result)
	}
	if !result.Metadata["unclassified"] {
		t.Errorf("Metadata = %v, want unclassified=true", result.Metadata)
	}
}

func TestPreToolUseWriteWithoutIntentDenied(t *testing.T) {
	te := newTestEngine(t, testCatalogYAML)

	result := te.PreToolUse(PreToolUseRequest{ToolName: "write_to_file", FilePath: "src/new.go"})
	if result.Allowed {
		t.Fatal("PreToolUse() = allowed, want denied")
	}
	if !strings.Contains(result.Reason, "select_active_intent") {
		t.Errorf("Reason = %q, want mention of select_active_intent", result.Reason)
	}
}

func TestPreToolUseWriteUnknownIntentDenied(t *testing.T) {
	te := newTestEngine(t, testCatalogYAML)

	result := te.PreToolUse(PreToolUseRequest{ToolName: "write_to_file", FilePath: "src/new.go", IntentID: "INT-999"})
	if result.Allowed {
		t.Fatal("PreToolUse() = allowed, want denied")
	}
	if !strings.Contains(result.Reason, "INT-999") {
		t.Errorf("Reason = %q, want mention of the missing intent id", result.Reason)
	}
}

func TestPreToolUseWriteAgainstPendingIntentDenied(t *testing.T) {
	te := newTestEngine(t, testCatalogYAML)

	result := te.PreToolUse(PreToolUseRequest{ToolName: "write_to_file", FilePath: "docs/readme.md", IntentID: "INT-002"})
	if result.Allowed {
		t.Fatal("PreToolUse() = allowed, want denied for a PENDING intent")
	}
	if !strings.Contains(result.Reason, "PENDING") {
		t.Errorf("Reason = %q, want mention of PENDING status", result.Reason)
	}
}

func TestPreToolUseWriteOutsideScopeDenied(t *testing.T) {
	te := newTestEngine(t, testCatalogYAML)

	result := te.PreToolUse(PreToolUseRequest{ToolName: "write_to_file", FilePath: "docs/readme.md", IntentID: "INT-001"})
	if result.Allowed {
		t.Fatal("PreToolUse() = allowed, want denied: path outside owned_scope")
	}
	if !strings.Contains(result.Reason, "owned_scope") {
		t.Errorf("Reason = %q, want mention of owned_scope", result.Reason)
	}

	brain := te.readBrain(t)
	if !strings.Contains(brain, "scope-violation") {
		t.Errorf("brain file = %q, want a recorded scope-violation lesson", brain)
	}
}

func TestPreToolUseWriteInsideScopeAllowedForNewFile(t *testing.T) {
	te := newTestEngine(t, testCatalogYAML)

	result := te.PreToolUse(PreToolUseRequest{ToolName: "write_to_file", FilePath: "src/new.go", IntentID: "INT-001"})
	if !result.Allowed {
		t.Fatalf("PreToolUse() = %+v, want allowed", result)
	}
	if result.PreHash != nil {
		t.Errorf("PreHash = %v, want nil for a file that does not yet exist", *result.PreHash)
	}

	cached, ok := te.hashCache["src/new.go"]
	if !ok {
		t.Fatal("hash cache was not populated after an allowed call")
	}
	if cached != nil {
		t.Errorf("cached hash = %v, want nil", *cached)
	}
}

func TestPreToolUseIgnoredPathBypassesScopeCheck(t *testing.T) {
	te := newTestEngine(t, testCatalogYAML)
	te.writeWorkspaceFile(t, ".orchestration/.intentignore", "vendor/\n")

	// IsEnabled's first call is what loads the ignore list; the host is
	// expected to have probed it before ever calling PreToolUse.
	if !te.IsEnabled() {
		t.Fatal("IsEnabled() = false, want true (catalog file exists)")
	}

	result := te.PreToolUse(PreToolUseRequest{ToolName: "write_to_file", FilePath: "vendor/lib.go", IntentID: "INT-001"})

	if !result.Allowed {
		t.Fatalf("PreToolUse() = %+v, want allowed (ignored path)", result)
	}
	if !result.Metadata["intentIgnored"] {
		t.Errorf("Metadata = %v, want intentIgnored=true", result.Metadata)
	}
}

func TestPreToolUseStaleFileDetected(t *testing.T) {
	te := newTestEngine(t, testCatalogYAML)
	te.writeWorkspaceFile(t, "src/client.go", "package src\n\nfunc Original() {}\n")

	first := te.PreToolUse(PreToolUseRequest{ToolName: "edit", FilePath: "src/client.go", IntentID: "INT-001"})
	if !first.Allowed {
		t.Fatalf("first PreToolUse() = %+v, want allowed", first)
	}

	// Simulate the file changing out from under this session, without
	// going through the engine.
	te.writeWorkspaceFile(t, "src/client.go", "package src\n\nfunc Changed() {}\n")

	second := te.PreToolUse(PreToolUseRequest{ToolName: "edit", FilePath: "src/client.go", IntentID: "INT-001"})
	if second.Allowed {
		t.Fatal("second PreToolUse() = allowed, want denied: stale file")
	}
	if !strings.Contains(second.Reason, "stale file") {
		t.Errorf("Reason = %q, want mention of a stale file", second.Reason)
	}

	brain := te.readBrain(t)
	if !strings.Contains(brain, "stale-read") {
		t.Errorf("brain file = %q, want a recorded stale-read lesson", brain)
	}
}

func TestPreToolUseDestructiveWithoutIntentDenied(t *testing.T) {
	te := newTestEngine(t, testCatalogYAML)

	result := te.PreToolUse(PreToolUseRequest{ToolName: "execute_command"})
	if result.Allowed {
		t.Fatal("PreToolUse() = allowed, want denied")
	}
	if !strings.Contains(result.Reason, "select_active_intent") {
		t.Errorf("Reason = %q, want mention of select_active_intent", result.Reason)
	}
	if len(te.gate.calls) != 0 {
		t.Errorf("HITL gate was called %d times, want 0 (denied before gating)", len(te.gate.calls))
	}
}

func TestPreToolUseDestructiveAgainstBlockedIntentDenied(t *testing.T) {
	te := newTestEngine(t, testCatalogYAML)

	result := te.PreToolUse(PreToolUseRequest{ToolName: "execute_command", IntentID: "INT-003"})
	if result.Allowed {
		t.Fatal("PreToolUse() = allowed, want denied for a BLOCKED intent")
	}
	if len(te.gate.calls) != 0 {
		t.Errorf("HITL gate was called %d times, want 0", len(te.gate.calls))
	}
}

func TestPreToolUseDestructiveApproved(t *testing.T) {
	te := newTestEngine(t, testCatalogYAML)
	te.gate.approve = true

	result := te.PreToolUse(PreToolUseRequest{ToolName: "execute_command", IntentID: "INT-001"})
	if !result.Allowed {
		t.Fatalf("PreToolUse() = %+v, want allowed", result)
	}
	if !result.Metadata["destructive"] {
		t.Errorf("Metadata = %v, want destructive=true", result.Metadata)
	}
	if len(te.gate.calls) != 1 {
		t.Fatalf("HITL gate was called %d times, want 1", len(te.gate.calls))
	}
	if te.gate.calls[0].ToolName != "execute_command" || te.gate.calls[0].IntentID != "INT-001" {
		t.Errorf("gate request = %+v, want tool/intent filled in", te.gate.calls[0])
	}
}

func TestPreToolUseDestructiveRejected(t *testing.T) {
	te := newTestEngine(t, testCatalogYAML)
	te.gate.approve = false
	te.gate.reason = "needs a second pair of eyes"

	result := te.PreToolUse(PreToolUseRequest{ToolName: "delete_file", FilePath: "src/client.go", IntentID: "INT-001"})
	if result.Allowed {
		t.Fatal("PreToolUse() = allowed, want denied")
	}
	if result.Reason != "needs a second pair of eyes" {
		t.Errorf("Reason = %q, want the reviewer's reason", result.Reason)
	}
}
