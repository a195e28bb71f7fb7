package context

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/orchestrated/intentgate/internal/catalog"
	"github.com/orchestrated/intentgate/internal/types"
)

func writeCatalogFile(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "catalog.yaml")
	contents := `
active_intents:
  - id: INT-001
    name: Add retry logic
    status: IN_PROGRESS
    version: 1
    owned_scope:
      - "internal/http/**/*.go"
    constraints:
      - must not change the public client API
    acceptance_criteria:
      - retries on 5xx
    related_specs:
      - type: speckit
        ref: spec.txt
    created_at: 2026-01-01T00:00:00Z
    updated_at: 2026-01-02T00:00:00Z
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestBuildIntentContextMissingIntent(t *testing.T) {
	dir := t.TempDir()
	path := writeCatalogFile(t, dir)
	b := &Builder{Catalog: catalog.New(path), WorkspaceRoot: dir}

	if got := b.BuildIntentContext("INT-999"); got != nil {
		t.Errorf("BuildIntentContext() = %+v, want nil", got)
	}
}

func TestBuildIntentContextResolvesSpecExcerpt(t *testing.T) {
	dir := t.TempDir()
	path := writeCatalogFile(t, dir)
	if err := os.WriteFile(filepath.Join(dir, "spec.txt"), []byte("the referenced spec text"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	b := &Builder{Catalog: catalog.New(path), WorkspaceRoot: dir}
	ctx := b.BuildIntentContext("INT-001")
	if ctx == nil {
		t.Fatal("BuildIntentContext() = nil")
	}
	if len(ctx.SpecExcerpts) != 1 || ctx.SpecExcerpts[0].Text != "the referenced spec text" {
		t.Errorf("SpecExcerpts = %+v", ctx.SpecExcerpts)
	}
}

func TestBuildIntentContextMissingSpecFileRecordsError(t *testing.T) {
	dir := t.TempDir()
	path := writeCatalogFile(t, dir)

	b := &Builder{Catalog: catalog.New(path), WorkspaceRoot: dir}
	ctx := b.BuildIntentContext("INT-001")
	if len(ctx.SpecExcerpts) != 1 || ctx.SpecExcerpts[0].Error == "" {
		t.Errorf("SpecExcerpts = %+v, want an error entry", ctx.SpecExcerpts)
	}
}

func TestFormatContextForPromptNilYieldsEmptyString(t *testing.T) {
	if got := FormatContextForPrompt(nil); got != "" {
		t.Errorf("FormatContextForPrompt(nil) = %q, want empty", got)
	}
}

func TestFormatContextForPromptWellFormed(t *testing.T) {
	ctx := &IntentContext{
		Intent: types.Intent{
			ID:                 "INT-001",
			Name:               "Add <retry> & \"backoff\"",
			Status:             types.StatusInProgress,
			Version:            2,
			OwnedScope:         []string{"src/**/*.go"},
			Constraints:        []string{"no breaking changes"},
			AcceptanceCriteria: []string{"tests pass"},
		},
		RelatedFiles: []string{"src/a.go"},
	}

	out := FormatContextForPrompt(ctx)

	if !strings.HasPrefix(out, `<intent_context id="INT-001"`) {
		t.Errorf("unexpected prefix: %s", out)
	}
	if !strings.HasSuffix(out, "</intent_context>") {
		t.Errorf("unexpected suffix: %s", out)
	}
	if !strings.Contains(out, "&lt;retry&gt; &amp; &quot;backoff&quot;") {
		t.Errorf("expected escaped name, got: %s", out)
	}
	if !strings.Contains(out, "<pattern>src/**/*.go</pattern>") {
		t.Errorf("expected scope pattern, got: %s", out)
	}
	if !strings.Contains(out, `version="2"`) {
		t.Errorf("expected version attribute, got: %s", out)
	}
}

func TestFormatContextForPromptLedgerEntriesDoNotCountAgainstBudget(t *testing.T) {
	var entries []types.LedgerRecord
	for i := 0; i < 50; i++ {
		entries = append(entries, types.LedgerRecord{ID: strings.Repeat("x", 500)})
	}

	ctx := &IntentContext{
		Intent: types.Intent{
			ID:                 "INT-001",
			Name:               "Big intent",
			Status:             types.StatusInProgress,
			OwnedScope:         []string{"src/**"},
			Constraints:        []string{"stay small"},
			AcceptanceCriteria: []string{"fits the budget"},
		},
		RecentEntries: entries,
		RelatedFiles:  []string{"src/a.go"},
	}

	out := FormatContextForPrompt(ctx)
	if len(out) > byteBudget {
		t.Errorf("FormatContextForPrompt() length %d exceeds budget %d", len(out), byteBudget)
	}
	if !strings.Contains(out, "<pattern>src/**</pattern>") {
		t.Errorf("scope must never be dropped, got: %s", out)
	}
	if !strings.Contains(out, "<constraint>stay small</constraint>") {
		t.Errorf("constraints must never be dropped, got: %s", out)
	}
	if !strings.Contains(out, "src/a.go") {
		t.Errorf("related files should survive: ledger entries are not rendered, got: %s", out)
	}
}
