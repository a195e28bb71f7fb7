package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/orchestrated/intentgate/internal/capability"
	"github.com/orchestrated/intentgate/internal/hitl"
)

type fakeClock struct{ t time.Time }

func (c fakeClock) Now() time.Time { return c.t }

type fakeUUID struct{ n int }

func (u *fakeUUID) NewV4() string {
	u.n++
	return fmt.Sprintf("uuid-%d", u.n)
}

type fakeVCS struct{ rev *string }

func (v fakeVCS) CurrentRevisionID(_ context.Context, _ string) (*string, error) {
	return v.rev, nil
}

type fakeGate struct {
	approve bool
	reason  string
	calls   []hitl.Request
}

func (g *fakeGate) RequestApproval(req hitl.Request) (hitl.Response, error) {
	g.calls = append(g.calls, req)
	return hitl.Response{Approved: g.approve, Reason: g.reason}, nil
}

func (g *fakeGate) SetEnabled(bool) {}

var _ capability.Clock = fakeClock{}
var _ capability.UUIDGenerator = &fakeUUID{}
var _ capability.VCSProbe = fakeVCS{}
var _ hitl.Gate = &fakeGate{}

// testEngine bundles an Engine with the paths/workspace it was built
// against, so tests can reach into its files without recomputing them.
type testEngine struct {
	*Engine
	workspace string
	paths     Paths
	gate      *fakeGate
}

func newTestEngine(t *testing.T, catalogYAML string) *testEngine {
	t.Helper()
	workspace := t.TempDir()
	paths := DefaultPaths(workspace, ".orchestration")

	if err := os.MkdirAll(paths.OrchestrationDir, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(paths.CatalogFile, []byte(catalogYAML), 0o644); err != nil {
		t.Fatalf("WriteFile(catalog) error = %v", err)
	}

	gate := &fakeGate{approve: true}
	e := newEngine(workspace, "session-1", paths, fakeVCS{}, gate, fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}, &fakeUUID{})

	return &testEngine{Engine: e, workspace: workspace, paths: paths, gate: gate}
}

func (te *testEngine) writeWorkspaceFile(t *testing.T, relPath, content string) {
	t.Helper()
	abs := filepath.Join(te.workspace, relPath)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func (te *testEngine) readBrain(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(te.paths.BrainFile)
	if err != nil {
		if os.IsNotExist(err) {
			return ""
		}
		t.Fatalf("ReadFile(brain) error = %v", err)
	}
	return string(data)
}

func (te *testEngine) readSpatialMap(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(te.paths.SpatialMap)
	if err != nil {
		if os.IsNotExist(err) {
			return ""
		}
		t.Fatalf("ReadFile(spatial map) error = %v", err)
	}
	return string(data)
}

const testCatalogYAML = `
active_intents:
  - id: INT-001
    name: Add retry logic to the HTTP client
    status: IN_PROGRESS
    version: 1
    owned_scope:
      - "src/**/*.go"
    constraints:
      - must not change the public client API
    acceptance_criteria:
      - retries on 5xx with exponential backoff
    created_at: 2026-01-01T00:00:00Z
    updated_at: 2026-01-02T00:00:00Z
  - id: INT-002
    name: Pending intent not yet selected
    status: PENDING
    version: 1
    owned_scope:
      - "docs/**"
    created_at: 2026-01-01T00:00:00Z
    updated_at: 2026-01-01T00:00:00Z
  - id: INT-003
    name: Blocked intent awaiting human review
    status: BLOCKED
    version: 1
    owned_scope:
      - "**"
    created_at: 2026-01-01T00:00:00Z
    updated_at: 2026-01-01T00:00:00Z
`
