package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeBrain(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "brain.md")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

const emptyBrainWithTable = "# Brain\n\n## Active Sessions\n\n| session | intent | timestamp |\n|---|---|---|\n"

func TestHeartbeatDoesNothingIfBrainMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.md")
	c := New(path)
	c.Heartbeat("sess-1", "INT-001", time.Now())
	// no panic, no file created
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected no file to be created")
	}
}

func TestHeartbeatInsertsRow(t *testing.T) {
	path := writeBrain(t, emptyBrainWithTable)
	c := New(path)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	c.Heartbeat("sess-1", "INT-001", now)

	sessions := c.ListSessions()
	if len(sessions) != 1 {
		t.Fatalf("ListSessions() = %d, want 1", len(sessions))
	}
	if sessions[0].SessionID != "sess-1" || sessions[0].IntentID != "INT-001" {
		t.Errorf("ListSessions() = %+v, want sess-1/INT-001", sessions[0])
	}
}

func TestHeartbeatUpsertsExistingSession(t *testing.T) {
	path := writeBrain(t, emptyBrainWithTable)
	c := New(path)

	c.Heartbeat("sess-1", "INT-001", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	c.Heartbeat("sess-1", "INT-002", time.Date(2026, 1, 1, 1, 0, 0, 0, time.UTC))

	sessions := c.ListSessions()
	if len(sessions) != 1 {
		t.Fatalf("ListSessions() = %d, want 1 (upsert not append)", len(sessions))
	}
	if sessions[0].IntentID != "INT-002" {
		t.Errorf("IntentID = %q, want INT-002", sessions[0].IntentID)
	}
}

func TestHeartbeatNoneIntent(t *testing.T) {
	path := writeBrain(t, emptyBrainWithTable)
	c := New(path)
	c.Heartbeat("sess-1", "", time.Now())

	sessions := c.ListSessions()
	if len(sessions) != 1 || sessions[0].IntentID != "" {
		t.Errorf("ListSessions() = %+v, want empty IntentID for 'none'", sessions)
	}
}

func TestIsIntentClaimedByOther(t *testing.T) {
	path := writeBrain(t, emptyBrainWithTable)
	c := New(path)
	now := time.Now()

	c.Heartbeat("sess-1", "INT-001", now)

	if !c.IsIntentClaimedByOther("sess-2", "INT-001") {
		t.Errorf("expected INT-001 to be claimed by sess-1")
	}
	if c.IsIntentClaimedByOther("sess-1", "INT-001") {
		t.Errorf("expected sess-1 to not be 'other' for its own claim")
	}
	if c.IsIntentClaimedByOther("sess-2", "INT-999") {
		t.Errorf("expected unclaimed intent to report false")
	}
}

func TestCleanupStaleSessions(t *testing.T) {
	path := writeBrain(t, emptyBrainWithTable)
	c := New(path)

	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	fresh := old.Add(9 * time.Minute)
	now := old.Add(10 * time.Minute)

	c.Heartbeat("stale-sess", "INT-001", old)
	c.Heartbeat("fresh-sess", "INT-002", fresh)

	removed := c.CleanupStaleSessions(now)
	if removed != 1 {
		t.Fatalf("CleanupStaleSessions() removed %d, want 1", removed)
	}

	sessions := c.ListSessions()
	if len(sessions) != 1 || sessions[0].SessionID != "fresh-sess" {
		t.Errorf("ListSessions() = %+v, want only fresh-sess to survive", sessions)
	}
}

func TestCleanupStaleSessionsNoopWhenNothingStale(t *testing.T) {
	path := writeBrain(t, emptyBrainWithTable)
	c := New(path)
	now := time.Now()
	c.Heartbeat("sess-1", "INT-001", now)

	removed := c.CleanupStaleSessions(now)
	if removed != 0 {
		t.Errorf("CleanupStaleSessions() removed %d, want 0", removed)
	}
}

func TestHeartbeatPreservesContentAfterTable(t *testing.T) {
	seed := emptyBrainWithTable + "\n## Lessons Learned\n\n### 2026-01-01: note (INT-000)\n- Tool: edit\n"
	path := writeBrain(t, seed)
	c := New(path)
	c.Heartbeat("sess-1", "INT-001", time.Now())

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "## Lessons Learned") {
		t.Errorf("expected trailing sections to survive, got:\n%s", data)
	}
}
