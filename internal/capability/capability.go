// Package capability defines the narrow interfaces the engine consumes
// from its host: a clock, a UUID generator, and a version-control probe.
// Each has a small default implementation; hosts may substitute their
// own. The human-approval gate lives in package hitl.
package capability

import (
	"context"
	"os/exec"
	"time"

	"github.com/google/uuid"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the default Clock, backed by time.Now.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }

// UUIDGenerator produces unique identifiers for trace entries.
type UUIDGenerator interface {
	NewV4() string
}

// GoogleUUID is the default UUIDGenerator, backed by google/uuid.
type GoogleUUID struct{}

// NewV4 returns a random (version 4) UUID string.
func (GoogleUUID) NewV4() string { return uuid.NewString() }

// VCSProbe resolves the current version-control revision identifier.
// Implementations must return (nil, nil) rather than an error when the
// workspace is not under version control or the probe cannot determine
// a revision — the ledger treats a null revision as a valid value.
type VCSProbe interface {
	CurrentRevisionID(ctx context.Context, workspaceRoot string) (*string, error)
}

// GitProbe is the default VCSProbe: it shells out to `git rev-parse
// HEAD` with a bounded timeout and swallows any failure as "unknown".
type GitProbe struct {
	// Timeout bounds how long the subprocess is allowed to run.
	Timeout time.Duration
}

// defaultProbeTimeout matches the 5s bound design note §9 recommends
// for any subprocess-backed capability.
const defaultProbeTimeout = 5 * time.Second

// CurrentRevisionID shells out to git to resolve HEAD. Any failure
// (not a repo, git missing, timeout) yields (nil, nil): the probe never
// surfaces an error to callers, since a missing revision id is an
// expected, harmless outcome for the ledger.
func (p GitProbe) CurrentRevisionID(ctx context.Context, workspaceRoot string) (*string, error) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, "git", "rev-parse", "HEAD")
	cmd.Dir = workspaceRoot
	out, err := cmd.Output()
	if err != nil {
		return nil, nil
	}

	rev := trimTrailingNewline(string(out))
	if rev == "" {
		return nil, nil
	}
	return &rev, nil
}

func trimTrailingNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
