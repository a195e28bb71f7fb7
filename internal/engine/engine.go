// Package engine implements the HookEngine: the gate and logger the
// host's tool dispatcher calls immediately before and after every tool
// invocation. It composes the catalog, ledger, spatial index, lesson
// recorder, and HITL gate into the two outward operations, preToolUse
// and postToolUse, described by the governance contract.
package engine

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/orchestrated/intentgate/internal/capability"
	"github.com/orchestrated/intentgate/internal/catalog"
	"github.com/orchestrated/intentgate/internal/hitl"
	"github.com/orchestrated/intentgate/internal/ledger"
	"github.com/orchestrated/intentgate/internal/lessons"
	"github.com/orchestrated/intentgate/internal/logging"
	"github.com/orchestrated/intentgate/internal/scope"
	"github.com/orchestrated/intentgate/internal/spatial"
)

var log = logging.Component("engine")

// enabledCacheTTL bounds how long isEnabled's answer is trusted before
// the workspace is re-probed for a catalog directory and file.
const enabledCacheTTL = 5 * time.Second

// Paths names the files the engine reads and writes, all workspace-
// relative to an orchestration directory.
type Paths struct {
	CatalogFile      string
	LedgerFile       string
	SpatialMap       string
	BrainFile        string
	IgnoreFile       string
	OrchestrationDir string
}

// DefaultPaths returns the conventional layout under
// <workspaceRoot>/<orchestrationDir>.
func DefaultPaths(workspaceRoot, orchestrationDir string) Paths {
	dir := filepath.Join(workspaceRoot, orchestrationDir)
	return Paths{
		OrchestrationDir: dir,
		CatalogFile:      filepath.Join(dir, "active_intents.yaml"),
		LedgerFile:       filepath.Join(dir, "agent_trace.jsonl"),
		SpatialMap:       filepath.Join(dir, "intent_map.md"),
		BrainFile:        filepath.Join(dir, "CLAUDE.md"),
		IgnoreFile:       filepath.Join(dir, ".intentignore"),
	}
}

// Engine is one per (workspace, session). It owns the per-session hash
// cache and the session's active-intent state; it is safe for
// concurrent use only to the extent the host calls it sequentially
// within one session, per the single-threaded cooperative model.
type Engine struct {
	workspaceRoot string
	sessionID     string
	paths         Paths

	catalog *catalog.Catalog
	ledger  *ledger.TraceLedger
	spatial *spatial.Index
	lessons *lessons.Recorder
	hitl    hitl.Gate
	clock   capability.Clock
	uuidGen capability.UUIDGenerator

	mu             sync.Mutex
	hashCache      map[string]*string
	ignoreList     *scope.IgnoreList
	ignoreLoaded   bool
	activeIntentID string

	enabledAt    time.Time
	enabledValue bool
	enabledKnown bool
}

func newEngine(workspaceRoot, sessionID string, paths Paths, vcs capability.VCSProbe, hitlGate hitl.Gate, clock capability.Clock, uuidGen capability.UUIDGenerator) *Engine {
	return &Engine{
		workspaceRoot: workspaceRoot,
		sessionID:     sessionID,
		paths:         paths,
		catalog:       catalog.New(paths.CatalogFile),
		ledger:        ledger.New(paths.LedgerFile, workspaceRoot, vcs),
		spatial:       spatial.New(paths.SpatialMap),
		lessons:       lessons.New(paths.BrainFile),
		hitl:          hitlGate,
		clock:         clock,
		uuidGen:       uuidGen,
		hashCache:     map[string]*string{},
	}
}

// IsEnabled reports whether the workspace is opted into governance: a
// catalog file must exist. The answer is cached for 5 seconds. The
// first time it becomes true, the ignore-list is loaded.
func (e *Engine) IsEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.enabledKnown && time.Since(e.enabledAt) < enabledCacheTTL {
		return e.enabledValue
	}

	value := catalog.Exists(e.paths.CatalogFile)
	e.enabledValue = value
	e.enabledAt = time.Now()
	e.enabledKnown = true

	if value && !e.ignoreLoaded {
		e.ignoreList = scope.LoadIgnoreList(e.paths.IgnoreFile)
		e.ignoreLoaded = true
	}

	return value
}

// SetActiveIntent records intentID as the session's current selection.
func (e *Engine) SetActiveIntent(intentID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.activeIntentID = intentID
}

// ClearActiveIntent clears the session's current selection.
func (e *Engine) ClearActiveIntent() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.activeIntentID = ""
}

// ActiveIntent returns the session's currently selected intent id, or
// "" if none.
func (e *Engine) ActiveIntent() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activeIntentID
}

func (e *Engine) relativePath(path string) string {
	if path == "" {
		return ""
	}
	path = strings.ReplaceAll(path, "\\", "/")
	if filepath.IsAbs(path) {
		if rel, err := filepath.Rel(e.workspaceRoot, path); err == nil {
			return strings.ReplaceAll(rel, "\\", "/")
		}
	}
	return path
}

func (e *Engine) absolutePath(relPath string) string {
	if filepath.IsAbs(relPath) {
		return relPath
	}
	return filepath.Join(e.workspaceRoot, relPath)
}
