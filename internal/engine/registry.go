package engine

import (
	"sync"

	"github.com/orchestrated/intentgate/internal/capability"
	"github.com/orchestrated/intentgate/internal/hitl"
)

// Key identifies one engine instance.
type Key struct {
	WorkspaceRoot string
	SessionID     string
}

// Registry is the explicit, injectable home for the singleton-per-key
// mapping the governance contract describes: same (workspace, session)
// always yields the same *Engine; different sessions get independent
// instances with independent hash caches and active-intent state. It
// is owned by the host rather than being a process-wide global.
type Registry struct {
	OrchestrationDir string
	Clock            capability.Clock
	UUIDGen          capability.UUIDGenerator
	VCS              capability.VCSProbe
	HITL             hitl.Gate

	mu      sync.Mutex
	engines map[Key]*Engine
}

// NewRegistry creates a Registry using the given defaults for every
// engine it constructs. A zero-value field falls back to the package
// defaults (SystemClock, GoogleUUID, GitProbe, CLIGate).
func NewRegistry(orchestrationDir string, clock capability.Clock, uuidGen capability.UUIDGenerator, vcs capability.VCSProbe, hitlGate hitl.Gate) *Registry {
	if clock == nil {
		clock = capability.SystemClock{}
	}
	if uuidGen == nil {
		uuidGen = capability.GoogleUUID{}
	}
	if vcs == nil {
		vcs = capability.GitProbe{}
	}
	if hitlGate == nil {
		hitlGate = hitl.NewCLIGate()
	}

	return &Registry{
		OrchestrationDir: orchestrationDir,
		Clock:            clock,
		UUIDGen:          uuidGen,
		VCS:              vcs,
		HITL:             hitlGate,
		engines:          map[Key]*Engine{},
	}
}

// Get returns the engine for (workspaceRoot, sessionID), constructing
// it on first access.
func (r *Registry) Get(workspaceRoot, sessionID string) *Engine {
	key := Key{WorkspaceRoot: workspaceRoot, SessionID: sessionID}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.engines[key]; ok {
		return e
	}

	paths := DefaultPaths(workspaceRoot, r.OrchestrationDir)
	e := newEngine(workspaceRoot, sessionID, paths, r.VCS, r.HITL, r.Clock, r.UUIDGen)
	r.engines[key] = e
	return e
}

// Forget drops a session's engine, releasing its hash cache and
// active-intent state. Useful when a host knows a session has ended.
func (r *Registry) Forget(workspaceRoot, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.engines, Key{WorkspaceRoot: workspaceRoot, SessionID: sessionID})
}
