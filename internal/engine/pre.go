package engine

import (
	"fmt"

	"github.com/orchestrated/intentgate/internal/hashing"
	"github.com/orchestrated/intentgate/internal/hitl"
	"github.com/orchestrated/intentgate/internal/scope"
	"github.com/orchestrated/intentgate/internal/types"
)

// PreToolUseRequest is the information the host supplies before a tool
// runs.
type PreToolUseRequest struct {
	ToolName string
	FilePath string // relative or absolute; "" means no path
	IntentID string
	Params   map[string]string
}

// PreToolUse is the gate. It validates toolName/filePath/intentId
// against the active catalog in the chain described by the governance
// contract, short-circuiting on the first failure. Reasons are always
// agent-actionable: they state what failed, why, and how to fix it.
func (e *Engine) PreToolUse(req PreToolUseRequest) PreResult {
	class := classify(req.ToolName)
	relPath := e.relativePath(req.FilePath)

	if class == classExempt {
		return allow(map[string]bool{"exempt": true}, nil)
	}

	if class == classDestructive {
		return e.gateDestructive(req)
	}

	if class == classWrite && req.IntentID == "" {
		return deny(fmt.Sprintf(
			"no active intent is set for this session; call select_active_intent with an id from %s before writing",
			e.paths.CatalogFile,
		))
	}

	if class == classUnclassified {
		return allow(map[string]bool{"unclassified": true}, nil)
	}

	intent, ok := e.catalog.Get(req.IntentID)
	if !ok {
		return deny(fmt.Sprintf("intent %q was not found in the catalog at %s; select a valid intent id", req.IntentID, e.paths.CatalogFile))
	}

	if intent.Status != types.StatusInProgress {
		return deny(fmt.Sprintf("intent %q is %s: %s", intent.ID, intent.Status, types.StatusSentence(intent.Status)))
	}

	if relPath != "" && e.isIgnored(relPath) {
		return allow(map[string]bool{"intentIgnored": true}, nil)
	}

	if relPath != "" && !scope.IsInScope(relPath, intent.OwnedScope) {
		e.lessons.RecordScopeViolation(intent.ID, req.ToolName, relPath, e.clock.Now())
		return deny(fmt.Sprintf(
			"path %q is outside intent %q's owned_scope (%v); either widen owned_scope or choose a path within it",
			relPath, intent.ID, intent.OwnedScope,
		))
	}

	preHash, err := hashing.ComputeFileHash(e.absolutePath(relPath))
	if err != nil {
		log.Warn().Err(err).Str("path", relPath).Msg("hashing failed during pre-hook, treating as file absent")
	}

	if relPath != "" {
		if denied := e.checkOptimisticLock(intent.ID, req.ToolName, relPath, preHash); denied != nil {
			return *denied
		}
	}

	return allow(nil, preHash)
}

func (e *Engine) gateDestructive(req PreToolUseRequest) PreResult {
	if req.IntentID == "" {
		return deny(fmt.Sprintf(
			"no active intent is set for this session; call select_active_intent with an id from %s before running destructive operations",
			e.paths.CatalogFile,
		))
	}

	intent, ok := e.catalog.Get(req.IntentID)
	if !ok {
		return deny(fmt.Sprintf("intent %q was not found in the catalog at %s", req.IntentID, e.paths.CatalogFile))
	}

	if intent.Status != types.StatusInProgress {
		return deny(fmt.Sprintf("intent %q is %s: %s", intent.ID, intent.Status, types.StatusSentence(intent.Status)))
	}

	resp, err := e.hitl.RequestApproval(hitl.Request{
		ToolName:    req.ToolName,
		IntentID:    req.IntentID,
		FilePath:    req.FilePath,
		Description: fmt.Sprintf("destructive tool %q requested against intent %q", req.ToolName, req.IntentID),
	})
	if err != nil {
		log.Warn().Err(err).Msg("HITL approval request failed, treating as rejected")
		return deny("human approval could not be obtained; retry once the reviewer is available")
	}

	if !resp.Approved {
		reason := resp.Reason
		if reason == "" {
			reason = "human reviewer declined the request"
		}
		return deny(reason)
	}

	return allow(map[string]bool{"destructive": true}, nil)
}

func (e *Engine) isIgnored(relPath string) bool {
	e.mu.Lock()
	list := e.ignoreList
	e.mu.Unlock()
	return list.IsIgnored(relPath)
}

// checkOptimisticLock enforces stale-read detection: if the cache
// already holds a hash for relPath that disagrees with preHash, the
// file changed out from under this session since it last observed it.
func (e *Engine) checkOptimisticLock(intentID, toolName, relPath string, preHash *string) *PreResult {
	e.mu.Lock()
	cached, known := e.hashCache[relPath]
	e.mu.Unlock()

	if known && !hashesEqual(cached, preHash) {
		e.lessons.RecordHashMismatch(intentID, toolName, relPath, e.clock.Now())
		denied := deny(fmt.Sprintf(
			"stale file: %q changed since this session last observed it (cached %s, now %s); re-read the file before writing again",
			relPath, shortHash(cached), shortHash(preHash),
		))
		return &denied
	}

	e.mu.Lock()
	e.hashCache[relPath] = preHash
	e.mu.Unlock()
	return nil
}

func hashesEqual(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

func shortHash(h *string) string {
	if h == nil {
		return "none"
	}
	if len(*h) <= 19 {
		return *h
	}
	return (*h)[:19] + "…"
}
