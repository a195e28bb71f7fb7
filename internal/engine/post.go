package engine

import (
	"context"

	"github.com/orchestrated/intentgate/internal/hashing"
	"github.com/orchestrated/intentgate/internal/ledger"
	"github.com/orchestrated/intentgate/internal/lessons"
	"github.com/orchestrated/intentgate/internal/logging"
	"github.com/orchestrated/intentgate/internal/scope"
	"github.com/orchestrated/intentgate/internal/types"
)

// PostToolUseRequest is the information the host supplies after a
// tool has run (or failed to). It never causes a rejection; it only
// logs.
type PostToolUseRequest struct {
	ToolName        string
	FilePath        string
	IntentID        string
	Params          map[string]string
	PreHash         *string
	Success         bool
	Error           string
	ModelIdentifier string
	StartLine       int
	EndLine         int
}

// PostToolUse is the logger. It never rejects a call; every failure
// inside it is caught and logged, never propagated to the host.
func (e *Engine) PostToolUse(ctx context.Context, req PostToolUseRequest) {
	if classify(req.ToolName) == classExempt {
		return
	}

	ctx = logging.WithSessionID(ctx, e.sessionID)
	ctx = logging.WithIntentID(ctx, req.IntentID)
	reqLog := logging.Enrich(ctx, log)

	relPath := e.relativePath(req.FilePath)

	var postHash *string
	if relPath != "" {
		h, err := hashing.ComputeFileHash(e.absolutePath(relPath))
		if err != nil {
			reqLog.Warn().Err(err).Str("path", relPath).Msg("hashing failed during post-hook")
		}
		postHash = h
	}

	class := classify(req.ToolName)
	mutationClass := resolveMutationClass(req.ToolName, req.Params, req.PreHash)

	scopeValidation := types.ScopeExempt
	if class == classWrite {
		scopeValidation = types.ScopePass
	}

	var relatedSpecs []types.RelatedSpec
	if intent, ok := e.catalog.Get(req.IntentID); ok {
		for _, rs := range intent.RelatedSpecs {
			if rs.Type == types.RelatedSpecKit {
				relatedSpecs = append(relatedSpecs, rs)
			}
		}
	}

	var file *types.TraceFile
	if relPath != "" {
		file = &types.TraceFile{RelativePath: relPath, PreHash: req.PreHash, PostHash: postHash}
	}

	entry := types.TraceEntry{
		ID:              e.uuidGen.NewV4(),
		Timestamp:       e.clock.Now(),
		IntentID:        req.IntentID,
		SessionID:       e.sessionID,
		ToolName:        req.ToolName,
		MutationClass:   mutationClass,
		File:            file,
		ScopeValidation: scopeValidation,
		Success:         req.Success,
		Error:           req.Error,
	}

	e.ledger.Log(ctx, entry, ledger.LogOptions{
		ModelIdentifier: req.ModelIdentifier,
		StartLine:       req.StartLine,
		EndLine:         req.EndLine,
		RelatedSpecs:    relatedSpecs,
	})

	if req.Success && req.PreHash != nil && postHash != nil && *req.PreHash == *postHash {
		reqLog.Warn().Str("path", relPath).Str("tool", req.ToolName).Msg("write succeeded but content hash did not change (suspicious no-op)")
	}

	if req.Success && relPath != "" {
		intentName := ""
		if intent, ok := e.catalog.Get(req.IntentID); ok {
			intentName = intent.Name
		}
		e.spatial.AddFileToIntent(req.IntentID, relPath, intentName, mutationClass, e.clock.Now())
	}

	e.mu.Lock()
	if postHash == nil {
		// Open question #1: a successful deletion clears the cache entry
		// rather than caching a nil, so recreating the file at this path
		// does not spuriously trip stale-read detection.
		if req.Success {
			delete(e.hashCache, relPath)
		}
	} else if relPath != "" {
		e.hashCache[relPath] = postHash
	}
	e.mu.Unlock()

	if !req.Success && req.Error != "" && relPath != "" {
		e.lessons.RecordLesson(lessonFromFailure(req), e.clock.Now())
	}
}

func resolveMutationClass(toolName string, params map[string]string, preHash *string) types.MutationClass {
	if params != nil {
		if v, ok := params["mutation_class"]; ok && types.ValidMutationClasses[types.MutationClass(v)] {
			return types.MutationClass(v)
		}
	}
	return scope.ClassifyMutation(toolName, preHash)
}

func lessonFromFailure(req PostToolUseRequest) lessons.Lesson {
	return lessons.Lesson{
		IntentID:    req.IntentID,
		ToolName:    req.ToolName,
		Category:    "tool-failure",
		Description: req.Error,
	}
}
