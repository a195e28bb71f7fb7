package engine

import (
	"fmt"

	intentcontext "github.com/orchestrated/intentgate/internal/context"
	"github.com/orchestrated/intentgate/internal/types"
)

// SelectActiveIntentResult is returned by SelectActiveIntent.
type SelectActiveIntentResult struct {
	ContextBlock string
	Err          error
}

// SelectActiveIntent looks up intentID; if it is PENDING, transitions
// it to IN_PROGRESS; sets the engine's active intent; and returns the
// formatted intent-activation context block. This operation is a
// member of the EXEMPT set for gating purposes.
func (e *Engine) SelectActiveIntent(intentID string) SelectActiveIntentResult {
	intent, ok := e.catalog.Get(intentID)
	if !ok {
		return SelectActiveIntentResult{Err: fmt.Errorf("%w: %s", types.ErrIntentNotFound, intentID)}
	}

	if intent.Status == types.StatusPending {
		if err := e.catalog.TransitionIntent(intentID, types.StatusInProgress, e.clock.Now()); err != nil {
			return SelectActiveIntentResult{Err: err}
		}
	}

	e.SetActiveIntent(intentID)

	builder := &intentcontext.Builder{
		Catalog:        e.catalog,
		Ledger:         e.ledger,
		SpatialMapPath: e.paths.SpatialMap,
		WorkspaceRoot:  e.workspaceRoot,
	}
	block := intentcontext.FormatContextForPrompt(builder.BuildIntentContext(intentID))

	return SelectActiveIntentResult{ContextBlock: block}
}

// VerifyAcceptanceCriteria requires intentID to be IN_PROGRESS,
// transitions it to COMPLETE, and clears the engine's active intent if
// it matched. This operation is a member of the EXEMPT set for gating
// purposes.
func (e *Engine) VerifyAcceptanceCriteria(intentID string) error {
	intent, ok := e.catalog.Get(intentID)
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrIntentNotFound, intentID)
	}

	if intent.Status != types.StatusInProgress {
		return fmt.Errorf("%w: %s", types.ErrIntentNotActionable, intentID)
	}

	if err := e.catalog.TransitionIntent(intentID, types.StatusComplete, e.clock.Now()); err != nil {
		return err
	}

	if e.ActiveIntent() == intentID {
		e.ClearActiveIntent()
	}
	return nil
}
