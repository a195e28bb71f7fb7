// Package context builds the intent-activation payload the assistant
// receives once it selects an intent: the intent's scope, constraints,
// and acceptance criteria, plus supporting evidence pulled from the
// ledger, the spatial map, and any referenced specs. The payload is
// bounded to a fixed byte budget so it never overruns a prompt.
package context

import (
	"os"
	"path/filepath"

	"github.com/orchestrated/intentgate/internal/catalog"
	"github.com/orchestrated/intentgate/internal/ledger"
	"github.com/orchestrated/intentgate/internal/logging"
	"github.com/orchestrated/intentgate/internal/spatial"
	"github.com/orchestrated/intentgate/internal/types"
)

var log = logging.Component("context")

// byteBudget is the total serialized size FormatContextForPrompt is
// allowed to produce.
const byteBudget = 16384

// specExcerptBudget bounds how much of a referenced spec file is
// quoted verbatim.
const specExcerptBudget = 2048

// recentEntryLimit bounds how many ledger entries are pulled in.
const recentEntryLimit = 20

// SpecExcerpt is a truncated read of one related_specs file.
type SpecExcerpt struct {
	Ref   string
	Text  string
	Error string
}

// IntentContext is everything BuildIntentContext assembles for one
// intent before it is serialized for the prompt.
type IntentContext struct {
	Intent        types.Intent
	RelatedFiles  []string
	SpecExcerpts  []SpecExcerpt
	RecentEntries []types.LedgerRecord
}

// Builder assembles IntentContext values from a catalog, a ledger, and
// the spatial map, resolving related_specs against the workspace root.
type Builder struct {
	Catalog        *catalog.Catalog
	Ledger         *ledger.TraceLedger
	SpatialMapPath string
	WorkspaceRoot  string
}

// BuildIntentContext assembles the context for intentID, or nil if the
// intent is absent from the catalog.
func (b *Builder) BuildIntentContext(intentID string) *IntentContext {
	intent, ok := b.Catalog.Get(intentID)
	if !ok {
		return nil
	}

	ctx := &IntentContext{Intent: intent}
	ctx.RelatedFiles = b.loadSpatialEntries(intentID)
	ctx.SpecExcerpts = b.resolveRelatedSpecs(intent)

	if b.Ledger != nil {
		ctx.RecentEntries = b.Ledger.GetRecentEntries(intentID, recentEntryLimit)
	}

	return ctx
}

// loadSpatialEntries scans the spatial map file for the intent's
// section and returns its listed file paths. The map is best-effort;
// a missing or unreadable file yields no entries rather than an error.
func (b *Builder) loadSpatialEntries(intentID string) []string {
	if b.SpatialMapPath == "" {
		return nil
	}
	return spatial.New(b.SpatialMapPath).ListFilesForIntent(intentID)
}

func (b *Builder) resolveRelatedSpecs(intent types.Intent) []SpecExcerpt {
	var excerpts []SpecExcerpt
	for _, rs := range intent.RelatedSpecs {
		if rs.Type != types.RelatedSpecKit && rs.Type != types.RelatedConstitution {
			continue
		}

		path := rs.Ref
		if !filepath.IsAbs(path) {
			path = filepath.Join(b.WorkspaceRoot, path)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			log.Info().Err(err).Str("ref", rs.Ref).Msg("could not read related spec file")
			excerpts = append(excerpts, SpecExcerpt{Ref: rs.Ref, Error: "could not be read"})
			continue
		}

		excerpts = append(excerpts, SpecExcerpt{Ref: rs.Ref, Text: truncateWithMarker(string(data), specExcerptBudget)})
	}
	return excerpts
}

func truncateWithMarker(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "\n...[truncated]"
}
