// Package ledger implements the append-only audit trail the hook
// engine writes to after every tool invocation: one JSON object per
// line, conforming to the externally-documented Agent Trace schema.
package ledger

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/orchestrated/intentgate/internal/capability"
	"github.com/orchestrated/intentgate/internal/logging"
	"github.com/orchestrated/intentgate/internal/types"
)

var log = logging.Component("ledger")

// retryDelay is how long Log waits before its single retry after a
// write failure.
const retryDelay = 100 * time.Millisecond

// defaultRecentLimit bounds GetRecentEntries when the caller passes 0.
const defaultRecentLimit = 20

// LogOptions carries the per-call metadata Log folds into the
// LedgerRecord beyond what TraceEntry itself holds.
type LogOptions struct {
	ModelIdentifier string
	StartLine       int
	EndLine         int
	RelatedSpecs    []types.RelatedSpec
}

// TraceLedger appends TraceEntry records to a JSONL file and serves
// recent-entry lookups back out of it.
type TraceLedger struct {
	path      string
	vcs       capability.VCSProbe
	workspace string
}

// New creates a TraceLedger appending to path, resolving revision ids
// for workspace via vcs.
func New(path, workspace string, vcs capability.VCSProbe) *TraceLedger {
	return &TraceLedger{path: path, workspace: workspace, vcs: vcs}
}

// Log converts entry to a LedgerRecord and appends it to the ledger
// file. I/O failure triggers exactly one retry after retryDelay; a
// second failure is logged and swallowed. Log never returns an error
// to the caller — this is the engine's fail-open policy for ledger
// writes.
func (l *TraceLedger) Log(ctx context.Context, entry types.TraceEntry, opts LogOptions) {
	record := l.toRecord(ctx, entry, opts)

	data, err := json.Marshal(record)
	if err != nil {
		log.Warn().Err(err).Str("entry_id", entry.ID).Msg("failed to marshal ledger record")
		return
	}
	line := append(data, '\n')

	if l.appendLine(line) {
		return
	}

	time.Sleep(retryDelay)
	if l.appendLine(line) {
		return
	}

	log.Warn().Str("entry_id", entry.ID).Str("path", l.path).Msg("failed to append to ledger after retry, dropping entry")
}

func (l *TraceLedger) appendLine(line []byte) bool {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return false
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return false
	}
	return true
}

func (l *TraceLedger) toRecord(ctx context.Context, entry types.TraceEntry, opts LogOptions) types.LedgerRecord {
	var revisionID *string
	if l.vcs != nil {
		revisionID, _ = l.vcs.CurrentRevisionID(ctx, l.workspace)
	}

	startLine, endLine := opts.StartLine, opts.EndLine
	if startLine == 0 {
		startLine = 1
	}
	if endLine == 0 {
		endLine = 1
	}

	modelIdentifier := opts.ModelIdentifier
	if modelIdentifier == "" {
		modelIdentifier = "unknown"
	}

	contentHash := ""
	if entry.File != nil && entry.File.PostHash != nil {
		contentHash = *entry.File.PostHash
	} else if entry.File != nil && entry.File.PreHash != nil {
		contentHash = *entry.File.PreHash
	}

	related := []types.LedgerRelated{{Type: types.RelatedIntent, Value: entry.IntentID}}
	for _, rs := range opts.RelatedSpecs {
		related = append(related, types.LedgerRelated{Type: types.RelatedSpecification, Value: rs.Ref})
	}

	conversation := types.LedgerConversation{
		URL: entry.SessionID,
		Contributor: types.LedgerContributor{
			EntityType:      "AI",
			ModelIdentifier: modelIdentifier,
		},
		Ranges: []types.LedgerRange{{
			StartLine:   startLine,
			EndLine:     endLine,
			ContentHash: contentHash,
		}},
		Related: related,
	}

	relativePath := ""
	if entry.File != nil {
		relativePath = entry.File.RelativePath
	}

	var files []types.LedgerFile
	if relativePath != "" {
		files = []types.LedgerFile{{
			RelativePath:  relativePath,
			Conversations: []types.LedgerConversation{conversation},
		}}
	}

	return types.LedgerRecord{
		ID:        entry.ID,
		Timestamp: entry.Timestamp,
		VCS:       types.LedgerVCS{RevisionID: revisionID},
		Files:     files,
	}
}

// legacyTraceEntry is the flat, pre-LedgerRecord shape some older
// ledger files still contain lines in. GetRecentEntries accepts both
// so a ledger doesn't need migrating before it can be read.
type legacyTraceEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	IntentID  string    `json:"intent_id"`
}

// GetRecentEntries streams the ledger file line by line and returns up
// to limit (default 20) entries for intentID, in file order. Malformed
// lines are skipped silently. Both the legacy flat format (matched via
// intent_id) and the current LedgerRecord format (matched via a
// related[] entry of type "intent") are accepted.
func (l *TraceLedger) GetRecentEntries(intentID string, limit int) []types.LedgerRecord {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	f, err := os.Open(l.path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var matches []types.LedgerRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		if record, ok := parseLine(line, intentID); ok {
			matches = append(matches, record)
		}
	}

	if len(matches) > limit {
		matches = matches[len(matches)-limit:]
	}
	return matches
}

func parseLine(line []byte, intentID string) (types.LedgerRecord, bool) {
	var record types.LedgerRecord
	if err := json.Unmarshal(line, &record); err == nil && recordMatchesIntent(record, intentID) {
		return record, true
	}

	var legacy legacyTraceEntry
	if err := json.Unmarshal(line, &legacy); err == nil && legacy.IntentID == intentID && legacy.ID != "" {
		return types.LedgerRecord{ID: legacy.ID, Timestamp: legacy.Timestamp}, true
	}

	return types.LedgerRecord{}, false
}

func recordMatchesIntent(record types.LedgerRecord, intentID string) bool {
	for _, file := range record.Files {
		for _, conv := range file.Conversations {
			for _, rel := range conv.Related {
				if rel.Type == types.RelatedIntent && rel.Value == intentID {
					return true
				}
			}
		}
	}
	return false
}
