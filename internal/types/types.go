// Package types defines the data model shared across the intent gate:
// intents and their lifecycle, the internal trace entry recorded around
// every tool invocation, and the externally-documented ledger record
// format that trace entries are serialized to.
package types

import (
	"regexp"
	"time"
)

// Status is the lifecycle state of an Intent.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusComplete   Status = "COMPLETE"
	StatusBlocked    Status = "BLOCKED"
	StatusArchived   Status = "ARCHIVED"
)

// ValidStatuses enumerates the allowed Status values.
var ValidStatuses = map[Status]bool{
	StatusPending:    true,
	StatusInProgress: true,
	StatusComplete:   true,
	StatusBlocked:    true,
	StatusArchived:   true,
}

// transitions is the exhaustive table of allowed (from, to) status pairs.
// Any pair not present here is illegal.
var transitions = map[Status]map[Status]bool{
	StatusPending:    {StatusInProgress: true, StatusArchived: true},
	StatusInProgress: {StatusComplete: true, StatusBlocked: true, StatusArchived: true},
	StatusBlocked:    {StatusInProgress: true, StatusArchived: true},
	StatusComplete:   {StatusArchived: true},
	StatusArchived:   {},
}

// CanTransition reports whether moving from "from" to "to" is allowed by
// the lifecycle state machine in spec §3.1.
func CanTransition(from, to Status) bool {
	targets, ok := transitions[from]
	if !ok {
		return false
	}
	return targets[to]
}

// IDPattern is the required shape of an Intent id, e.g. "INT-001".
var IDPattern = regexp.MustCompile(`^[A-Z]+-\d{3,}$`)

// RelatedSpecType enumerates the kinds of external artifact an Intent or
// a trace relation can point at.
type RelatedSpecType string

const (
	RelatedSpecKit       RelatedSpecType = "speckit"
	RelatedGitHubIssue   RelatedSpecType = "github_issue"
	RelatedGitHubPR      RelatedSpecType = "github_pr"
	RelatedConstitution  RelatedSpecType = "constitution"
	RelatedExternal      RelatedSpecType = "external"
	RelatedIntent        RelatedSpecType = "intent"
	RelatedSpecification RelatedSpecType = "specification"
	RelatedParentTrace   RelatedSpecType = "parent_trace"
)

// RelatedSpec references an external artifact from an Intent.
type RelatedSpec struct {
	Type RelatedSpecType `yaml:"type" json:"type"`
	Ref  string          `yaml:"ref" json:"ref"`
}

// Intent is the unit of authorization: a declared piece of work scoped
// to a set of paths, carrying constraints and acceptance criteria that
// are surfaced to the assistant once the intent is activated.
type Intent struct {
	ID                 string        `yaml:"id" json:"id"`
	Name               string        `yaml:"name" json:"name"`
	Status             Status        `yaml:"status" json:"status"`
	Version            int           `yaml:"version" json:"version"`
	OwnedScope         []string      `yaml:"owned_scope" json:"owned_scope"`
	Constraints        []string      `yaml:"constraints" json:"constraints"`
	AcceptanceCriteria []string      `yaml:"acceptance_criteria" json:"acceptance_criteria"`
	RelatedSpecs       []RelatedSpec `yaml:"related_specs,omitempty" json:"related_specs,omitempty"`
	ParentIntent       string        `yaml:"parent_intent,omitempty" json:"parent_intent,omitempty"`
	Tags               []string      `yaml:"tags,omitempty" json:"tags,omitempty"`
	CreatedAt          time.Time     `yaml:"created_at" json:"created_at"`
	UpdatedAt          time.Time     `yaml:"updated_at" json:"updated_at"`
}

// StatusSentence returns an agent-actionable sentence explaining why an
// intent in this status cannot currently be mutated against.
func StatusSentence(s Status) string {
	switch s {
	case StatusPending:
		return "the intent has not been selected yet; call select_active_intent to move it to IN_PROGRESS"
	case StatusBlocked:
		return "the intent is BLOCKED; a human must resume it before mutations can continue"
	case StatusComplete:
		return "the intent is already COMPLETE; select a different intent or reopen this one"
	case StatusArchived:
		return "the intent is ARCHIVED and terminal; select a different intent"
	default:
		return "the intent is not IN_PROGRESS"
	}
}

// MutationClass is the coarse, heuristic category assigned to a
// mutation for audit and reporting purposes.
type MutationClass string

const (
	MutationASTRefactor     MutationClass = "AST_REFACTOR"
	MutationIntentEvolution MutationClass = "INTENT_EVOLUTION"
	MutationBugFix          MutationClass = "BUG_FIX"
	MutationDocumentation   MutationClass = "DOCUMENTATION"
	MutationConfiguration   MutationClass = "CONFIGURATION"
	MutationFileCreation    MutationClass = "FILE_CREATION"
	MutationFileDeletion    MutationClass = "FILE_DELETION"
)

// ValidMutationClasses enumerates the allowed MutationClass values.
var ValidMutationClasses = map[MutationClass]bool{
	MutationASTRefactor:     true,
	MutationIntentEvolution: true,
	MutationBugFix:          true,
	MutationDocumentation:   true,
	MutationConfiguration:   true,
	MutationFileCreation:    true,
	MutationFileDeletion:    true,
}

// ScopeValidation records the outcome of the scope check for a mutation.
type ScopeValidation string

const (
	ScopePass   ScopeValidation = "PASS"
	ScopeFail   ScopeValidation = "FAIL"
	ScopeExempt ScopeValidation = "EXEMPT"
)

// TraceFile describes the file touched by a tool invocation, if any.
type TraceFile struct {
	RelativePath string  `json:"relative_path"`
	PreHash      *string `json:"pre_hash"`
	PostHash     *string `json:"post_hash"`
}

// TraceEntry is the engine's internal record of a single tool
// invocation. It is converted to a LedgerRecord before being appended
// to the ledger.
type TraceEntry struct {
	ID              string          `json:"id"`
	Timestamp       time.Time       `json:"timestamp"`
	IntentID        string          `json:"intent_id"`
	SessionID       string          `json:"session_id"`
	ToolName        string          `json:"tool_name"`
	MutationClass   MutationClass   `json:"mutation_class"`
	File            *TraceFile      `json:"file"`
	ScopeValidation ScopeValidation `json:"scope_validation"`
	Success         bool            `json:"success"`
	Error           string          `json:"error,omitempty"`
}

// LedgerVCS carries the version-control revision a ledger record was
// produced under, if any.
type LedgerVCS struct {
	RevisionID *string `json:"revision_id"`
}

// LedgerContributor identifies who (or what) produced a range of lines.
type LedgerContributor struct {
	EntityType      string `json:"entity_type"` // "AI" | "Human"
	ModelIdentifier string `json:"model_identifier"`
}

// LedgerRange describes a span of lines and the content hash covering
// them at the time of the record.
type LedgerRange struct {
	StartLine   int    `json:"start_line"`
	EndLine     int    `json:"end_line"`
	ContentHash string `json:"content_hash"`
}

// LedgerRelated links a conversation to an intent, specification, or a
// parent trace.
type LedgerRelated struct {
	Type  RelatedSpecType `json:"type"`
	Value string          `json:"value"`
}

// LedgerConversation is one conversation's contribution to a file.
type LedgerConversation struct {
	URL         string            `json:"url"` // session id
	Contributor LedgerContributor `json:"contributor"`
	Ranges      []LedgerRange     `json:"ranges"`
	Related     []LedgerRelated   `json:"related"`
}

// LedgerFile is one file's entry within a LedgerRecord.
type LedgerFile struct {
	RelativePath  string               `json:"relative_path"`
	Conversations []LedgerConversation `json:"conversations"`
}

// LedgerRecord is the externally-documented, interoperable Agent Trace
// schema: one JSON object per ledger line.
type LedgerRecord struct {
	ID        string       `json:"id"`
	Timestamp time.Time    `json:"timestamp"`
	VCS       LedgerVCS    `json:"vcs"`
	Files     []LedgerFile `json:"files"`
}
