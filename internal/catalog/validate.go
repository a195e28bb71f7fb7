package catalog

import (
	"github.com/orchestrated/intentgate/internal/types"
)

// Severity distinguishes issues that drop an intent from ones that
// merely warrant a logged warning.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationIssue is one problem found with an intent's declaration.
type ValidationIssue struct {
	Field    string
	Message  string
	Severity Severity
}

// Validate checks a decoded intent against the catalog schema. seen
// tracks ids already accepted earlier in the same file, for duplicate
// detection; callers update it only after an intent survives
// validation.
//
// Errors drop the intent: missing id, bad id pattern, missing/short/
// long name, unknown status, empty owned_scope, missing timestamps, a
// created_at after updated_at, or a duplicate id.
//
// Warnings keep the intent: bad version, malformed related_specs
// entries, malformed parent_intent. Non-array tags is not representable
// post-decode (the YAML type system already rejects it), so it is not
// checked here.
func Validate(intent types.Intent, seen map[string]bool) []ValidationIssue {
	var issues []ValidationIssue

	if intent.ID == "" {
		issues = append(issues, ValidationIssue{"id", "missing id", SeverityError})
	} else if !types.IDPattern.MatchString(intent.ID) {
		issues = append(issues, ValidationIssue{"id", "id does not match ^[A-Z]+-\\d{3,}$", SeverityError})
	} else if seen[intent.ID] {
		issues = append(issues, ValidationIssue{"id", "duplicate id within catalog file", SeverityError})
	}

	if l := len(intent.Name); l < 3 || l > 200 {
		issues = append(issues, ValidationIssue{"name", "name must be 3-200 characters", SeverityError})
	}

	if !types.ValidStatuses[intent.Status] {
		issues = append(issues, ValidationIssue{"status", "unknown status value", SeverityError})
	}

	if len(intent.OwnedScope) == 0 {
		issues = append(issues, ValidationIssue{"owned_scope", "owned_scope must be non-empty", SeverityError})
	}

	if intent.CreatedAt.IsZero() {
		issues = append(issues, ValidationIssue{"created_at", "missing created_at", SeverityError})
	}
	if intent.UpdatedAt.IsZero() {
		issues = append(issues, ValidationIssue{"updated_at", "missing updated_at", SeverityError})
	}
	if !intent.CreatedAt.IsZero() && !intent.UpdatedAt.IsZero() && intent.CreatedAt.After(intent.UpdatedAt) {
		issues = append(issues, ValidationIssue{"updated_at", "updated_at precedes created_at", SeverityError})
	}

	if intent.Version < 0 {
		issues = append(issues, ValidationIssue{"version", "version must be a positive integer, defaulting to 1", SeverityWarning})
	}

	for _, rs := range intent.RelatedSpecs {
		if !validRelatedSpecType[rs.Type] || rs.Ref == "" {
			issues = append(issues, ValidationIssue{"related_specs", "malformed related_specs entry", SeverityWarning})
			break
		}
	}

	if intent.ParentIntent != "" && !types.IDPattern.MatchString(intent.ParentIntent) {
		issues = append(issues, ValidationIssue{"parent_intent", "malformed parent_intent", SeverityWarning})
	}

	return issues
}

var validRelatedSpecType = map[types.RelatedSpecType]bool{
	types.RelatedSpecKit:      true,
	types.RelatedGitHubIssue:  true,
	types.RelatedGitHubPR:     true,
	types.RelatedConstitution: true,
	types.RelatedExternal:     true,
}
