package types

import "errors"

// Sentinel errors for the intent gate contract. Using sentinels allows
// callers to match with errors.Is instead of parsing message text.
var (
	// ErrNoActiveIntent names the case of a write/destructive tool call
	// that carries no intent id. PreToolUse reports this case as a denied
	// PreResult reason; it does not return this error.
	ErrNoActiveIntent = errors.New("no active intent")

	// ErrIntentNotFound is returned when an intent id is absent from the
	// catalog.
	ErrIntentNotFound = errors.New("intent not found")

	// ErrIntentNotActionable is returned when an intent's status is not
	// IN_PROGRESS at the time a write is attempted.
	ErrIntentNotActionable = errors.New("intent not actionable")

	// ErrScopeViolation names the case of a path outside an intent's
	// owned_scope. PreToolUse reports this case as a denied PreResult
	// reason; it does not return this error.
	ErrScopeViolation = errors.New("scope violation")

	// ErrStaleFile names the case of a cached content hash that disagrees
	// with the file's current content hash. PreToolUse reports this case
	// as a denied PreResult reason; it does not return this error.
	ErrStaleFile = errors.New("stale file")

	// ErrHITLRejected names the case of a human reviewer declining a
	// destructive operation. PreToolUse reports this case as a denied
	// PreResult reason; it does not return this error.
	ErrHITLRejected = errors.New("hitl rejected")

	// ErrIllegalTransition is returned when a lifecycle transition is not
	// in the allowed transition table.
	ErrIllegalTransition = errors.New("illegal lifecycle transition")

	// ErrCatalogParse is returned internally when the catalog file fails
	// to parse; callers of the public loader never see this error because
	// the catalog fails open to an empty catalog.
	ErrCatalogParse = errors.New("catalog parse error")
)
