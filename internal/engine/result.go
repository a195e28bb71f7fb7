package engine

// PreResult is the outcome of a preToolUse gate check. Exactly one of
// Allowed's sub-fields is meaningful depending on how the call was
// permitted; Reason is set iff Allowed is false.
type PreResult struct {
	Allowed  bool
	Reason   string
	PreHash  *string
	Metadata map[string]bool
}

func allow(metadata map[string]bool, preHash *string) PreResult {
	return PreResult{Allowed: true, Metadata: metadata, PreHash: preHash}
}

func deny(reason string) PreResult {
	return PreResult{Allowed: false, Reason: reason}
}
