package engine

// toolClass is the compile-time category a tool name belongs to for
// gating purposes. A tool absent from every set is "unclassified".
type toolClass int

const (
	classUnclassified toolClass = iota
	classExempt
	classWrite
	classDestructive
)

var exemptTools = map[string]bool{
	"read_file":                  true,
	"list_files":                 true,
	"search_files":               true,
	"ask_followup_question":      true,
	"switch_mode":                true,
	"select_active_intent":       true,
	"verify_acceptance_criteria": true,
	"update_todo_list":           true,
}

var writeTools = map[string]bool{
	"write_to_file":      true,
	"apply_diff":         true,
	"edit":               true,
	"search_and_replace": true,
	"search_replace":     true,
	"edit_file":          true,
	"apply_patch":        true,
	"insert_code_block":  true,
}

var destructiveTools = map[string]bool{
	"execute_command": true,
	"delete_file":     true,
}

func classify(toolName string) toolClass {
	switch {
	case exemptTools[toolName]:
		return classExempt
	case writeTools[toolName]:
		return classWrite
	case destructiveTools[toolName]:
		return classDestructive
	default:
		return classUnclassified
	}
}
