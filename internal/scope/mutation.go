package scope

import "github.com/orchestrated/intentgate/internal/types"

// astRefactorTools mutate existing content in place.
var astRefactorTools = map[string]bool{
	"apply_diff":         true,
	"edit":               true,
	"search_and_replace": true,
	"search_replace":     true,
	"edit_file":          true,
	"apply_patch":        true,
}

// ClassifyMutation assigns a MutationClass using the heuristic in spec
// §4.1. preHash being nil means the file did not exist before the
// call, which always implies FILE_CREATION regardless of tool name.
func ClassifyMutation(toolName string, preHash *string) types.MutationClass {
	switch {
	case preHash == nil:
		return types.MutationFileCreation
	case astRefactorTools[toolName]:
		return types.MutationASTRefactor
	case toolName == "write_to_file":
		return types.MutationIntentEvolution
	case toolName == "execute_command":
		return types.MutationConfiguration
	default:
		return types.MutationIntentEvolution
	}
}
