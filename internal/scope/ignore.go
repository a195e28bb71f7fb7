package scope

import (
	"bufio"
	"os"
	"strings"

	"github.com/orchestrated/intentgate/internal/logging"
)

var log = logging.Component("scope")

// IgnoreList is a compiled .intentignore file: a gitignore subset.
// Blank lines and "#" comments are skipped. A trailing "/" marks a
// directory prefix and is expanded to "**". Negation ("!") is parsed
// but has no effect in this version — see LoadIgnoreList.
type IgnoreList struct {
	matchers []*Matcher
}

// LoadIgnoreList reads path and compiles its patterns. A missing file
// yields an empty, always-false IgnoreList rather than an error: the
// ignore list is optional.
func LoadIgnoreList(path string) *IgnoreList {
	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("failed to read ignore list")
		}
		return &IgnoreList{}
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Negation is recognized but inert: strip the marker so the
		// pattern still compiles, but it contributes to the ignore set
		// like any other entry rather than excluding from it.
		line = strings.TrimPrefix(line, "!")

		if strings.HasSuffix(line, "/") {
			line = strings.TrimSuffix(line, "/") + "/**"
		}

		patterns = append(patterns, line)
	}

	return &IgnoreList{matchers: CompileAll(patterns)}
}

// IsIgnored reports whether relPath matches any pattern in the list.
func (l *IgnoreList) IsIgnored(relPath string) bool {
	if l == nil {
		return false
	}
	return MatchAny(relPath, l.matchers)
}
