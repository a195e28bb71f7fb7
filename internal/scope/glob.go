// Package scope implements the workspace-relative glob matching that
// gates file-mutating tool calls against an intent's owned_scope, plus
// the .intentignore matcher and the mutation-class heuristic.
package scope

import (
	"regexp"
	"strings"
)

// Matcher is a compiled glob pattern.
type Matcher struct {
	source string
	re     *regexp.Regexp
}

// Compile turns a glob pattern into an anchored regular expression.
// Supported syntax:
//
//	**   any number of path segments, including zero
//	*    any run of characters excluding "/"
//	?    exactly one character excluding "/"
//
// Everything else matches literally; regex metacharacters are escaped.
func Compile(pattern string) *Matcher {
	pattern = normalizePath(pattern)
	return &Matcher{source: pattern, re: regexp.MustCompile("^" + translate(pattern) + "$")}
}

// Match reports whether relPath matches the compiled pattern.
func (m *Matcher) Match(relPath string) bool {
	return m.re.MatchString(normalizePath(relPath))
}

// String returns the original, normalized pattern.
func (m *Matcher) String() string { return m.source }

// normalizePath replaces backslashes with forward slashes so patterns
// and paths from Windows-style tool output compare correctly.
func normalizePath(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// translate converts one normalized glob pattern into the body of an
// anchored regular expression (no leading "^" or trailing "$").
func translate(pattern string) string {
	var out strings.Builder
	runes := []rune(pattern)

	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch c {
		case '*':
			if i+1 < len(runes) && runes[i+1] == '*' {
				// "**" — any number of segments, including zero.
				// Consume an immediately following "/" so "**/" still
				// matches zero intervening segments.
				i++
				if i+1 < len(runes) && runes[i+1] == '/' {
					i++
					out.WriteString("(?:.*/)?")
				} else {
					out.WriteString(".*")
				}
			} else {
				out.WriteString("[^/]*")
			}
		case '?':
			out.WriteString("[^/]")
		default:
			out.WriteString(regexp.QuoteMeta(string(c)))
		}
	}

	return out.String()
}

// IsInScope reports whether relPath matches at least one pattern in
// patterns. Patterns are compiled on every call; callers touching a
// fixed pattern set repeatedly should compile once with CompileAll.
func IsInScope(relPath string, patterns []string) bool {
	for _, p := range patterns {
		if Compile(p).Match(relPath) {
			return true
		}
	}
	return false
}

// CompileAll compiles every pattern in patterns, in order.
func CompileAll(patterns []string) []*Matcher {
	matchers := make([]*Matcher, 0, len(patterns))
	for _, p := range patterns {
		matchers = append(matchers, Compile(p))
	}
	return matchers
}

// MatchAny reports whether relPath matches any of the compiled matchers.
func MatchAny(relPath string, matchers []*Matcher) bool {
	norm := normalizePath(relPath)
	for _, m := range matchers {
		if m.re.MatchString(norm) {
			return true
		}
	}
	return false
}
