// Package spatial maintains the human-editable markdown map that
// records which files belong to which intent. The map is informational
// only: its absence or staleness is never a fault.
package spatial

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/orchestrated/intentgate/internal/logging"
	"github.com/orchestrated/intentgate/internal/types"
)

var log = logging.Component("spatial")

const defaultHeader = "# Spatial Index\n\nMaps files to the intents that own them.\n"

// Index manipulates the spatial map file at path.
type Index struct {
	path string
}

// New creates an Index backed by the map file at path.
func New(path string) *Index {
	return &Index{path: path}
}

// AddFileToIntent records relPath as belonging to intentID, creating
// the map file and the intent's section if necessary. If mutationClass
// is MutationIntentEvolution, an evolution-log entry is also appended.
// All failures are logged and swallowed.
func (idx *Index) AddFileToIntent(intentID, relPath string, intentName string, mutationClass types.MutationClass, now time.Time) {
	content, err := idx.read()
	if err != nil {
		log.Warn().Err(err).Msg("failed to read spatial map")
		return
	}

	lines := splitLines(content)
	sectionStart, sectionEnd := findSection(lines, intentID)

	if sectionStart == -1 {
		lines = appendSection(lines, intentID, intentName, relPath)
	} else if !sectionContainsPath(lines[sectionStart:sectionEnd], relPath) {
		lines = insertIntoFilesList(lines, sectionStart, sectionEnd, relPath)
	}

	if mutationClass == types.MutationIntentEvolution {
		lines = ensureEvolutionEntry(lines, intentID, relPath, now)
	}

	if err := idx.write(strings.Join(lines, "\n")); err != nil {
		log.Warn().Err(err).Msg("failed to write spatial map")
	}
}

// ListFilesForIntent returns the file paths listed under intentID's
// section, in file order. Returns nil if the map or the section is
// absent.
func (idx *Index) ListFilesForIntent(intentID string) []string {
	content, err := idx.read()
	if err != nil {
		return nil
	}

	lines := splitLines(content)
	sectionStart, sectionEnd := findSection(lines, intentID)
	if sectionStart == -1 {
		return nil
	}

	var files []string
	for _, line := range lines[sectionStart:sectionEnd] {
		if isFileListLine(line) {
			files = append(files, strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-")))
		}
	}
	return files
}

// RemoveFileFromIntent removes every line inside the intent's section
// that references relPath. No-op if the file or section is absent.
func (idx *Index) RemoveFileFromIntent(intentID, relPath string) {
	content, err := idx.read()
	if err != nil {
		log.Warn().Err(err).Msg("failed to read spatial map")
		return
	}

	lines := splitLines(content)
	sectionStart, sectionEnd := findSection(lines, intentID)
	if sectionStart == -1 {
		return
	}

	var kept []string
	kept = append(kept, lines[:sectionStart]...)
	for _, line := range lines[sectionStart:sectionEnd] {
		if strings.Contains(line, relPath) && isFileListLine(line) {
			continue
		}
		kept = append(kept, line)
	}
	kept = append(kept, lines[sectionEnd:]...)

	if err := idx.write(strings.Join(kept, "\n")); err != nil {
		log.Warn().Err(err).Msg("failed to write spatial map")
	}
}

func (idx *Index) read() (string, error) {
	data, err := os.ReadFile(idx.path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultHeader, nil
		}
		return "", err
	}
	return string(data), nil
}

func (idx *Index) write(content string) error {
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return os.WriteFile(idx.path, []byte(content), 0o644)
}

func splitLines(content string) []string {
	return strings.Split(strings.TrimRight(content, "\n"), "\n")
}

// findSection returns the [start, end) line index range of the
// section headed by "## <intentID>", end being the index of the next
// "## " header or len(lines). Returns (-1, -1) if absent.
func findSection(lines []string, intentID string) (int, int) {
	prefix := "## " + intentID
	start := -1
	for i, line := range lines {
		if start == -1 && strings.HasPrefix(line, prefix) {
			start = i
			continue
		}
		if start != -1 && i > start && strings.HasPrefix(line, "## ") {
			return start, i
		}
	}
	if start == -1 {
		return -1, -1
	}
	return start, len(lines)
}

func sectionContainsPath(section []string, relPath string) bool {
	for _, line := range section {
		if isFileListLine(line) && strings.Contains(line, relPath) {
			return true
		}
	}
	return false
}

func isFileListLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "- ") && !strings.Contains(trimmed, "_[EVOLUTION")
}

func appendSection(lines []string, intentID, intentName, relPath string) []string {
	header := "## " + intentID
	if intentName != "" {
		header += ": " + intentName
	}

	insertAt := trailingFooterStart(lines)

	section := []string{"", header, "", "### Files", "", "- " + relPath, ""}
	out := make([]string, 0, len(lines)+len(section))
	out = append(out, lines[:insertAt]...)
	out = append(out, section...)
	out = append(out, lines[insertAt:]...)
	return out
}

// trailingFooterStart finds where a trailing horizontal rule ("---")
// or an italicized footer line begins, so new sections are inserted
// before it rather than after.
func trailingFooterStart(lines []string) int {
	i := len(lines)
	for i > 0 {
		trimmed := strings.TrimSpace(lines[i-1])
		if trimmed == "" {
			i--
			continue
		}
		if trimmed == "---" || (strings.HasPrefix(trimmed, "_") && strings.HasSuffix(trimmed, "_")) {
			i--
			continue
		}
		break
	}
	return i
}

func insertIntoFilesList(lines []string, sectionStart, sectionEnd int, relPath string) []string {
	lastContent := sectionStart
	for i := sectionStart; i < sectionEnd; i++ {
		if strings.TrimSpace(lines[i]) != "" {
			lastContent = i
		}
	}

	entry := "- " + relPath
	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:lastContent+1]...)
	out = append(out, entry)
	out = append(out, lines[lastContent+1:]...)
	return out
}

func ensureEvolutionEntry(lines []string, intentID, relPath string, now time.Time) []string {
	sectionStart, sectionEnd := findSection(lines, intentID)
	if sectionStart == -1 {
		return lines
	}

	evoHeaderIdx := -1
	for i := sectionStart; i < sectionEnd; i++ {
		if strings.TrimSpace(lines[i]) == "### Evolution Log" {
			evoHeaderIdx = i
			break
		}
	}

	date := now.UTC().Format("2006-01-02")
	marker := fmt.Sprintf("_[EVOLUTION %s]_ %s", date, relPath)
	entry := marker + " — new behavior added"

	if evoHeaderIdx != -1 {
		for i := evoHeaderIdx; i < sectionEnd; i++ {
			if strings.Contains(lines[i], marker) {
				return lines
			}
		}
	}

	if evoHeaderIdx == -1 {
		// No evolution log yet: append one at the end of the section.
		insertAt := sectionEnd
		for insertAt > sectionStart && strings.TrimSpace(lines[insertAt-1]) == "" {
			insertAt--
		}
		block := []string{"", "### Evolution Log", "", entry}
		out := make([]string, 0, len(lines)+len(block))
		out = append(out, lines[:insertAt]...)
		out = append(out, block...)
		out = append(out, lines[insertAt:]...)
		return out
	}

	// Append after the last non-empty line of the existing evolution log.
	lastContent := evoHeaderIdx
	for i := evoHeaderIdx; i < sectionEnd; i++ {
		if strings.TrimSpace(lines[i]) != "" {
			lastContent = i
		}
	}
	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:lastContent+1]...)
	out = append(out, entry)
	out = append(out, lines[lastContent+1:]...)
	return out
}
