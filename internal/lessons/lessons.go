// Package lessons records governance failures into the shared brain
// file so future sessions learn from past scope violations and stale
// reads without a human having to explain them again.
package lessons

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/orchestrated/intentgate/internal/logging"
)

var log = logging.Component("lessons")

const sectionHeader = "## Lessons Learned"

// Recorder appends dated lesson entries to the brain file at path.
// All writes are best-effort: failures are logged, never thrown, since
// calls are expected to be fire-and-forget from the engine.
type Recorder struct {
	path string
}

// New creates a Recorder backed by the brain file at path.
func New(path string) *Recorder {
	return &Recorder{path: path}
}

// Lesson is one governance-failure note.
type Lesson struct {
	IntentID    string
	ToolName    string
	Category    string
	Description string
}

// RecordLesson appends a dated entry to the Lessons Learned section,
// creating the file and the section if either is absent.
func (r *Recorder) RecordLesson(l Lesson, now time.Time) {
	content, err := r.read()
	if err != nil {
		log.Warn().Err(err).Msg("failed to read brain file")
		return
	}

	updated := insertLesson(content, l, now)

	if err := os.WriteFile(r.path, []byte(updated), 0o644); err != nil {
		log.Warn().Err(err).Msg("failed to write brain file")
	}
}

// RecordScopeViolation is a convenience wrapper pre-filling category
// and description for a path falling outside owned_scope.
func (r *Recorder) RecordScopeViolation(intentID, toolName, path string, now time.Time) {
	r.RecordLesson(Lesson{
		IntentID:    intentID,
		ToolName:    toolName,
		Category:    "scope-violation",
		Description: fmt.Sprintf("attempted to modify %q outside the intent's owned_scope", path),
	}, now)
}

// RecordHashMismatch is a convenience wrapper pre-filling category and
// description for a stale-read rejection.
func (r *Recorder) RecordHashMismatch(intentID, toolName, path string, now time.Time) {
	r.RecordLesson(Lesson{
		IntentID:    intentID,
		ToolName:    toolName,
		Category:    "stale-read",
		Description: fmt.Sprintf("cached hash for %q disagreed with the file's current content before mutation", path),
	}, now)
}

func (r *Recorder) read() (string, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "# Brain\n", nil
		}
		return "", err
	}
	return string(data), nil
}

func insertLesson(content string, l Lesson, now time.Time) string {
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")

	headerIdx := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == sectionHeader {
			headerIdx = i
			break
		}
	}

	entry := []string{
		"",
		fmt.Sprintf("### %s: %s (%s)", now.UTC().Format("2006-01-02"), l.Category, l.IntentID),
		fmt.Sprintf("- Tool: %s", l.ToolName),
		fmt.Sprintf("- Issue: %s", l.Description),
		fmt.Sprintf("- Intent: %s", l.IntentID),
	}

	if headerIdx == -1 {
		lines = append(lines, "", sectionHeader)
		lines = append(lines, entry...)
		return strings.Join(lines, "\n") + "\n"
	}

	// Insert just before the next "## " header, or at end of file.
	insertAt := len(lines)
	for i := headerIdx + 1; i < len(lines); i++ {
		if strings.HasPrefix(lines[i], "## ") {
			insertAt = i
			break
		}
	}
	for insertAt > headerIdx+1 && strings.TrimSpace(lines[insertAt-1]) == "" {
		insertAt--
	}

	out := make([]string, 0, len(lines)+len(entry))
	out = append(out, lines[:insertAt]...)
	out = append(out, entry...)
	out = append(out, lines[insertAt:]...)
	return strings.Join(out, "\n") + "\n"
}
