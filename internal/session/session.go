// Package session implements the advisory, cooperative presence table
// multiple concurrent assistant sessions write to in the shared brain
// file. It imposes no lock: the hook engine's content-hash optimistic
// locking is the actual correctness guard. This package only helps sessions avoid
// stepping on each other's claimed intents.
package session

import (
	"os"
	"strings"
	"time"

	"github.com/orchestrated/intentgate/internal/logging"
)

var log = logging.Component("session")

const (
	tableHeader    = "## Active Sessions"
	staleThreshold = 5 * time.Minute
)

// Info is one parsed row of the Active Sessions table.
type Info struct {
	SessionID string
	IntentID  string
	Timestamp time.Time
}

// Coordinator reads and writes the Active Sessions table in the brain
// file at path.
type Coordinator struct {
	path string
}

// New creates a Coordinator backed by the brain file at path.
func New(path string) *Coordinator {
	return &Coordinator{path: path}
}

// Heartbeat upserts one row for sessionID. intentID may be empty to
// mean "none". If the brain file does not exist, Heartbeat does
// nothing: cooperation requires the brain to already exist.
func (c *Coordinator) Heartbeat(sessionID, intentID string, now time.Time) {
	content, err := os.ReadFile(c.path)
	if err != nil {
		return
	}

	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	headerIdx, rows := findTable(lines)
	if headerIdx == -1 {
		return
	}

	display := intentID
	if display == "" {
		display = "none"
	}
	newRow := formatRow(sessionID, display, now)

	replaced := false
	for i, row := range rows {
		info, ok := parseRow(row)
		if ok && info.SessionID == sessionID {
			rows[i] = newRow
			replaced = true
			break
		}
	}
	if !replaced {
		rows = append(rows, newRow)
	}

	if err := c.writeTable(lines, headerIdx, rows); err != nil {
		log.Warn().Err(err).Msg("failed to write session heartbeat")
	}
}

// ListSessions parses the Active Sessions table, skipping the header
// and separator rows. Malformed rows are skipped.
func (c *Coordinator) ListSessions() []Info {
	content, err := os.ReadFile(c.path)
	if err != nil {
		return nil
	}

	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	headerIdx, rows := findTable(lines)
	if headerIdx == -1 {
		return nil
	}

	var infos []Info
	for _, row := range rows {
		if info, ok := parseRow(row); ok {
			infos = append(infos, info)
		}
	}
	return infos
}

// IsIntentClaimedByOther reports whether any session other than
// sessionID currently has intentID recorded against it.
func (c *Coordinator) IsIntentClaimedByOther(sessionID, intentID string) bool {
	for _, info := range c.ListSessions() {
		if info.IntentID == intentID && info.SessionID != sessionID {
			return true
		}
	}
	return false
}

// CleanupStaleSessions removes rows whose timestamp is older than five
// minutes relative to now, writing back only if anything was removed.
// Returns the number of rows removed.
func (c *Coordinator) CleanupStaleSessions(now time.Time) int {
	content, err := os.ReadFile(c.path)
	if err != nil {
		return 0
	}

	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	headerIdx, rows := findTable(lines)
	if headerIdx == -1 {
		return 0
	}

	var kept []string
	removed := 0
	for _, row := range rows {
		info, ok := parseRow(row)
		if ok && now.Sub(info.Timestamp) > staleThreshold {
			removed++
			continue
		}
		kept = append(kept, row)
	}

	if removed == 0 {
		return 0
	}

	if err := c.writeTable(lines, headerIdx, kept); err != nil {
		log.Warn().Err(err).Msg("failed to write session table after cleanup")
		return 0
	}
	return removed
}

// findTable locates the Active Sessions header and the slice of data
// rows that follow its table up to the next "## " header or end of
// file.
func findTable(lines []string) (headerIdx int, rows []string) {
	headerIdx = -1
	for i, line := range lines {
		if strings.TrimSpace(line) == tableHeader {
			headerIdx = i
			break
		}
	}
	if headerIdx == -1 {
		return -1, nil
	}

	start := headerIdx + 1
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	if start < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[start]), "|") {
		start++
		if start < len(lines) && isSeparatorRow(lines[start]) {
			start++
		}
	}

	end := sectionEnd(lines, headerIdx)
	for i := start; i < end; i++ {
		if strings.TrimSpace(lines[i]) != "" {
			rows = append(rows, lines[i])
		}
	}
	return headerIdx, rows
}

// sectionEnd returns the index of the next "## " header after
// headerIdx, or len(lines) if there is none.
func sectionEnd(lines []string, headerIdx int) int {
	for i := headerIdx + 1; i < len(lines); i++ {
		if strings.HasPrefix(lines[i], "## ") {
			return i
		}
	}
	return len(lines)
}

func isSeparatorRow(line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "|") {
		return false
	}
	return strings.Trim(trimmed, "|- ") == ""
}

// writeTable replaces the entire Active Sessions section (header
// through the line before the next "## " header) with a freshly
// rendered table containing rows, leaving everything outside that
// range untouched.
func (c *Coordinator) writeTable(lines []string, headerIdx int, rows []string) error {
	end := sectionEnd(lines, headerIdx)

	var out []string
	out = append(out, lines[:headerIdx+1]...)
	out = append(out, "", "| session | intent | timestamp |", "|---|---|---|")
	out = append(out, rows...)
	out = append(out, "")
	out = append(out, lines[end:]...)

	return os.WriteFile(c.path, []byte(strings.Join(out, "\n")+"\n"), 0o644)
}

func formatRow(sessionID, intentDisplay string, t time.Time) string {
	return "| " + sessionID + " | " + intentDisplay + " | " + t.UTC().Format(time.RFC3339) + " |"
}

func parseRow(row string) (Info, bool) {
	trimmed := strings.TrimSpace(row)
	if !strings.HasPrefix(trimmed, "|") {
		return Info{}, false
	}

	fields := strings.Split(trimmed, "|")
	// fields[0] and fields[len-1] are empty from the leading/trailing "|".
	var cells []string
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			cells = append(cells, f)
		}
	}
	if len(cells) != 3 {
		return Info{}, false
	}

	ts, err := time.Parse(time.RFC3339, cells[2])
	if err != nil {
		return Info{}, false
	}

	intentID := cells[1]
	if intentID == "none" {
		intentID = ""
	}

	return Info{SessionID: cells[0], IntentID: intentID, Timestamp: ts}, true
}
