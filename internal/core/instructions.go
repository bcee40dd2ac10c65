// Package core contains the coordination logic for the agent communication
// hub: instruction document parsing, the per-agent monitor loop, progress
// reporting, and configuration.
package core

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/agenthub/hubctl/pkg/models"
)

// taskBlockPattern matches fenced JSON blocks embedded in the instructions
// document. Only the first top-level object inside each fence is considered.
var taskBlockPattern = regexp.MustCompile("```json\\s*(\\{[\\s\\S]*?\\})\\s*```")

// lastUpdatePattern matches the human-authored "Last Updated" field.
var lastUpdatePattern = regexp.MustCompile(`\*\*Last Updated\*\*:\s*([^\n]+)`)

// ParseTasks extracts task records from the raw instructions text. Fenced
// blocks that fail to decode, or that lack task_id or assigned_to, are
// skipped rather than reported: non-task fenced blocks (format examples,
// illustrations) are expected to appear in the document.
func ParseTasks(content string) []models.TaskRecord {
	var tasks []models.TaskRecord
	for _, match := range taskBlockPattern.FindAllStringSubmatch(content, -1) {
		var task models.TaskRecord
		if err := json.Unmarshal([]byte(match[1]), &task); err != nil {
			continue
		}
		if task.TaskID == "" || task.AssignedTo == "" {
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks
}

// ParseDelimiters returns the set of control delimiters present in the text.
// Duplicate occurrences collapse to single membership.
func ParseDelimiters(content string) map[models.Delimiter]bool {
	present := make(map[models.Delimiter]bool)
	for _, d := range models.AllDelimiters {
		if strings.Contains(content, d.Token()) {
			present[d] = true
		}
	}
	return present
}

// DeriveStatus computes the single communication status from the delimiters
// present. Precedence is fixed: a closed conversation always wins over any
// open signal, and a fresh assignment is reported before older pending
// signals.
func DeriveStatus(delimiters map[models.Delimiter]bool) models.CommunicationStatus {
	switch {
	case delimiters[models.DelimiterCommunicationOver]:
		return models.StatusComplete
	case delimiters[models.DelimiterTaskAssigned]:
		return models.StatusTaskAssigned
	case delimiters[models.DelimiterUrgent]:
		return models.StatusUrgent
	case delimiters[models.DelimiterQuestion]:
		return models.StatusQuestionPending
	case delimiters[models.DelimiterBlocked]:
		return models.StatusBlocked
	default:
		return models.StatusActive
	}
}

// LastUpdateLabel extracts the "Last Updated" field if present. It returns
// an empty string when the pattern is not found; extraction never fails.
func LastUpdateLabel(content string) string {
	match := lastUpdatePattern.FindStringSubmatch(content)
	if match == nil {
		return ""
	}
	return strings.TrimSpace(match[1])
}

// ParseInstructions parses raw instructions text into tasks, delimiters, the
// last-update label, and the derived communication status.
func ParseInstructions(content string) models.ParsedInstructions {
	delimiters := ParseDelimiters(content)
	return models.ParsedInstructions{
		Tasks:      ParseTasks(content),
		Delimiters: delimiters,
		LastUpdate: LastUpdateLabel(content),
		Status:     DeriveStatus(delimiters),
	}
}

// AppendSection inserts content immediately before the first occurrence of
// the marker token. If the marker is absent the content is appended at the
// end. Duplicate appends are the caller's responsibility.
func AppendSection(content, marker, section string) string {
	idx := strings.Index(content, marker)
	if idx < 0 {
		if !strings.HasSuffix(content, "\n") && content != "" {
			content += "\n"
		}
		return content + section
	}
	return content[:idx] + section + "\n\n" + content[idx:]
}

// RenderTaskBlock serializes a task record as a fenced JSON block suitable
// for embedding in the instructions document.
func RenderTaskBlock(task models.TaskRecord) (string, error) {
	data, err := json.MarshalIndent(task, "", "  ")
	if err != nil {
		return "", fmt.Errorf("rendering task block: %w", err)
	}
	return "```json\n" + string(data) + "\n```", nil
}

// InstructionsDoc wraps the shared instructions document on disk.
type InstructionsDoc struct {
	path string
}

// NewInstructionsDoc returns a handle on the instructions document at path.
func NewInstructionsDoc(path string) *InstructionsDoc {
	return &InstructionsDoc{path: path}
}

// Path returns the document's location on disk.
func (d *InstructionsDoc) Path() string {
	return d.path
}

// ModTime returns the document's last modification instant.
func (d *InstructionsDoc) ModTime() (time.Time, error) {
	info, err := os.Stat(d.path)
	if err != nil {
		return time.Time{}, fmt.Errorf("checking instructions document: %w", err)
	}
	return info.ModTime(), nil
}

// Parse reads and parses the document. A missing document is a hard failure
// reported to the caller, never silently treated as "active".
func (d *InstructionsDoc) Parse() (models.ParsedInstructions, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		return models.ParsedInstructions{}, fmt.Errorf("reading instructions document: %w", err)
	}
	return ParseInstructions(string(data)), nil
}

// Append inserts a section before the first occurrence of marker and writes
// the document back.
func (d *InstructionsDoc) Append(marker, section string) error {
	data, err := os.ReadFile(d.path)
	if err != nil {
		return fmt.Errorf("reading instructions document: %w", err)
	}
	updated := AppendSection(string(data), marker, section)
	if err := os.WriteFile(d.path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing instructions document: %w", err)
	}
	return nil
}
