package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agenthub/hubctl/pkg/models"
	"gopkg.in/yaml.v3"
)

const completedTasksHeading = "## Completed Tasks"

// AgentFiles manages the narrow per-agent side documents under
// agents/<agentID>/: the current-focus file and the completed-task log.
type AgentFiles interface {
	WriteFocus(agentID string, task models.TaskRecord, startedAt time.Time) error
	AppendCompletedTask(agentID string, entry CompletedTaskEntry) error
	ReadFocus(agentID string) (string, error)
}

// CompletedTaskEntry is one completion record appended to an agent's
// completed-task log.
type CompletedTaskEntry struct {
	TaskID       string
	Duration     string
	CompletedAt  time.Time
	Deliverables []string
	Notes        string
}

type fileAgentFiles struct {
	basePath string
}

// NewAgentFiles creates an AgentFiles store rooted at the hub base directory.
func NewAgentFiles(basePath string) AgentFiles {
	return &fileAgentFiles{basePath: basePath}
}

func (a *fileAgentFiles) agentDir(agentID string) string {
	return filepath.Join(a.basePath, "agents", agentID)
}

// focusFrontmatter is the YAML frontmatter of the current-focus file.
type focusFrontmatter struct {
	Agent     string `yaml:"agent"`
	TaskID    string `yaml:"task_id"`
	Priority  string `yaml:"priority,omitempty"`
	Started   string `yaml:"started"`
	Estimated string `yaml:"estimated_hours,omitempty"`
	Standards string `yaml:"coding_standards,omitempty"`
	Status    string `yaml:"status"`
}

// WriteFocus renders the agent's current task into its current_focus.md,
// replacing any previous focus.
func (a *fileAgentFiles) WriteFocus(agentID string, task models.TaskRecord, startedAt time.Time) error {
	dir := a.agentDir(agentID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("writing focus for %s: creating dir: %w", agentID, err)
	}

	fm := focusFrontmatter{
		Agent:     agentID,
		TaskID:    task.TaskID,
		Priority:  string(task.Priority),
		Started:   startedAt.Format("2006-01-02 15:04"),
		Estimated: task.EstimatedHours,
		Standards: task.CodingStandard,
		Status:    "working",
	}
	fmBytes, err := yaml.Marshal(fm)
	if err != nil {
		return fmt.Errorf("writing focus for %s: marshaling frontmatter: %w", agentID, err)
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(fmBytes)
	sb.WriteString("---\n\n")
	sb.WriteString("## Description\n\n")
	if task.Description != "" {
		sb.WriteString(task.Description)
	} else {
		sb.WriteString("No description provided.")
	}
	sb.WriteString("\n\n## Deliverables\n")
	for _, item := range task.Deliverables {
		sb.WriteString(fmt.Sprintf("- %s\n", item))
	}
	sb.WriteString("\n## Dependencies\n")
	for _, dep := range task.Dependencies {
		sb.WriteString(fmt.Sprintf("- %s\n", dep))
	}
	sb.WriteString("\n## Context\n\n")
	if task.Context != "" {
		sb.WriteString(task.Context)
	} else {
		sb.WriteString("No additional context.")
	}
	sb.WriteString("\n")

	path := filepath.Join(dir, "current_focus.md")
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("writing focus for %s: %w", agentID, err)
	}
	return nil
}

// ReadFocus returns the raw current-focus document, or ErrNotFound when the
// agent has no focus file.
func (a *fileAgentFiles) ReadFocus(agentID string) (string, error) {
	data, err := os.ReadFile(filepath.Join(a.agentDir(agentID), "current_focus.md"))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("reading focus for %s: %w", agentID, ErrNotFound)
		}
		return "", fmt.Errorf("reading focus for %s: %w", agentID, err)
	}
	return string(data), nil
}

// AppendCompletedTask inserts a completion entry directly after the
// "## Completed Tasks" heading of the agent's log, newest first. The log is
// created with its heading on first use.
func (a *fileAgentFiles) AppendCompletedTask(agentID string, entry CompletedTaskEntry) error {
	dir := a.agentDir(agentID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("logging completed task for %s: creating dir: %w", agentID, err)
	}

	path := filepath.Join(dir, "completed_tasks.md")
	content := completedTasksHeading + "\n"
	if data, err := os.ReadFile(path); err == nil {
		content = string(data)
	}
	if !strings.Contains(content, completedTasksHeading) {
		content = completedTasksHeading + "\n" + content
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("\n#### Task: %s\n", entry.TaskID))
	if entry.Duration != "" {
		sb.WriteString(fmt.Sprintf("- **Duration**: %s\n", entry.Duration))
	}
	sb.WriteString(fmt.Sprintf("- **Completed**: %s\n", entry.CompletedAt.Format("2006-01-02 15:04:05")))
	if len(entry.Deliverables) > 0 {
		sb.WriteString("- **Deliverables**:\n")
		for _, item := range entry.Deliverables {
			sb.WriteString(fmt.Sprintf("  - %s\n", item))
		}
	}
	if entry.Notes != "" {
		sb.WriteString(fmt.Sprintf("- **Notes**: %s\n", entry.Notes))
	}

	content = strings.Replace(content, completedTasksHeading, completedTasksHeading+"\n"+sb.String(), 1)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("logging completed task for %s: %w", agentID, err)
	}
	return nil
}
