package core

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/agenthub/hubctl/internal/storage"
	"github.com/agenthub/hubctl/pkg/models"
)

const progressUpdatesHeading = "## Progress Updates"

// AgentMetrics is the per-agent slice of a progress report.
type AgentMetrics struct {
	Status              models.AgentState `json:"current_status"`
	CurrentTask         string            `json:"current_task,omitempty"`
	TasksCompletedToday int               `json:"tasks_completed_today"`
	TotalHoursLogged    float64           `json:"total_hours_logged"`
	Availability        bool              `json:"availability"`
	MinutesSinceActive  float64           `json:"minutes_since_activity"`
	ProductivityScore   int               `json:"productivity_score"`
}

// Recommendation is an advisory line derived from the current state.
type Recommendation struct {
	Type    string `json:"type"` // urgent, attention, improvement, workload
	Message string `json:"message"`
}

// TaskSummary aggregates the assignment store.
type TaskSummary struct {
	ActiveTasks      int `json:"active_tasks"`
	CompletedTasks   int `json:"completed_tasks"`
	TotalAssignments int `json:"total_assignments"`
}

// ProgressReport is a full snapshot of hub health: system status, per-agent
// metrics, task counts, and recommendations. External formatters and chart
// renderers consume this structure.
type ProgressReport struct {
	Timestamp       time.Time                 `json:"timestamp"`
	SystemStatus    models.SystemStatusRecord `json:"system_status"`
	AgentMetrics    map[string]AgentMetrics   `json:"agent_metrics"`
	TaskSummary     TaskSummary               `json:"task_summary"`
	Recommendations []Recommendation          `json:"recommendations"`
}

// ChartRenderer renders per-agent charts from report data. Rendering is an
// external concern; callers may pass a nil renderer.
type ChartRenderer interface {
	RenderScores(scores map[string]int) error
	RenderCompletions(completions map[string]int) error
}

// ProgressTracker generates progress reports and maintains the progress log.
type ProgressTracker interface {
	GenerateReport() (*ProgressReport, error)
	UpdateProgressLog(report *ProgressReport) error
	RenderCharts(report *ProgressReport, renderer ChartRenderer) error
}

type progressTracker struct {
	basePath    string
	status      storage.StatusStore
	assignments storage.AssignmentStore
	now         func() time.Time
}

// NewProgressTracker creates a ProgressTracker over the status and
// assignment stores.
func NewProgressTracker(basePath string, status storage.StatusStore, assignments storage.AssignmentStore) ProgressTracker {
	return &progressTracker{
		basePath:    basePath,
		status:      status,
		assignments: assignments,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// GenerateReport builds a full progress report from the current stores.
func (p *progressTracker) GenerateReport() (*ProgressReport, error) {
	doc, err := p.status.Load()
	if err != nil {
		return nil, fmt.Errorf("generating report: %w", err)
	}

	now := p.now()
	report := &ProgressReport{
		Timestamp:    now,
		SystemStatus: doc.SystemStatus,
		AgentMetrics: make(map[string]AgentMetrics, len(doc.Agents)),
	}

	for agentID, rec := range doc.Agents {
		report.AgentMetrics[agentID] = AgentMetrics{
			Status:              rec.Status,
			CurrentTask:         rec.CurrentTask,
			TasksCompletedToday: rec.CompletedTasksToday,
			TotalHoursLogged:    rec.TotalHoursLogged,
			Availability:        rec.Availability,
			MinutesSinceActive:  rec.MinutesSinceActivity(now),
			ProductivityScore:   rec.ProductivityScore(),
		}
	}

	if index, err := p.assignments.Load(); err == nil {
		report.TaskSummary = TaskSummary{
			ActiveTasks:      len(index.ActiveTasks),
			CompletedTasks:   len(index.CompletedTasks),
			TotalAssignments: len(index.History),
		}
	}

	report.Recommendations = recommend(report)
	return report, nil
}

// recommend derives advisory lines from agent metrics and task load.
func recommend(report *ProgressReport) []Recommendation {
	var recs []Recommendation

	var blocked, idle, lowScore []string
	working := 0
	for agentID, m := range report.AgentMetrics {
		switch {
		case m.Status == models.AgentBlocked:
			blocked = append(blocked, agentID)
		case m.Status == models.AgentWaiting && m.MinutesSinceActive > 60:
			idle = append(idle, agentID)
		}
		if m.ProductivityScore < 30 {
			lowScore = append(lowScore, agentID)
		}
		if m.Status == models.AgentWorking {
			working++
		}
	}
	sort.Strings(blocked)
	sort.Strings(idle)
	sort.Strings(lowScore)

	if len(blocked) > 0 {
		recs = append(recs, Recommendation{
			Type:    "urgent",
			Message: fmt.Sprintf("Agents blocked: %s. Immediate attention required.", strings.Join(blocked, ", ")),
		})
	}
	if len(idle) > 0 {
		recs = append(recs, Recommendation{
			Type:    "attention",
			Message: fmt.Sprintf("Agents idle for >1 hour: %s. Consider task assignment.", strings.Join(idle, ", ")),
		})
	}
	if len(lowScore) > 0 {
		recs = append(recs, Recommendation{
			Type:    "improvement",
			Message: fmt.Sprintf("Low productivity agents: %s. Review task assignments.", strings.Join(lowScore, ", ")),
		})
	}
	if report.TaskSummary.ActiveTasks > working*2 {
		recs = append(recs, Recommendation{
			Type:    "workload",
			Message: fmt.Sprintf("High task-to-agent ratio (%d:%d). Consider load balancing.", report.TaskSummary.ActiveTasks, working),
		})
	}
	return recs
}

// UpdateProgressLog inserts a rendered report entry at the top of the
// progress-updates section of progress_log.md, newest first.
func (p *progressTracker) UpdateProgressLog(report *ProgressReport) error {
	path := filepath.Join(p.basePath, "progress_log.md")

	content := "# Agent Progress Log\n\n" + progressUpdatesHeading + "\n"
	if data, err := os.ReadFile(path); err == nil {
		content = string(data)
	}
	if !strings.Contains(content, progressUpdatesHeading) {
		content += "\n" + progressUpdatesHeading + "\n"
	}

	entry := renderProgressEntry(report)
	content = strings.Replace(content, progressUpdatesHeading, progressUpdatesHeading+"\n"+entry, 1)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("updating progress log: %w", err)
	}
	return nil
}

func renderProgressEntry(report *ProgressReport) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("\n### Progress Update - %s\n\n", report.Timestamp.Format("2006-01-02 15:04:05")))

	hub := "Inactive"
	if report.SystemStatus.CommunicationHubActive {
		hub = "Active"
	}
	sb.WriteString(fmt.Sprintf("- Communication Hub: %s\n", hub))
	sb.WriteString(fmt.Sprintf("- Active Tasks: %d\n", report.TaskSummary.ActiveTasks))
	sb.WriteString(fmt.Sprintf("- Completed Tasks: %d\n", report.TaskSummary.CompletedTasks))

	agentIDs := make([]string, 0, len(report.AgentMetrics))
	for id := range report.AgentMetrics {
		agentIDs = append(agentIDs, id)
	}
	sort.Strings(agentIDs)

	sb.WriteString("\nAgents:\n")
	for _, id := range agentIDs {
		m := report.AgentMetrics[id]
		sb.WriteString(fmt.Sprintf("- **%s**: %s (score %d/100)\n", id, m.Status, m.ProductivityScore))
	}

	if len(report.Recommendations) > 0 {
		sb.WriteString("\nRecommendations:\n")
		for _, rec := range report.Recommendations {
			sb.WriteString(fmt.Sprintf("- [%s] %s\n", rec.Type, rec.Message))
		}
	}

	sb.WriteString("\n---\n")
	return sb.String()
}

// RenderCharts hands the report's per-agent score and completion maps to the
// given renderer. A nil renderer is a no-op.
func (p *progressTracker) RenderCharts(report *ProgressReport, renderer ChartRenderer) error {
	if renderer == nil {
		return nil
	}

	scores := make(map[string]int, len(report.AgentMetrics))
	completions := make(map[string]int, len(report.AgentMetrics))
	for id, m := range report.AgentMetrics {
		scores[id] = m.ProductivityScore
		completions[id] = m.TasksCompletedToday
	}

	if err := renderer.RenderScores(scores); err != nil {
		return fmt.Errorf("rendering score chart: %w", err)
	}
	if err := renderer.RenderCompletions(completions); err != nil {
		return fmt.Errorf("rendering completion chart: %w", err)
	}
	return nil
}
