package core

import (
	"context"
	"fmt"
	"time"

	"github.com/agenthub/hubctl/internal/observability"
	"github.com/agenthub/hubctl/internal/storage"
	"github.com/agenthub/hubctl/pkg/models"
)

// Default polling cadence. Waiting agents poll more frequently than working
// ones: an idle agent needs to notice a new assignment urgently, a working
// agent does not.
const (
	DefaultWaitingInterval = 10 * time.Second
	DefaultWorkingInterval = 60 * time.Second
)

// TaskHandler is invoked for each newly-assigned task. Task execution itself
// lives outside the hub core.
type TaskHandler func(task models.TaskRecord)

// MonitorConfig configures an AgentMonitor.
type MonitorConfig struct {
	AgentID         string
	WaitingInterval time.Duration
	WorkingInterval time.Duration
	Handler         TaskHandler
	// Logf receives loop diagnostics. Defaults to fmt.Printf with a newline.
	Logf func(format string, args ...any)
}

// AgentMonitor is the per-agent coordination loop: it polls the instructions
// document for changes, dispatches newly-assigned tasks, and keeps the
// agent's status record current. One monitor owns one agent; monitors share
// no memory, only the backing documents.
type AgentMonitor struct {
	agentID string
	doc     *InstructionsDoc
	status  storage.StatusStore
	files   storage.AgentFiles
	events  observability.EventLog

	waitingInterval time.Duration
	workingInterval time.Duration
	handler         TaskHandler
	logf            func(format string, args ...any)

	lastModified time.Time
	currentTask  string
}

// NewAgentMonitor creates a monitor for one agent. events may be nil.
func NewAgentMonitor(doc *InstructionsDoc, status storage.StatusStore, files storage.AgentFiles, events observability.EventLog, cfg MonitorConfig) *AgentMonitor {
	if cfg.WaitingInterval <= 0 {
		cfg.WaitingInterval = DefaultWaitingInterval
	}
	if cfg.WorkingInterval <= 0 {
		cfg.WorkingInterval = DefaultWorkingInterval
	}
	if cfg.Logf == nil {
		cfg.Logf = func(format string, args ...any) { fmt.Printf(format+"\n", args...) }
	}
	return &AgentMonitor{
		agentID:         cfg.AgentID,
		doc:             doc,
		status:          status,
		files:           files,
		events:          events,
		waitingInterval: cfg.WaitingInterval,
		workingInterval: cfg.WorkingInterval,
		handler:         cfg.Handler,
		logf:            cfg.Logf,
	}
}

// CurrentTask returns the task the monitor believes it is working on.
func (m *AgentMonitor) CurrentTask() string {
	return m.currentTask
}

// Run executes the poll-think-act loop until ctx is cancelled. The current
// task is reloaded from the status store first, so a restarted monitor
// resumes rather than re-dispatching its in-flight task. Transient failures
// are logged and the loop continues at the current cadence.
func (m *AgentMonitor) Run(ctx context.Context) error {
	m.Restore()

	for {
		if err := m.Cycle(); err != nil {
			m.logf("cycle error for %s: %v", m.agentID, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.interval()):
		}
	}
}

// Restore reloads persisted monitor state and moves an agent with no task in
// flight into the waiting state.
func (m *AgentMonitor) Restore() {
	doc, err := m.status.Load()
	if err != nil {
		m.logf("restoring state for %s: %v", m.agentID, err)
		return
	}
	rec, ok := doc.Agents[m.agentID]
	if !ok {
		return
	}
	m.currentTask = rec.CurrentTask
	if m.currentTask == "" && rec.Status != models.AgentWaiting {
		if err := m.transition(models.AgentWaiting, ""); err != nil {
			m.logf("restoring state for %s: %v", m.agentID, err)
		}
	}
}

// interval returns the adaptive polling interval for the current state.
func (m *AgentMonitor) interval() time.Duration {
	if m.currentTask != "" {
		return m.workingInterval
	}
	return m.waitingInterval
}

// Cycle performs one poll step. A poll that observes no document change
// performs no parse and no mutation.
func (m *AgentMonitor) Cycle() error {
	modified, err := m.doc.ModTime()
	if err != nil {
		return err
	}
	if !modified.After(m.lastModified) {
		return nil
	}
	m.lastModified = modified

	parsed, err := m.doc.Parse()
	if err != nil {
		return err
	}

	for _, task := range parsed.TasksFor(m.agentID) {
		if task.TaskID == m.currentTask {
			continue
		}
		if err := m.startTask(task); err != nil {
			return err
		}
	}

	switch parsed.Status {
	case models.StatusUrgent:
		m.logf("urgent message detected in instructions")
	case models.StatusQuestionPending:
		m.logf("question pending response")
	}

	return nil
}

// startTask transitions the agent to working on the given task: the new
// current task and activity timestamp are persisted before the handler runs.
func (m *AgentMonitor) startTask(task models.TaskRecord) error {
	if err := m.transition(models.AgentWorking, task.TaskID); err != nil {
		return fmt.Errorf("starting task %s: %w", task.TaskID, err)
	}
	m.currentTask = task.TaskID

	if err := m.files.WriteFocus(m.agentID, task, time.Now().UTC()); err != nil {
		m.logf("updating focus for %s: %v", m.agentID, err)
	}
	if m.events != nil {
		_ = m.events.Record("task.assigned", m.agentID, "task dispatched", map[string]any{
			"task_id":  task.TaskID,
			"priority": string(task.Priority),
		})
	}

	if m.handler != nil {
		m.handler(task)
	}
	return nil
}

// CompleteTask records completion of the current task: the completion
// counter and hour accumulator advance and the current task is cleared. The
// agent stays in completed_task until ClearTask moves it back to waiting.
// Completion is caller-driven, never inferred by the loop.
func (m *AgentMonitor) CompleteTask(hoursLogged float64, notes string) error {
	taskID := m.currentTask
	if taskID == "" {
		return fmt.Errorf("completing task for %s: no task in progress", m.agentID)
	}

	err := m.status.Mutate(m.agentID, func(rec models.AgentStatusRecord) models.AgentStatusRecord {
		rec.Status = models.AgentCompletedTask
		rec.CurrentTask = ""
		rec.CompletedTasksToday++
		rec.TotalHoursLogged += hoursLogged
		return rec
	})
	if err != nil {
		return fmt.Errorf("completing task %s: %w", taskID, err)
	}
	m.currentTask = ""

	entry := storage.CompletedTaskEntry{
		TaskID:      taskID,
		Duration:    fmt.Sprintf("%.1f hours", hoursLogged),
		CompletedAt: time.Now().UTC(),
		Notes:       notes,
	}
	if err := m.files.AppendCompletedTask(m.agentID, entry); err != nil {
		m.logf("logging completion for %s: %v", m.agentID, err)
	}
	if m.events != nil {
		_ = m.events.Record("task.completed", m.agentID, "task completed", map[string]any{
			"task_id": taskID,
			"hours":   hoursLogged,
		})
	}
	return nil
}

// ClearTask returns a completed agent to the waiting state.
func (m *AgentMonitor) ClearTask() error {
	return m.transition(models.AgentWaiting, "")
}

func (m *AgentMonitor) transition(state models.AgentState, currentTask string) error {
	err := m.status.Mutate(m.agentID, func(rec models.AgentStatusRecord) models.AgentStatusRecord {
		rec.Status = state
		rec.CurrentTask = currentTask
		return rec
	})
	if err != nil {
		return err
	}
	if m.events != nil {
		_ = m.events.Record("agent.status_changed", m.agentID, "status changed", map[string]any{
			"new_status":   string(state),
			"current_task": currentTask,
		})
	}
	return nil
}
