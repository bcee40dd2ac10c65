package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/agenthub/hubctl/internal/storage"
	"github.com/agenthub/hubctl/pkg/models"
)

type monitorFixture struct {
	base    string
	doc     *InstructionsDoc
	status  storage.StatusStore
	files   storage.AgentFiles
	handled []models.TaskRecord
}

func newMonitorFixture(t *testing.T, agents ...string) *monitorFixture {
	t.Helper()
	base := t.TempDir()

	status := storage.NewStatusStore(base)
	if err := status.Save(models.NewStatusDocument(agents, time.Now().UTC())); err != nil {
		t.Fatalf("seeding status store: %v", err)
	}

	return &monitorFixture{
		base:   base,
		doc:    NewInstructionsDoc(filepath.Join(base, "instructions.md")),
		status: status,
		files:  storage.NewAgentFiles(base),
	}
}

func (f *monitorFixture) monitor(t *testing.T, agentID string) *AgentMonitor {
	t.Helper()
	return NewAgentMonitor(f.doc, f.status, f.files, nil, MonitorConfig{
		AgentID: agentID,
		Handler: func(task models.TaskRecord) { f.handled = append(f.handled, task) },
		Logf:    func(string, ...any) {},
	})
}

func (f *monitorFixture) writeInstructions(t *testing.T, tasks ...models.TaskRecord) {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("# Agent Instructions\n\n**Last Updated**: 2026-03-01 12:00 UTC\n\n")
	for _, task := range tasks {
		block, err := RenderTaskBlock(task)
		if err != nil {
			t.Fatalf("rendering task block: %v", err)
		}
		sb.WriteString(fmt.Sprintf("## Task Assignment: %s\n\n(TASK_ASSIGNED)\n\n", task.TaskID))
		sb.WriteString(block)
		sb.WriteString("\n\n")
	}
	sb.WriteString("(COMMUNICATION_OVER)\n")

	path := filepath.Join(f.base, "instructions.md")
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		t.Fatalf("writing instructions: %v", err)
	}
	// Guarantee the write is observable as a new modification.
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("bumping mtime: %v", err)
	}
}

func TestAgentMonitor_CycleDispatchesNewTask(t *testing.T) {
	f := newMonitorFixture(t, "backend_agent")
	task := models.TaskRecord{
		TaskID:         "TASK-001",
		AssignedTo:     "backend_agent",
		Priority:       models.PriorityHigh,
		EstimatedHours: "2-3 hours",
		Description:    "Implement retry logic",
	}
	f.writeInstructions(t, task)

	m := f.monitor(t, "backend_agent")
	if err := m.Cycle(); err != nil {
		t.Fatalf("cycling: %v", err)
	}

	if len(f.handled) != 1 || f.handled[0].TaskID != "TASK-001" {
		t.Fatalf("handled = %+v", f.handled)
	}
	if m.CurrentTask() != "TASK-001" {
		t.Errorf("CurrentTask = %q", m.CurrentTask())
	}

	doc, err := f.status.Load()
	if err != nil {
		t.Fatalf("loading status: %v", err)
	}
	rec := doc.Agents["backend_agent"]
	if rec.Status != models.AgentWorking || rec.CurrentTask != "TASK-001" {
		t.Errorf("record = %+v", rec)
	}

	focus, err := f.files.ReadFocus("backend_agent")
	if err != nil {
		t.Fatalf("reading focus: %v", err)
	}
	if !strings.Contains(focus, "TASK-001") {
		t.Errorf("focus = %q", focus)
	}
}

func TestAgentMonitor_UnchangedDocumentIsNoOp(t *testing.T) {
	f := newMonitorFixture(t, "backend_agent")
	f.writeInstructions(t, models.TaskRecord{TaskID: "TASK-001", AssignedTo: "backend_agent"})

	m := f.monitor(t, "backend_agent")
	if err := m.Cycle(); err != nil {
		t.Fatalf("first cycle: %v", err)
	}
	if err := m.Cycle(); err != nil {
		t.Fatalf("second cycle: %v", err)
	}
	if len(f.handled) != 1 {
		t.Errorf("handled %d times, want 1", len(f.handled))
	}
}

func TestAgentMonitor_InFlightTaskNotRedispatched(t *testing.T) {
	f := newMonitorFixture(t, "backend_agent")
	f.writeInstructions(t, models.TaskRecord{TaskID: "TASK-001", AssignedTo: "backend_agent"})

	m := f.monitor(t, "backend_agent")
	if err := m.Cycle(); err != nil {
		t.Fatalf("first cycle: %v", err)
	}

	// The document changes but still carries the same in-flight task.
	f.writeInstructions(t, models.TaskRecord{TaskID: "TASK-001", AssignedTo: "backend_agent"})
	if err := m.Cycle(); err != nil {
		t.Fatalf("second cycle: %v", err)
	}
	if len(f.handled) != 1 {
		t.Errorf("handled %d times, want 1", len(f.handled))
	}
}

func TestAgentMonitor_IgnoresOtherAgentsTasks(t *testing.T) {
	f := newMonitorFixture(t, "backend_agent", "qa_agent")
	f.writeInstructions(t, models.TaskRecord{TaskID: "TASK-001", AssignedTo: "qa_agent"})

	m := f.monitor(t, "backend_agent")
	if err := m.Cycle(); err != nil {
		t.Fatalf("cycling: %v", err)
	}
	if len(f.handled) != 0 {
		t.Errorf("handled = %+v, want none", f.handled)
	}
	if m.CurrentTask() != "" {
		t.Errorf("CurrentTask = %q, want empty", m.CurrentTask())
	}
}

func TestAgentMonitor_AdaptiveInterval(t *testing.T) {
	f := newMonitorFixture(t, "backend_agent")
	m := f.monitor(t, "backend_agent")

	if got := m.interval(); got != DefaultWaitingInterval {
		t.Errorf("waiting interval = %v, want %v", got, DefaultWaitingInterval)
	}
	m.currentTask = "TASK-001"
	if got := m.interval(); got != DefaultWorkingInterval {
		t.Errorf("working interval = %v, want %v", got, DefaultWorkingInterval)
	}
}

func TestAgentMonitor_CompleteTask(t *testing.T) {
	f := newMonitorFixture(t, "backend_agent")
	f.writeInstructions(t, models.TaskRecord{TaskID: "TASK-001", AssignedTo: "backend_agent"})

	m := f.monitor(t, "backend_agent")
	if err := m.Cycle(); err != nil {
		t.Fatalf("cycling: %v", err)
	}

	if err := m.CompleteTask(2.5, "All acceptance criteria met"); err != nil {
		t.Fatalf("completing: %v", err)
	}
	if m.CurrentTask() != "" {
		t.Errorf("CurrentTask = %q, want empty", m.CurrentTask())
	}

	doc, err := f.status.Load()
	if err != nil {
		t.Fatalf("loading status: %v", err)
	}
	rec := doc.Agents["backend_agent"]
	if rec.Status != models.AgentCompletedTask {
		t.Errorf("status = %s, want completed_task", rec.Status)
	}
	if rec.CompletedTasksToday != 1 || rec.TotalHoursLogged != 2.5 {
		t.Errorf("counters = %+v", rec)
	}
	if rec.CurrentTask != "" {
		t.Errorf("CurrentTask = %q, want empty", rec.CurrentTask)
	}

	data, err := os.ReadFile(filepath.Join(f.base, "agents", "backend_agent", "completed_tasks.md"))
	if err != nil {
		t.Fatalf("reading completed tasks: %v", err)
	}
	if !strings.Contains(string(data), "TASK-001") || !strings.Contains(string(data), "2.5 hours") {
		t.Errorf("completed tasks = %q", string(data))
	}

	if err := m.ClearTask(); err != nil {
		t.Fatalf("clearing: %v", err)
	}
	doc, _ = f.status.Load()
	if doc.Agents["backend_agent"].Status != models.AgentWaiting {
		t.Errorf("status after clear = %s, want waiting", doc.Agents["backend_agent"].Status)
	}
}

func TestAgentMonitor_CompleteWithoutTask(t *testing.T) {
	f := newMonitorFixture(t, "backend_agent")
	m := f.monitor(t, "backend_agent")

	if err := m.CompleteTask(1, ""); err == nil {
		t.Fatal("expected an error with no task in progress")
	}
}

func TestAgentMonitor_RestoreAdoptsInFlightTask(t *testing.T) {
	f := newMonitorFixture(t, "backend_agent")
	err := f.status.Mutate("backend_agent", func(rec models.AgentStatusRecord) models.AgentStatusRecord {
		rec.Status = models.AgentWorking
		rec.CurrentTask = "TASK-009"
		return rec
	})
	if err != nil {
		t.Fatalf("seeding in-flight task: %v", err)
	}

	m := f.monitor(t, "backend_agent")
	m.Restore()
	if m.CurrentTask() != "TASK-009" {
		t.Errorf("CurrentTask = %q, want TASK-009", m.CurrentTask())
	}
}

func TestAgentMonitor_RestoreParksTasklessAgent(t *testing.T) {
	f := newMonitorFixture(t, "backend_agent")
	err := f.status.Mutate("backend_agent", func(rec models.AgentStatusRecord) models.AgentStatusRecord {
		rec.Status = models.AgentActive
		rec.CurrentTask = ""
		return rec
	})
	if err != nil {
		t.Fatalf("seeding status: %v", err)
	}

	m := f.monitor(t, "backend_agent")
	m.Restore()

	doc, err := f.status.Load()
	if err != nil {
		t.Fatalf("loading status: %v", err)
	}
	if doc.Agents["backend_agent"].Status != models.AgentWaiting {
		t.Errorf("status = %s, want waiting", doc.Agents["backend_agent"].Status)
	}
}
