package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agenthub/hubctl/pkg/models"
)

func resetCompleteFlags() {
	completeAgent = ""
	completeHours = 0
	completeNotes = ""
}

// seedInFlightTask puts the agent into the working state with the given task.
func seedInFlightTask(t *testing.T, agentID, taskID string) {
	t.Helper()
	err := StatusStore.Mutate(agentID, func(rec models.AgentStatusRecord) models.AgentStatusRecord {
		rec.Status = models.AgentWorking
		rec.CurrentTask = taskID
		return rec
	})
	if err != nil {
		t.Fatalf("seeding in-flight task: %v", err)
	}
}

func TestCompleteCommand_RequiresAgent(t *testing.T) {
	setupHub(t, "backend_agent")
	initHub(t)
	resetCompleteFlags()
	defer resetCompleteFlags()

	err := completeCmd.RunE(completeCmd, []string{"TASK-001"})
	if err == nil || !strings.Contains(err.Error(), "--agent is required") {
		t.Errorf("error = %v", err)
	}
}

func TestCompleteCommand_RejectsWrongTask(t *testing.T) {
	setupHub(t, "backend_agent")
	initHub(t)
	resetCompleteFlags()
	defer resetCompleteFlags()

	seedInFlightTask(t, "backend_agent", "TASK-001")

	completeAgent = "backend_agent"
	err := completeCmd.RunE(completeCmd, []string{"TASK-999"})
	if err == nil || !strings.Contains(err.Error(), "not working on TASK-999") {
		t.Errorf("error = %v", err)
	}
}

func TestCompleteCommand_CompletesTask(t *testing.T) {
	base := setupHub(t, "backend_agent")
	initHub(t)
	resetAssignFlags()
	resetCompleteFlags()
	defer resetAssignFlags()
	defer resetCompleteFlags()

	assignAgent = "backend_agent"
	if err := assignCmd.RunE(assignCmd, []string{"TASK-001"}); err != nil {
		t.Fatalf("assigning: %v", err)
	}
	seedInFlightTask(t, "backend_agent", "TASK-001")

	completeAgent = "backend_agent"
	completeHours = 2.5
	completeNotes = "All acceptance criteria met"
	if err := completeCmd.RunE(completeCmd, []string{"TASK-001"}); err != nil {
		t.Fatalf("completing: %v", err)
	}

	doc, err := StatusStore.Load()
	if err != nil {
		t.Fatalf("loading status: %v", err)
	}
	rec := doc.Agents["backend_agent"]
	if rec.Status != models.AgentCompletedTask || rec.CurrentTask != "" {
		t.Errorf("record = %+v", rec)
	}
	if rec.CompletedTasksToday != 1 || rec.TotalHoursLogged != 2.5 {
		t.Errorf("counters = %+v", rec)
	}

	index, err := Assignments.Load()
	if err != nil {
		t.Fatalf("loading assignments: %v", err)
	}
	if _, ok := index.ActiveTasks["TASK-001"]; ok {
		t.Error("completed task still in the active set")
	}
	if len(index.CompletedTasks) != 1 || index.CompletedTasks[0].TaskID != "TASK-001" {
		t.Errorf("completed set = %+v", index.CompletedTasks)
	}
	if doc.SystemStatus.ActiveTasks != 0 || doc.SystemStatus.CompletedTasks != 1 {
		t.Errorf("system counters = %d/%d, want 0/1",
			doc.SystemStatus.ActiveTasks, doc.SystemStatus.CompletedTasks)
	}

	data, err := os.ReadFile(filepath.Join(base, "instructions.md"))
	if err != nil {
		t.Fatalf("reading instructions: %v", err)
	}
	if !strings.Contains(string(data), "## Task Complete: TASK-001") ||
		!strings.Contains(string(data), models.DelimiterTaskComplete.Token()) {
		t.Errorf("completion section missing:\n%s", string(data))
	}

	log, err := os.ReadFile(filepath.Join(base, "agents", "backend_agent", "completed_tasks.md"))
	if err != nil {
		t.Fatalf("reading task log: %v", err)
	}
	if !strings.Contains(string(log), "TASK-001") || !strings.Contains(string(log), "All acceptance criteria met") {
		t.Errorf("task log = %q", string(log))
	}
}
