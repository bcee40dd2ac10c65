package storage

import (
	"errors"
	"testing"

	"github.com/agenthub/hubctl/pkg/models"
)

func TestAssignmentStore_AddAndComplete(t *testing.T) {
	store := NewAssignmentStore(t.TempDir())

	task := models.TaskRecord{
		TaskID:         "T1",
		AssignedTo:     "backend_agent",
		Priority:       models.PriorityHigh,
		EstimatedHours: "3 hours",
	}
	if err := store.Add(task); err != nil {
		t.Fatalf("adding: %v", err)
	}

	index, err := store.Load()
	if err != nil {
		t.Fatalf("loading: %v", err)
	}
	active, ok := index.ActiveTasks["T1"]
	if !ok {
		t.Fatal("T1 should be active")
	}
	if active.AssignedTo != "backend_agent" || active.Status != "assigned" {
		t.Errorf("active assignment = %+v", active)
	}
	if len(index.History) != 1 || index.History[0].Action != "assigned" {
		t.Errorf("history = %+v", index.History)
	}

	if err := store.Complete("T1", 2.5); err != nil {
		t.Fatalf("completing: %v", err)
	}

	index, err = store.Load()
	if err != nil {
		t.Fatalf("reloading: %v", err)
	}
	if _, ok := index.ActiveTasks["T1"]; ok {
		t.Error("T1 should no longer be active")
	}
	if len(index.CompletedTasks) != 1 {
		t.Fatalf("expected 1 completed task, got %d", len(index.CompletedTasks))
	}
	done := index.CompletedTasks[0]
	if done.TaskID != "T1" || done.HoursLogged != 2.5 {
		t.Errorf("completed assignment = %+v", done)
	}
	if done.CompletedAt.Before(done.AssignedAt) {
		t.Error("completion must not predate assignment")
	}
	if len(index.History) != 2 || index.History[1].Action != "completed" {
		t.Errorf("history = %+v", index.History)
	}
}

func TestAssignmentStore_ReassignSupersedes(t *testing.T) {
	store := NewAssignmentStore(t.TempDir())

	if err := store.Add(models.TaskRecord{TaskID: "T1", AssignedTo: "a"}); err != nil {
		t.Fatalf("adding: %v", err)
	}
	if err := store.Add(models.TaskRecord{TaskID: "T1", AssignedTo: "b"}); err != nil {
		t.Fatalf("reassigning: %v", err)
	}

	index, err := store.Load()
	if err != nil {
		t.Fatalf("loading: %v", err)
	}
	if len(index.ActiveTasks) != 1 {
		t.Fatalf("expected 1 active task, got %d", len(index.ActiveTasks))
	}
	if index.ActiveTasks["T1"].AssignedTo != "b" {
		t.Errorf("reassignment should supersede: %+v", index.ActiveTasks["T1"])
	}
	if len(index.History) != 2 {
		t.Errorf("both assignments should be in history, got %d entries", len(index.History))
	}
}

func TestAssignmentStore_CompleteUnknownTask(t *testing.T) {
	store := NewAssignmentStore(t.TempDir())
	if err := store.Add(models.TaskRecord{TaskID: "T1", AssignedTo: "a"}); err != nil {
		t.Fatalf("adding: %v", err)
	}

	if err := store.Complete("T9", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
