package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/agenthub/hubctl/pkg/models"
)

// ActiveAssignment is a task record currently assigned to an agent.
type ActiveAssignment struct {
	models.TaskRecord
	AssignedAt time.Time `json:"assigned_at"`
	Status     string    `json:"status"`
}

// CompletedAssignment is a task that has been completed and moved out of the
// active set.
type CompletedAssignment struct {
	models.TaskRecord
	AssignedAt  time.Time `json:"assigned_at"`
	CompletedAt time.Time `json:"completed_at"`
	HoursLogged float64   `json:"hours_logged,omitempty"`
}

// HistoryEntry records an assignment action for audit purposes.
type HistoryEntry struct {
	TaskID     string    `json:"task_id"`
	AssignedTo string    `json:"assigned_to"`
	Action     string    `json:"action"`
	At         time.Time `json:"at"`
}

// AssignmentIndex is the full contents of task_assignments.json.
type AssignmentIndex struct {
	ActiveTasks    map[string]ActiveAssignment `json:"active_tasks"`
	CompletedTasks []CompletedAssignment       `json:"completed_tasks"`
	History        []HistoryEntry              `json:"assignment_history"`
}

// AssignmentStore manages the task assignment index. Like the status store it
// rewrites the whole file on every mutation.
type AssignmentStore interface {
	Load() (*AssignmentIndex, error)
	Save(index *AssignmentIndex) error
	Add(task models.TaskRecord) error
	Complete(taskID string, hoursLogged float64) error
}

type fileAssignmentStore struct {
	path string
	now  func() time.Time
}

// NewAssignmentStore creates an AssignmentStore backed by
// task_assignments.json under the hub base directory.
func NewAssignmentStore(basePath string) AssignmentStore {
	return &fileAssignmentStore{
		path: filepath.Join(basePath, "task_assignments.json"),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *fileAssignmentStore) Load() (*AssignmentIndex, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("loading assignments: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("loading assignments: %w", err)
	}

	var index AssignmentIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("decoding assignments: %w", err)
	}
	if index.ActiveTasks == nil {
		index.ActiveTasks = make(map[string]ActiveAssignment)
	}
	return &index, nil
}

func (s *fileAssignmentStore) Save(index *AssignmentIndex) error {
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding assignments: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing assignments: %w", err)
	}
	return nil
}

// loadOrEmpty returns the stored index, or a fresh one when the backing file
// does not exist yet.
func (s *fileAssignmentStore) loadOrEmpty() (*AssignmentIndex, error) {
	index, err := s.Load()
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &AssignmentIndex{ActiveTasks: make(map[string]ActiveAssignment)}, nil
		}
		return nil, err
	}
	return index, nil
}

// Add records a new active assignment. A task re-assigned under the same ID
// supersedes the previous active record.
func (s *fileAssignmentStore) Add(task models.TaskRecord) error {
	index, err := s.loadOrEmpty()
	if err != nil {
		return err
	}

	now := s.now()
	index.ActiveTasks[task.TaskID] = ActiveAssignment{
		TaskRecord: task,
		AssignedAt: now,
		Status:     "assigned",
	}
	index.History = append(index.History, HistoryEntry{
		TaskID:     task.TaskID,
		AssignedTo: task.AssignedTo,
		Action:     "assigned",
		At:         now,
	})

	return s.Save(index)
}

// Complete moves an active assignment into the completed list.
func (s *fileAssignmentStore) Complete(taskID string, hoursLogged float64) error {
	index, err := s.Load()
	if err != nil {
		return err
	}

	active, ok := index.ActiveTasks[taskID]
	if !ok {
		return fmt.Errorf("completing %s: task %w", taskID, ErrNotFound)
	}

	now := s.now()
	delete(index.ActiveTasks, taskID)
	index.CompletedTasks = append(index.CompletedTasks, CompletedAssignment{
		TaskRecord:  active.TaskRecord,
		AssignedAt:  active.AssignedAt,
		CompletedAt: now,
		HoursLogged: hoursLogged,
	})
	index.History = append(index.History, HistoryEntry{
		TaskID:     taskID,
		AssignedTo: active.AssignedTo,
		Action:     "completed",
		At:         now,
	})

	return s.Save(index)
}
