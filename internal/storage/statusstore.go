// Package storage provides the file-backed stores of the communication hub:
// the agent status document, the task assignment index, and the per-agent
// side documents (current focus, completed-task log).
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

// ErrNotFound is returned when a backing document is absent.
var ErrNotFound = errors.New("not found")

// StatusStore defines the interface for the agent status document. Mutations
// rewrite the entire collection: there are no partial-write states, at the
// cost of last-writer-wins under concurrent mutators. The design assumes a
// single coordinating process owns the store at a time.
type StatusStore interface {
	Load() (*models.StatusDocument, error)
	Save(doc *models.StatusDocument) error
	Mutate(agentID string, fn func(models.AgentStatusRecord) models.AgentStatusRecord) error
	SetHubActive(active bool) error
	SetTaskCounts(active, completed int) error
}

type fileStatusStore struct {
	path string
	now  func() time.Time
}

// NewStatusStore creates a StatusStore backed by agent_status.json under the
// hub base directory.
func NewStatusStore(basePath string) StatusStore {
	return &fileStatusStore{
		path: filepath.Join(basePath, "agent_status.json"),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Load reads the full status document. It fails with ErrNotFound when the
// backing file is absent.
func (s *fileStatusStore) Load() (*models.StatusDocument, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("loading agent status: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("loading agent status: %w", err)
	}

	var doc models.StatusDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding agent status: %w", err)
	}
	if doc.Agents == nil {
		doc.Agents = make(map[string]models.AgentStatusRecord)
	}
	return &doc, nil
}

// Save persists the whole document. LastUpdated is kept monotonically
// non-decreasing across snapshots: a save never moves it backward.
func (s *fileStatusStore) Save(doc *models.StatusDocument) error {
	if prev, err := s.Load(); err == nil && doc.LastUpdated.Before(prev.LastUpdated) {
		doc.LastUpdated = prev.LastUpdated
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding agent status: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing agent status: %w", err)
	}
	return nil
}

// Mutate applies fn to exactly one agent's record, stamps the record's
// activity and the document's last-updated instant, and persists the entire
// collection.
func (s *fileStatusStore) Mutate(agentID string, fn func(models.AgentStatusRecord) models.AgentStatusRecord) error {
	doc, err := s.Load()
	if err != nil {
		return err
	}

	record, ok := doc.Agents[agentID]
	if !ok {
		return fmt.Errorf("mutating status for %s: agent %w", agentID, ErrNotFound)
	}

	updated := fn(record)
	updated.LastActivity = s.now()
	doc.Agents[agentID] = updated
	doc.LastUpdated = s.now()

	return s.Save(doc)
}

// SetTaskCounts updates the task counters on the system block.
func (s *fileStatusStore) SetTaskCounts(active, completed int) error {
	doc, err := s.Load()
	if err != nil {
		return err
	}
	doc.SystemStatus.ActiveTasks = active
	doc.SystemStatus.CompletedTasks = completed
	doc.LastUpdated = s.now()
	return s.Save(doc)
}

// SetHubActive flips the hub-active flag on the system block.
func (s *fileStatusStore) SetHubActive(active bool) error {
	doc, err := s.Load()
	if err != nil {
		return err
	}
	doc.SystemStatus.CommunicationHubActive = active
	doc.LastUpdated = s.now()
	return s.Save(doc)
}

