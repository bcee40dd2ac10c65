package observability

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Event is a single observable hub event, e.g. a task assignment or an agent
// status transition.
type Event struct {
	Time    time.Time      `json:"time"`
	Type    string         `json:"type"` // e.g. "task.assigned", "agent.status_changed", "alert.emitted"
	Agent   string         `json:"agent,omitempty"`
	Message string         `json:"msg"`
	Data    map[string]any `json:"data,omitempty"`
}

// EventFilter specifies criteria for reading events back.
type EventFilter struct {
	Since *time.Time
	Type  string
	Agent string
}

// EventLog defines the interface for writing and reading hub events.
type EventLog interface {
	Write(event Event) error
	Record(eventType, agent, message string, data map[string]any) error
	Read(filter EventFilter) ([]Event, error)
	Close() error
}

// fileEventLog implements EventLog using an append-only JSONL file.
type fileEventLog struct {
	path string
	file *os.File
	mu   sync.Mutex
}

// NewEventLog opens (or creates) the JSONL event log at the given path.
func NewEventLog(path string) (EventLog, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	return &fileEventLog{path: path, file: f}, nil
}

// Write appends a JSON-encoded event followed by a newline.
func (l *fileEventLog) Write(event Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	data = append(data, '\n')

	if _, err := l.file.Write(data); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	return nil
}

// Record is a convenience wrapper that stamps the event with the current
// UTC time.
func (l *fileEventLog) Record(eventType, agent, message string, data map[string]any) error {
	return l.Write(Event{
		Time:    time.Now().UTC(),
		Type:    eventType,
		Agent:   agent,
		Message: message,
		Data:    data,
	})
}

// Read scans the log line by line and returns events matching the filter.
// Malformed lines are skipped.
func (l *fileEventLog) Read(filter EventFilter) ([]Event, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening event log for reading: %w", err)
	}
	defer func() { _ = f.Close() }()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			continue
		}

		if matchesEventFilter(event, filter) {
			events = append(events, event)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning event log: %w", err)
	}
	return events, nil
}

// Close closes the underlying log file.
func (l *fileEventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.file.Close(); err != nil {
		return fmt.Errorf("closing event log: %w", err)
	}
	return nil
}

func matchesEventFilter(event Event, filter EventFilter) bool {
	if filter.Since != nil && event.Time.Before(*filter.Since) {
		return false
	}
	if filter.Type != "" && event.Type != filter.Type {
		return false
	}
	if filter.Agent != "" && event.Agent != filter.Agent {
		return false
	}
	return true
}
