package observability

import (
	"fmt"
	"time"
)

// Metrics holds aggregate counts derived from the event log.
type Metrics struct {
	TasksAssigned  int            `json:"tasks_assigned"`
	TasksCompleted int            `json:"tasks_completed"`
	StatusChanges  int            `json:"status_changes"`
	AlertsEmitted  int            `json:"alerts_emitted"`
	EventCount     int            `json:"event_count"`
	EventsByAgent  map[string]int `json:"events_by_agent"`
	OldestEvent    *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent    *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a MetricsCalculator reading from the given
// EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{EventsByAgent: make(map[string]int)}
	m.EventCount = len(events)

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		if event.Agent != "" {
			m.EventsByAgent[event.Agent]++
		}

		switch event.Type {
		case "task.assigned":
			m.TasksAssigned++
		case "task.completed":
			m.TasksCompleted++
		case "agent.status_changed":
			m.StatusChanges++
		case "alert.emitted":
			m.AlertsEmitted++
		}
	}

	return m, nil
}
