package models

import "time"

// AgentState represents the current lifecycle state of an agent.
type AgentState string

const (
	AgentIdle          AgentState = "idle"
	AgentActive        AgentState = "active"
	AgentWorking       AgentState = "working"
	AgentWaiting       AgentState = "waiting"
	AgentBlocked       AgentState = "blocked"
	AgentCompletedTask AgentState = "completed_task"
)

// AgentStatusRecord is the machine-readable state of a single agent, keyed by
// agent identifier in the status document. Records are mutated only through
// the status store's read-modify-write operation.
type AgentStatusRecord struct {
	Status              AgentState `json:"status"`
	CurrentTask         string     `json:"current_task,omitempty"`
	LastActivity        time.Time  `json:"last_activity"`
	CompletedTasksToday int        `json:"completed_tasks_today"`
	TotalHoursLogged    float64    `json:"total_hours_logged"`
	Availability        bool       `json:"availability"`
}

// ProductivityScore derives a heuristic 0-100 score from the record. This is
// declared policy, not a measured quantity: completed tasks contribute up to
// 60, the current state adjusts the score, and logged hours contribute up to
// 20. Negative counters are floored to zero before scoring.
func (r AgentStatusRecord) ProductivityScore() int {
	completed := r.CompletedTasksToday
	if completed < 0 {
		completed = 0
	}
	hours := r.TotalHoursLogged
	if hours < 0 {
		hours = 0
	}

	score := min(completed*20, 60)

	switch r.Status {
	case AgentWorking:
		score += 20
	case AgentActive:
		score += 10
	case AgentBlocked:
		score -= 30
	case AgentWaiting:
		score -= 10
	}

	score += min(int(hours*2), 20)

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// MinutesSinceActivity returns how many minutes have elapsed between the
// record's last activity and now. Clock skew is not normalized; a future
// activity timestamp yields a negative value.
func (r AgentStatusRecord) MinutesSinceActivity(now time.Time) float64 {
	return now.Sub(r.LastActivity).Minutes()
}

// SystemStatusRecord is the aggregate system block of the status document.
// LastUpdated on the enclosing document is monotonically non-decreasing
// across persisted snapshots.
type SystemStatusRecord struct {
	CommunicationHubActive bool `json:"communication_hub_active"`
	ActiveTasks            int  `json:"active_tasks"`
	CompletedTasks         int  `json:"completed_tasks"`
}

// StatusDocument is the full contents of the agent status file.
type StatusDocument struct {
	Agents       map[string]AgentStatusRecord `json:"agents"`
	SystemStatus SystemStatusRecord           `json:"system_status"`
	LastUpdated  time.Time                    `json:"last_updated"`
}

// NewStatusDocument returns a status document with every agent in the roster
// idle and available, and the hub marked active.
func NewStatusDocument(agentIDs []string, now time.Time) *StatusDocument {
	doc := &StatusDocument{
		Agents:       make(map[string]AgentStatusRecord, len(agentIDs)),
		SystemStatus: SystemStatusRecord{CommunicationHubActive: true},
		LastUpdated:  now,
	}
	for _, id := range agentIDs {
		doc.Agents[id] = AgentStatusRecord{
			Status:       AgentIdle,
			LastActivity: now,
			Availability: true,
		}
	}
	return doc
}
