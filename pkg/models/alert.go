package models

import "time"

// AlertType identifies the condition that triggered an alert.
type AlertType string

const (
	AlertAgentBlocked    AlertType = "agent_blocked"
	AlertAgentIdle       AlertType = "agent_idle"
	AlertTaskOverdue     AlertType = "task_overdue"
	AlertSystemDown      AlertType = "system_down"
	AlertUrgentMessage   AlertType = "urgent_message"
	AlertLowProductivity AlertType = "low_productivity"
)

// AlertSeverity represents the urgency of an alert.
type AlertSeverity string

const (
	SeverityCritical AlertSeverity = "critical"
	SeverityHigh     AlertSeverity = "high"
	SeverityWarning  AlertSeverity = "warning"
	SeverityInfo     AlertSeverity = "info"
)

// Alert is a single triggered alert condition. Agent is empty for
// system-wide alerts.
type Alert struct {
	Type      AlertType     `json:"type"`
	Severity  AlertSeverity `json:"severity"`
	Agent     string        `json:"agent,omitempty"`
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
}

// DedupKey identifies an alert for duplicate suppression: type plus subject
// agent, or type plus "system" for system-wide alerts.
func (a Alert) DedupKey() string {
	subject := a.Agent
	if subject == "" {
		subject = "system"
	}
	return string(a.Type) + "_" + subject
}
