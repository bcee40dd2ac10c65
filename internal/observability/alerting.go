package observability

import (
	"fmt"
	"time"

	"github.com/agenthub/hubctl/pkg/models"
)

const (
	// dedupWindow is the trailing window within which an alert with the same
	// dedup key is suppressed.
	dedupWindow = 5 * time.Minute
	// historyLimit bounds the in-memory alert history. It exists purely to
	// bound memory, not for correctness of the dedup window.
	historyLimit = 100
)

// StatusSource provides the latest agent status snapshot.
type StatusSource interface {
	Load() (*models.StatusDocument, error)
}

// SignalSource provides the parsed instructions document.
type SignalSource interface {
	Parse() (models.ParsedInstructions, error)
}

// DefaultThresholds returns the built-in alert thresholds, used whenever the
// configuration is missing or invalid.
func DefaultThresholds() models.AlertThresholds {
	return models.AlertThresholds{
		AgentIdleMinutes:      60,
		TaskOverdueHours:      4,
		SystemDownMinutes:     5,
		ProductivityThreshold: 30,
	}
}

// DefaultToggles returns the built-in alert-type toggles. Everything is
// enabled except the low-productivity rule, which is advisory.
func DefaultToggles() models.AlertToggles {
	return models.AlertToggles{
		AgentBlocked:  true,
		AgentIdle:     true,
		TaskOverdue:   true,
		SystemDown:    true,
		UrgentMessage: true,
	}
}

// AlertEngine evaluates alert conditions against the status store and the
// instructions document, deduplicates, logs, and dispatches the results.
type AlertEngine interface {
	Evaluate() ([]models.Alert, error)
}

type alertEngine struct {
	status     StatusSource
	signals    SignalSource
	thresholds models.AlertThresholds
	toggles    models.AlertToggles
	alertLog   *AlertLog
	notifier   Notifier
	eventLog   EventLog
	now        func() time.Time

	history []models.Alert
}

// NewAlertEngine creates an AlertEngine. alertLog, notifier, and eventLog
// may each be nil, disabling the corresponding sink.
func NewAlertEngine(status StatusSource, signals SignalSource, thresholds models.AlertThresholds, toggles models.AlertToggles, alertLog *AlertLog, notifier Notifier, eventLog EventLog) AlertEngine {
	return &alertEngine{
		status:     status,
		signals:    signals,
		thresholds: thresholds,
		toggles:    toggles,
		alertLog:   alertLog,
		notifier:   notifier,
		eventLog:   eventLog,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Evaluate runs one full evaluation cycle: all rule families, then duplicate
// suppression, durable logging, and dispatch. It returns the alerts that
// survived deduplication.
func (e *alertEngine) Evaluate() ([]models.Alert, error) {
	now := e.now()

	var raw []models.Alert
	raw = append(raw, e.checkAgents(now)...)
	raw = append(raw, e.checkSystem(now)...)
	raw = append(raw, e.checkDocumentSignals(now)...)

	var emitted []models.Alert
	for _, alert := range raw {
		if e.isDuplicate(alert, now) {
			continue
		}
		e.remember(alert)
		emitted = append(emitted, alert)

		if e.alertLog != nil {
			if err := e.alertLog.Append(alert); err != nil {
				return emitted, fmt.Errorf("logging alert: %w", err)
			}
		}
		if e.eventLog != nil {
			_ = e.eventLog.Record("alert.emitted", alert.Agent, alert.Message, map[string]any{
				"type":     string(alert.Type),
				"severity": string(alert.Severity),
			})
		}
	}

	if e.notifier != nil {
		var urgent []models.Alert
		for _, alert := range emitted {
			if alert.Severity == models.SeverityCritical || alert.Severity == models.SeverityHigh {
				urgent = append(urgent, alert)
			}
		}
		if len(urgent) > 0 {
			if err := e.notifier.Notify(urgent); err != nil {
				return emitted, fmt.Errorf("dispatching alerts: %w", err)
			}
		}
	}

	return emitted, nil
}

// checkAgents evaluates the per-agent rule families: blocked, idle, overdue,
// and low productivity.
func (e *alertEngine) checkAgents(now time.Time) []models.Alert {
	doc, err := e.status.Load()
	if err != nil {
		// The system-liveness rule reports the unreadable store.
		return nil
	}

	var alerts []models.Alert
	for agentID, rec := range doc.Agents {
		sinceActivity := rec.MinutesSinceActivity(now)

		if e.toggles.AgentBlocked && rec.Status == models.AgentBlocked {
			alerts = append(alerts, models.Alert{
				Type:      models.AlertAgentBlocked,
				Severity:  models.SeverityCritical,
				Agent:     agentID,
				Message:   fmt.Sprintf("Agent %s is blocked and needs assistance", agentID),
				Timestamp: now,
			})
		}

		if e.toggles.AgentIdle && rec.Status == models.AgentWaiting &&
			sinceActivity > float64(e.thresholds.AgentIdleMinutes) {
			alerts = append(alerts, models.Alert{
				Type:      models.AlertAgentIdle,
				Severity:  models.SeverityWarning,
				Agent:     agentID,
				Message:   fmt.Sprintf("Agent %s has been idle for %d minutes", agentID, int(sinceActivity)),
				Timestamp: now,
			})
		}

		if e.toggles.TaskOverdue && rec.Status == models.AgentWorking && rec.CurrentTask != "" &&
			sinceActivity > float64(e.thresholds.TaskOverdueHours)*60 {
			alerts = append(alerts, models.Alert{
				Type:      models.AlertTaskOverdue,
				Severity:  models.SeverityWarning,
				Agent:     agentID,
				Message:   fmt.Sprintf("Agent %s has shown no progress on %s for over %d hours", agentID, rec.CurrentTask, e.thresholds.TaskOverdueHours),
				Timestamp: now,
			})
		}

		if e.toggles.LowProductivity {
			if score := rec.ProductivityScore(); score < e.thresholds.ProductivityThreshold {
				alerts = append(alerts, models.Alert{
					Type:      models.AlertLowProductivity,
					Severity:  models.SeverityInfo,
					Agent:     agentID,
					Message:   fmt.Sprintf("Agent %s productivity score is %d, below threshold %d", agentID, score, e.thresholds.ProductivityThreshold),
					Timestamp: now,
				})
			}
		}
	}
	return alerts
}

// checkSystem evaluates system liveness: missing or unreadable status store,
// inactive hub flag, and status staleness.
func (e *alertEngine) checkSystem(now time.Time) []models.Alert {
	if !e.toggles.SystemDown {
		return nil
	}

	doc, err := e.status.Load()
	if err != nil {
		return []models.Alert{{
			Type:      models.AlertSystemDown,
			Severity:  models.SeverityCritical,
			Message:   fmt.Sprintf("Agent status store is unavailable: %v", err),
			Timestamp: now,
		}}
	}

	var alerts []models.Alert
	if !doc.SystemStatus.CommunicationHubActive {
		alerts = append(alerts, models.Alert{
			Type:      models.AlertSystemDown,
			Severity:  models.SeverityCritical,
			Message:   "Communication hub is marked as inactive",
			Timestamp: now,
		})
	}

	staleness := now.Sub(doc.LastUpdated)
	if staleness > time.Duration(e.thresholds.SystemDownMinutes)*time.Minute {
		alerts = append(alerts, models.Alert{
			Type:      models.AlertSystemDown,
			Severity:  models.SeverityWarning,
			Message:   fmt.Sprintf("Status store has not been updated for %d minutes", int(staleness.Minutes())),
			Timestamp: now,
		})
	}
	return alerts
}

// checkDocumentSignals evaluates the raw control tokens of the instructions
// document. A BLOCKED token fires system-wide even without a matching agent
// record.
func (e *alertEngine) checkDocumentSignals(now time.Time) []models.Alert {
	if e.signals == nil {
		return nil
	}
	parsed, err := e.signals.Parse()
	if err != nil {
		// A missing instructions document is not a liveness condition.
		return nil
	}

	var alerts []models.Alert
	if e.toggles.UrgentMessage && parsed.Delimiters[models.DelimiterUrgent] {
		alerts = append(alerts, models.Alert{
			Type:      models.AlertUrgentMessage,
			Severity:  models.SeverityHigh,
			Message:   "Urgent message detected in instructions",
			Timestamp: now,
		})
	}
	if parsed.Delimiters[models.DelimiterBlocked] {
		alerts = append(alerts, models.Alert{
			Type:      models.AlertAgentBlocked,
			Severity:  models.SeverityCritical,
			Message:   "Blocked status reported in instructions",
			Timestamp: now,
		})
	}
	return alerts
}

// isDuplicate reports whether an alert with the same dedup key was emitted
// within the trailing dedup window.
func (e *alertEngine) isDuplicate(alert models.Alert, now time.Time) bool {
	key := alert.DedupKey()
	for _, prev := range e.history {
		if prev.DedupKey() == key && now.Sub(prev.Timestamp) < dedupWindow {
			return true
		}
	}
	return false
}

// remember appends an alert to the bounded history ring.
func (e *alertEngine) remember(alert models.Alert) {
	e.history = append(e.history, alert)
	if len(e.history) > historyLimit {
		e.history = e.history[len(e.history)-historyLimit:]
	}
}
