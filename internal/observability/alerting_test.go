package observability

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/agenthub/hubctl/pkg/models"
)

// stubStatus serves a fixed status document, or an error.
type stubStatus struct {
	doc *models.StatusDocument
	err error
}

func (s *stubStatus) Load() (*models.StatusDocument, error) {
	return s.doc, s.err
}

// stubSignals serves a fixed parsed instructions result, or an error.
type stubSignals struct {
	parsed models.ParsedInstructions
	err    error
}

func (s *stubSignals) Parse() (models.ParsedInstructions, error) {
	return s.parsed, s.err
}

// recordingNotifier captures every batch passed to Notify.
type recordingNotifier struct {
	batches [][]models.Alert
}

func (n *recordingNotifier) Notify(alerts []models.Alert) error {
	n.batches = append(n.batches, alerts)
	return nil
}

func freshDoc(now time.Time, agents ...string) *models.StatusDocument {
	return models.NewStatusDocument(agents, now)
}

func testEngine(status StatusSource, signals SignalSource, now time.Time) *alertEngine {
	engine := NewAlertEngine(status, signals, DefaultThresholds(), DefaultToggles(), nil, nil, nil).(*alertEngine)
	engine.now = func() time.Time { return now }
	return engine
}

func TestAlertEngine_BlockedAgentCritical(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := freshDoc(now, "backend_agent")
	rec := doc.Agents["backend_agent"]
	rec.Status = models.AgentBlocked
	doc.Agents["backend_agent"] = rec

	engine := testEngine(&stubStatus{doc: doc}, &stubSignals{}, now)
	alerts, err := engine.Evaluate()
	if err != nil {
		t.Fatalf("evaluating: %v", err)
	}

	var blocked []models.Alert
	for _, a := range alerts {
		if a.Type == models.AlertAgentBlocked {
			blocked = append(blocked, a)
		}
	}
	if len(blocked) != 1 {
		t.Fatalf("expected exactly one blocked alert, got %d", len(blocked))
	}
	if blocked[0].Severity != models.SeverityCritical || blocked[0].Agent != "backend_agent" {
		t.Errorf("alert = %+v", blocked[0])
	}

	// An immediate re-evaluation must suppress the duplicate.
	again, err := engine.Evaluate()
	if err != nil {
		t.Fatalf("re-evaluating: %v", err)
	}
	for _, a := range again {
		if a.Type == models.AlertAgentBlocked {
			t.Errorf("duplicate blocked alert emitted: %+v", a)
		}
	}
}

func TestAlertEngine_IdleBoundary(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		idleFor   time.Duration
		wantAlert bool
	}{
		{"61 minutes fires", 61 * time.Minute, true},
		{"59 minutes does not", 59 * time.Minute, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := freshDoc(now, "qa_agent")
			rec := doc.Agents["qa_agent"]
			rec.Status = models.AgentWaiting
			rec.LastActivity = now.Add(-tt.idleFor)
			doc.Agents["qa_agent"] = rec

			engine := testEngine(&stubStatus{doc: doc}, &stubSignals{}, now)
			alerts, err := engine.Evaluate()
			if err != nil {
				t.Fatalf("evaluating: %v", err)
			}

			found := false
			for _, a := range alerts {
				if a.Type == models.AlertAgentIdle && a.Agent == "qa_agent" {
					found = true
					if a.Severity != models.SeverityWarning {
						t.Errorf("severity = %s, want warning", a.Severity)
					}
				}
			}
			if found != tt.wantAlert {
				t.Errorf("idle alert fired = %v, want %v", found, tt.wantAlert)
			}
		})
	}
}

func TestAlertEngine_DedupWindow(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := freshDoc(base, "backend_agent")
	rec := doc.Agents["backend_agent"]
	rec.Status = models.AgentBlocked
	doc.Agents["backend_agent"] = rec

	now := base
	engine := NewAlertEngine(&stubStatus{doc: doc}, &stubSignals{}, DefaultThresholds(), DefaultToggles(), nil, nil, nil).(*alertEngine)
	engine.now = func() time.Time { return now }

	countBlocked := func(alerts []models.Alert) int {
		n := 0
		for _, a := range alerts {
			if a.Type == models.AlertAgentBlocked {
				n++
			}
		}
		return n
	}

	first, _ := engine.Evaluate()
	if countBlocked(first) != 1 {
		t.Fatalf("first evaluation should emit the alert")
	}

	// Four minutes later: still inside the window, suppressed.
	now = base.Add(4 * time.Minute)
	second, _ := engine.Evaluate()
	if countBlocked(second) != 0 {
		t.Errorf("alert inside dedup window should be suppressed")
	}

	// Six minutes after the original: outside the window, emitted again.
	now = base.Add(6 * time.Minute)
	third, _ := engine.Evaluate()
	if countBlocked(third) != 1 {
		t.Errorf("alert outside dedup window should fire again")
	}
}

func TestAlertEngine_SystemLiveness(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("unreadable store", func(t *testing.T) {
		engine := testEngine(&stubStatus{err: errors.New("no such file")}, &stubSignals{}, now)
		alerts, err := engine.Evaluate()
		if err != nil {
			t.Fatalf("evaluating: %v", err)
		}
		if len(alerts) != 1 || alerts[0].Type != models.AlertSystemDown || alerts[0].Severity != models.SeverityCritical {
			t.Errorf("alerts = %+v", alerts)
		}
	})

	t.Run("inactive hub", func(t *testing.T) {
		doc := freshDoc(now, "a")
		doc.SystemStatus.CommunicationHubActive = false

		engine := testEngine(&stubStatus{doc: doc}, &stubSignals{}, now)
		alerts, err := engine.Evaluate()
		if err != nil {
			t.Fatalf("evaluating: %v", err)
		}
		found := false
		for _, a := range alerts {
			if a.Type == models.AlertSystemDown && a.Severity == models.SeverityCritical {
				found = true
			}
		}
		if !found {
			t.Error("inactive hub should raise a critical system alert")
		}
	})

	t.Run("stale status store", func(t *testing.T) {
		doc := freshDoc(now.Add(-10*time.Minute), "a")

		engine := testEngine(&stubStatus{doc: doc}, &stubSignals{}, now)
		alerts, err := engine.Evaluate()
		if err != nil {
			t.Fatalf("evaluating: %v", err)
		}
		found := false
		for _, a := range alerts {
			if a.Type == models.AlertSystemDown && a.Severity == models.SeverityWarning {
				found = true
			}
		}
		if !found {
			t.Error("stale status store should raise a warning")
		}
	})
}

func TestAlertEngine_DocumentSignals(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := freshDoc(now, "a")

	signals := &stubSignals{parsed: models.ParsedInstructions{
		Delimiters: map[models.Delimiter]bool{
			models.DelimiterUrgent:  true,
			models.DelimiterBlocked: true,
		},
	}}

	engine := testEngine(&stubStatus{doc: doc}, signals, now)
	alerts, err := engine.Evaluate()
	if err != nil {
		t.Fatalf("evaluating: %v", err)
	}

	var urgent, blocked bool
	for _, a := range alerts {
		if a.Type == models.AlertUrgentMessage && a.Severity == models.SeverityHigh && a.Agent == "" {
			urgent = true
		}
		if a.Type == models.AlertAgentBlocked && a.Agent == "" {
			blocked = true
		}
	}
	if !urgent {
		t.Error("URGENT token should raise a high urgent_message alert")
	}
	if !blocked {
		t.Error("BLOCKED token should raise a system-wide blocked alert")
	}
}

func TestAlertEngine_MissingInstructionsNotLiveness(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := freshDoc(now, "a")

	signals := &stubSignals{err: errors.New("reading instructions document: no such file")}
	engine := testEngine(&stubStatus{doc: doc}, signals, now)

	alerts, err := engine.Evaluate()
	if err != nil {
		t.Fatalf("evaluating: %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("missing instructions document should not raise alerts, got %+v", alerts)
	}
}

func TestAlertEngine_NotifierReceivesOnlyUrgentSeverities(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := freshDoc(now, "backend_agent", "qa_agent")

	blocked := doc.Agents["backend_agent"]
	blocked.Status = models.AgentBlocked
	doc.Agents["backend_agent"] = blocked

	idle := doc.Agents["qa_agent"]
	idle.Status = models.AgentWaiting
	idle.LastActivity = now.Add(-2 * time.Hour)
	doc.Agents["qa_agent"] = idle

	notifier := &recordingNotifier{}
	engine := NewAlertEngine(&stubStatus{doc: doc}, &stubSignals{}, DefaultThresholds(), DefaultToggles(), nil, notifier, nil).(*alertEngine)
	engine.now = func() time.Time { return now }

	if _, err := engine.Evaluate(); err != nil {
		t.Fatalf("evaluating: %v", err)
	}

	if len(notifier.batches) != 1 {
		t.Fatalf("expected one dispatch batch, got %d", len(notifier.batches))
	}
	for _, a := range notifier.batches[0] {
		if a.Severity != models.SeverityCritical && a.Severity != models.SeverityHigh {
			t.Errorf("notifier received %s severity alert: %+v", a.Severity, a)
		}
	}
}

func TestAlertEngine_WritesAlertLog(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := freshDoc(now, "backend_agent")
	rec := doc.Agents["backend_agent"]
	rec.Status = models.AgentBlocked
	doc.Agents["backend_agent"] = rec

	logPath := filepath.Join(t.TempDir(), "alerts.log")
	engine := NewAlertEngine(&stubStatus{doc: doc}, &stubSignals{}, DefaultThresholds(), DefaultToggles(), NewAlertLog(logPath), nil, nil).(*alertEngine)
	engine.now = func() time.Time { return now }

	if _, err := engine.Evaluate(); err != nil {
		t.Fatalf("evaluating: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading alert log: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, now.Format(time.RFC3339)) ||
		!strings.Contains(line, "[CRITICAL]") ||
		!strings.Contains(line, "agent_blocked:") {
		t.Errorf("unexpected log line: %q", line)
	}
}
