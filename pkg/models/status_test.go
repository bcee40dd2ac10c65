package models

import (
	"testing"
	"time"
)

func TestProductivityScore(t *testing.T) {
	tests := []struct {
		name string
		rec  AgentStatusRecord
		want int
	}{
		{
			name: "idle with nothing done",
			rec:  AgentStatusRecord{Status: AgentIdle},
			want: 0,
		},
		{
			name: "working bonus",
			rec:  AgentStatusRecord{Status: AgentWorking},
			want: 20,
		},
		{
			name: "active bonus",
			rec:  AgentStatusRecord{Status: AgentActive},
			want: 10,
		},
		{
			name: "waiting penalty floored at zero",
			rec:  AgentStatusRecord{Status: AgentWaiting},
			want: 0,
		},
		{
			name: "blocked penalty against completions",
			rec:  AgentStatusRecord{Status: AgentBlocked, CompletedTasksToday: 2},
			want: 10,
		},
		{
			name: "completion contribution caps at 60",
			rec:  AgentStatusRecord{Status: AgentIdle, CompletedTasksToday: 10},
			want: 60,
		},
		{
			name: "hours contribution caps at 20",
			rec:  AgentStatusRecord{Status: AgentIdle, TotalHoursLogged: 40},
			want: 20,
		},
		{
			name: "everything maxed clamps at 100",
			rec:  AgentStatusRecord{Status: AgentWorking, CompletedTasksToday: 10, TotalHoursLogged: 40},
			want: 100,
		},
		{
			name: "negative counters floored",
			rec:  AgentStatusRecord{Status: AgentWorking, CompletedTasksToday: -5, TotalHoursLogged: -3},
			want: 20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.ProductivityScore(); got != tt.want {
				t.Errorf("ProductivityScore() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMinutesSinceActivity(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	rec := AgentStatusRecord{LastActivity: now.Add(-90 * time.Minute)}
	if got := rec.MinutesSinceActivity(now); got != 90 {
		t.Errorf("MinutesSinceActivity() = %v, want 90", got)
	}

	// Future timestamps are not normalized.
	rec = AgentStatusRecord{LastActivity: now.Add(30 * time.Minute)}
	if got := rec.MinutesSinceActivity(now); got != -30 {
		t.Errorf("MinutesSinceActivity() = %v, want -30", got)
	}
}

func TestNewStatusDocument(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	doc := NewStatusDocument([]string{"frontend_agent", "backend_agent"}, now)

	if !doc.SystemStatus.CommunicationHubActive {
		t.Error("expected hub active in fresh document")
	}
	if !doc.LastUpdated.Equal(now) {
		t.Errorf("LastUpdated = %v, want %v", doc.LastUpdated, now)
	}
	if len(doc.Agents) != 2 {
		t.Fatalf("expected 2 agents, got %d", len(doc.Agents))
	}
	for id, rec := range doc.Agents {
		if rec.Status != AgentIdle {
			t.Errorf("agent %s status = %s, want idle", id, rec.Status)
		}
		if !rec.Availability {
			t.Errorf("agent %s should be available", id)
		}
		if !rec.LastActivity.Equal(now) {
			t.Errorf("agent %s LastActivity = %v, want %v", id, rec.LastActivity, now)
		}
	}
}

func TestTasksFor(t *testing.T) {
	parsed := ParsedInstructions{
		Tasks: []TaskRecord{
			{TaskID: "T1", AssignedTo: "a"},
			{TaskID: "T2", AssignedTo: "b"},
			{TaskID: "T3", AssignedTo: "a"},
		},
	}

	got := parsed.TasksFor("a")
	if len(got) != 2 || got[0].TaskID != "T1" || got[1].TaskID != "T3" {
		t.Errorf("TasksFor(a) = %v, want T1 and T3 in document order", got)
	}
	if len(parsed.TasksFor("c")) != 0 {
		t.Error("TasksFor(c) should be empty")
	}
}

func TestDelimiterToken(t *testing.T) {
	if got := DelimiterTaskAssigned.Token(); got != "(TASK_ASSIGNED)" {
		t.Errorf("Token() = %q, want (TASK_ASSIGNED)", got)
	}
}

func TestAlertDedupKey(t *testing.T) {
	agent := Alert{Type: AlertAgentBlocked, Agent: "backend_agent"}
	if got := agent.DedupKey(); got != "agent_blocked_backend_agent" {
		t.Errorf("DedupKey() = %q", got)
	}

	system := Alert{Type: AlertSystemDown}
	if got := system.DedupKey(); got != "system_down_system" {
		t.Errorf("DedupKey() = %q", got)
	}
}
