// Package mcp provides an MCP (Model Context Protocol) server that exposes
// hub coordination state as MCP tools for AI coding assistants.
package mcp

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/agenthub/hubctl/internal/core"
	"github.com/agenthub/hubctl/internal/observability"
	"github.com/agenthub/hubctl/internal/storage"
	"github.com/agenthub/hubctl/pkg/models"
	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps hub services and exposes them as MCP tools.
type Server struct {
	server      *gomcp.Server
	doc         *core.InstructionsDoc
	status      storage.StatusStore
	tracker     core.ProgressTracker
	alertEngine observability.AlertEngine
}

// NewServer creates a new MCP server over the hub services.
// tracker and alertEngine may be nil if observability is disabled.
func NewServer(doc *core.InstructionsDoc, status storage.StatusStore, tracker core.ProgressTracker, alertEngine observability.AlertEngine, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		doc:         doc,
		status:      status,
		tracker:     tracker,
		alertEngine: alertEngine,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "hubctl", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client disconnects
// or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type getInstructionsInput struct {
	Agent string `json:"agent,omitempty" jsonschema:"filter tasks to those assigned to this agent ID"`
}

type taskOutput struct {
	TaskID         string   `json:"task_id"`
	AssignedTo     string   `json:"assigned_to"`
	Priority       string   `json:"priority,omitempty"`
	EstimatedHours string   `json:"estimated_hours,omitempty"`
	Description    string   `json:"description,omitempty"`
	Dependencies   []string `json:"dependencies,omitempty"`
	Deliverables   []string `json:"deliverables,omitempty"`
}

type getInstructionsOutput struct {
	Status     string       `json:"status"`
	LastUpdate string       `json:"last_update,omitempty"`
	Delimiters []string     `json:"delimiters,omitempty"`
	Tasks      []taskOutput `json:"tasks"`
	Count      int          `json:"count"`
}

type listAgentsInput struct{}

type agentOutput struct {
	Agent               string  `json:"agent"`
	Status              string  `json:"status"`
	CurrentTask         string  `json:"current_task,omitempty"`
	LastActivity        string  `json:"last_activity"`
	CompletedTasksToday int     `json:"completed_tasks_today"`
	TotalHoursLogged    float64 `json:"total_hours_logged"`
	Availability        bool    `json:"availability"`
	ProductivityScore   int     `json:"productivity_score"`
}

type listAgentsOutput struct {
	Agents           []agentOutput `json:"agents"`
	Count            int           `json:"count"`
	HubActive        bool          `json:"hub_active"`
	StatusLastUpdate string        `json:"status_last_update"`
}

type updateAgentStatusInput struct {
	Agent  string `json:"agent" jsonschema:"required,the agent ID whose record to update"`
	Status string `json:"status" jsonschema:"required,the new agent state (idle, active, working, waiting, blocked, completed_task)"`
	Task   string `json:"task,omitempty" jsonschema:"the task ID the agent is working on (cleared when omitted for non-working states)"`
}

type updateAgentStatusOutput struct {
	Message string `json:"message"`
}

type getAlertsInput struct{}

type alertOutput struct {
	Type      string `json:"type"`
	Severity  string `json:"severity"`
	Agent     string `json:"agent,omitempty"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type getAlertsOutput struct {
	Alerts []alertOutput `json:"alerts"`
	Count  int           `json:"count"`
}

type getReportInput struct{}

type reportAgentOutput struct {
	Agent               string  `json:"agent"`
	Status              string  `json:"status"`
	CurrentTask         string  `json:"current_task,omitempty"`
	TasksCompletedToday int     `json:"tasks_completed_today"`
	TotalHoursLogged    float64 `json:"total_hours_logged"`
	MinutesSinceActive  float64 `json:"minutes_since_activity"`
	ProductivityScore   int     `json:"productivity_score"`
}

type recommendationOutput struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type getReportOutput struct {
	Timestamp        string                 `json:"timestamp"`
	HubActive        bool                   `json:"hub_active"`
	ActiveTasks      int                    `json:"active_tasks"`
	CompletedTasks   int                    `json:"completed_tasks"`
	TotalAssignments int                    `json:"total_assignments"`
	Agents           []reportAgentOutput    `json:"agents"`
	Recommendations  []recommendationOutput `json:"recommendations"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_instructions",
		Description: "Parse the shared instructions document. Returns the communication status, active delimiters, and task assignments, optionally filtered by agent.",
	}, s.handleGetInstructions)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_agents",
		Description: "List all registered agents with their current state, task, activity timestamps, and productivity scores.",
	}, s.handleListAgents)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "update_agent_status",
		Description: "Update an agent's state in the shared status document. Valid states: idle, active, working, waiting, blocked, completed_task.",
	}, s.handleUpdateAgentStatus)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_alerts",
		Description: "Evaluate alert rules against current hub state and return freshly triggered alerts (blocked agents, idle agents, system liveness, urgent signals).",
	}, s.handleGetAlerts)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_report",
		Description: "Generate a progress report: system status, per-agent metrics, task counts, and recommendations.",
	}, s.handleGetReport)
}

// --- Tool handlers ---

func (s *Server) handleGetInstructions(_ context.Context, _ *gomcp.CallToolRequest, input getInstructionsInput) (*gomcp.CallToolResult, getInstructionsOutput, error) {
	parsed, err := s.doc.Parse()
	if err != nil {
		return errorResult(fmt.Sprintf("parsing instructions: %s", err)), getInstructionsOutput{}, nil
	}

	tasks := parsed.Tasks
	if input.Agent != "" {
		tasks = parsed.TasksFor(input.Agent)
	}

	out := getInstructionsOutput{
		Status:     string(parsed.Status),
		LastUpdate: parsed.LastUpdate,
		Tasks:      make([]taskOutput, len(tasks)),
		Count:      len(tasks),
	}
	for _, d := range models.AllDelimiters {
		if parsed.Delimiters[d] {
			out.Delimiters = append(out.Delimiters, string(d))
		}
	}
	for i, t := range tasks {
		out.Tasks[i] = taskToOutput(t)
	}

	return nil, out, nil
}

func (s *Server) handleListAgents(_ context.Context, _ *gomcp.CallToolRequest, _ listAgentsInput) (*gomcp.CallToolResult, listAgentsOutput, error) {
	doc, err := s.status.Load()
	if err != nil {
		return errorResult(fmt.Sprintf("loading agent status: %s", err)), listAgentsOutput{}, nil
	}

	out := listAgentsOutput{
		Agents:           make([]agentOutput, 0, len(doc.Agents)),
		Count:            len(doc.Agents),
		HubActive:        doc.SystemStatus.CommunicationHubActive,
		StatusLastUpdate: doc.LastUpdated.Format(time.RFC3339),
	}
	for _, id := range sortedAgentIDs(doc) {
		rec := doc.Agents[id]
		out.Agents = append(out.Agents, agentOutput{
			Agent:               id,
			Status:              string(rec.Status),
			CurrentTask:         rec.CurrentTask,
			LastActivity:        rec.LastActivity.Format(time.RFC3339),
			CompletedTasksToday: rec.CompletedTasksToday,
			TotalHoursLogged:    rec.TotalHoursLogged,
			Availability:        rec.Availability,
			ProductivityScore:   rec.ProductivityScore(),
		})
	}

	return nil, out, nil
}

func (s *Server) handleUpdateAgentStatus(_ context.Context, _ *gomcp.CallToolRequest, input updateAgentStatusInput) (*gomcp.CallToolResult, updateAgentStatusOutput, error) {
	if input.Agent == "" {
		return errorResult("agent is required"), updateAgentStatusOutput{}, nil
	}
	if input.Status == "" {
		return errorResult("status is required"), updateAgentStatusOutput{}, nil
	}

	validStates := map[string]bool{
		"idle": true, "active": true, "working": true,
		"waiting": true, "blocked": true, "completed_task": true,
	}
	if !validStates[input.Status] {
		return errorResult(fmt.Sprintf("invalid status %q: must be one of idle, active, working, waiting, blocked, completed_task", input.Status)), updateAgentStatusOutput{}, nil
	}

	state := models.AgentState(input.Status)
	err := s.status.Mutate(input.Agent, func(rec models.AgentStatusRecord) models.AgentStatusRecord {
		rec.Status = state
		rec.CurrentTask = input.Task
		return rec
	})
	if err != nil {
		return errorResult(fmt.Sprintf("updating agent %s: %s", input.Agent, err)), updateAgentStatusOutput{}, nil
	}

	out := updateAgentStatusOutput{
		Message: fmt.Sprintf("agent %s status updated to %s", input.Agent, input.Status),
	}
	return nil, out, nil
}

func (s *Server) handleGetAlerts(_ context.Context, _ *gomcp.CallToolRequest, _ getAlertsInput) (*gomcp.CallToolResult, getAlertsOutput, error) {
	if s.alertEngine == nil {
		return errorResult("alert engine not available"), getAlertsOutput{}, nil
	}

	alerts, err := s.alertEngine.Evaluate()
	if err != nil {
		return errorResult(fmt.Sprintf("evaluating alerts: %s", err)), getAlertsOutput{}, nil
	}

	out := getAlertsOutput{
		Alerts: make([]alertOutput, len(alerts)),
		Count:  len(alerts),
	}
	for i, a := range alerts {
		out.Alerts[i] = alertOutput{
			Type:      string(a.Type),
			Severity:  string(a.Severity),
			Agent:     a.Agent,
			Message:   a.Message,
			Timestamp: a.Timestamp.Format(time.RFC3339),
		}
	}

	return nil, out, nil
}

func (s *Server) handleGetReport(_ context.Context, _ *gomcp.CallToolRequest, _ getReportInput) (*gomcp.CallToolResult, getReportOutput, error) {
	if s.tracker == nil {
		return errorResult("progress tracker not available"), getReportOutput{}, nil
	}

	report, err := s.tracker.GenerateReport()
	if err != nil {
		return errorResult(fmt.Sprintf("generating report: %s", err)), getReportOutput{}, nil
	}

	out := getReportOutput{
		Timestamp:        report.Timestamp.Format(time.RFC3339),
		HubActive:        report.SystemStatus.CommunicationHubActive,
		ActiveTasks:      report.TaskSummary.ActiveTasks,
		CompletedTasks:   report.TaskSummary.CompletedTasks,
		TotalAssignments: report.TaskSummary.TotalAssignments,
		Agents:           make([]reportAgentOutput, 0, len(report.AgentMetrics)),
		Recommendations:  make([]recommendationOutput, len(report.Recommendations)),
	}
	for _, id := range sortedMetricIDs(report.AgentMetrics) {
		m := report.AgentMetrics[id]
		out.Agents = append(out.Agents, reportAgentOutput{
			Agent:               id,
			Status:              string(m.Status),
			CurrentTask:         m.CurrentTask,
			TasksCompletedToday: m.TasksCompletedToday,
			TotalHoursLogged:    m.TotalHoursLogged,
			MinutesSinceActive:  m.MinutesSinceActive,
			ProductivityScore:   m.ProductivityScore,
		})
	}
	for i, r := range report.Recommendations {
		out.Recommendations[i] = recommendationOutput{Type: r.Type, Message: r.Message}
	}

	return nil, out, nil
}

// --- Helpers ---

func taskToOutput(t models.TaskRecord) taskOutput {
	return taskOutput{
		TaskID:         t.TaskID,
		AssignedTo:     t.AssignedTo,
		Priority:       string(t.Priority),
		EstimatedHours: t.EstimatedHours,
		Description:    t.Description,
		Dependencies:   t.Dependencies,
		Deliverables:   t.Deliverables,
	}
}

func sortedAgentIDs(doc *models.StatusDocument) []string {
	ids := make([]string, 0, len(doc.Agents))
	for id := range doc.Agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortedMetricIDs(metrics map[string]core.AgentMetrics) []string {
	ids := make([]string, 0, len(metrics))
	for id := range metrics {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
