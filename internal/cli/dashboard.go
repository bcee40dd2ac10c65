package cli

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// Dashboard panel indices.
const (
	panelAgents = iota
	panelAlerts
	panelSummary
	panelCount
)

type dashboardModel struct {
	activePanel int
	width       int
	height      int

	// Data.
	agents  []agentSnapshot
	alerts  []alertSnapshot
	summary *summarySnapshot

	// State.
	loading bool
	err     error
}

type agentSnapshot struct {
	id     string
	status string
	task   string
	score  int
}

type alertSnapshot struct {
	severity string
	message  string
	time     string
}

type summarySnapshot struct {
	hubActive       bool
	activeTasks     int
	completedTasks  int
	recommendations []string
}

// dataLoadedMsg carries loaded data back to the model.
type dataLoadedMsg struct {
	agents  []agentSnapshot
	alerts  []alertSnapshot
	summary *summarySnapshot
	err     error
}

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	stateWorking   = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	stateBlocked   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	stateWaiting   = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	stateActive    = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	stateCompleted = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))
	stateIdle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	severityCritical = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	severityHighSt   = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	severityWarning  = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	severityInfoSt   = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newDashboardModel() dashboardModel {
	return dashboardModel{
		activePanel: panelAgents,
		loading:     true,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return loadData
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.activePanel = (m.activePanel + 1) % panelCount
			return m, nil
		case "shift+tab":
			m.activePanel = (m.activePanel - 1 + panelCount) % panelCount
			return m, nil
		case "r":
			m.loading = true
			return m, loadData
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case dataLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.agents = msg.agents
		m.alerts = msg.alerts
		m.summary = msg.summary
		m.err = nil
		return m, nil
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" Hub Dashboard ")
	help := helpStyle.Render("tab: switch panel | r: refresh | q: quit")

	if m.loading {
		return fmt.Sprintf("%s\n\n  Loading data...\n\n%s", title, help)
	}

	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}

	agentsPanel := m.renderAgentsPanel()
	alertsPanel := m.renderAlertsPanel()
	summaryPanel := m.renderSummaryPanel()

	// Available width for panels after accounting for margins.
	availableWidth := m.width - 2

	var body string
	if availableWidth > 120 {
		// Horizontal layout: three columns.
		colWidth := availableWidth / 3
		agentsPanel = m.applyPanelStyle(panelAgents, agentsPanel, colWidth-4)
		alertsPanel = m.applyPanelStyle(panelAlerts, alertsPanel, colWidth-4)
		summaryPanel = m.applyPanelStyle(panelSummary, summaryPanel, colWidth-4)
		body = lipgloss.JoinHorizontal(lipgloss.Top, agentsPanel, alertsPanel, summaryPanel)
	} else {
		// Vertical layout: stacked.
		panelWidth := availableWidth - 4
		if panelWidth < 20 {
			panelWidth = 20
		}
		agentsPanel = m.applyPanelStyle(panelAgents, agentsPanel, panelWidth)
		alertsPanel = m.applyPanelStyle(panelAlerts, alertsPanel, panelWidth)
		summaryPanel = m.applyPanelStyle(panelSummary, summaryPanel, panelWidth)
		body = lipgloss.JoinVertical(lipgloss.Left, agentsPanel, alertsPanel, summaryPanel)
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, help)
}

func (m dashboardModel) applyPanelStyle(panel int, content string, width int) string {
	style := panelStyle
	if m.activePanel == panel {
		style = activePanelStyle
	}
	return style.Width(width).Render(content)
}

func (m dashboardModel) renderAgentsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Agents"))
	b.WriteString("\n")

	if len(m.agents) == 0 {
		b.WriteString("  No agents registered.")
		return b.String()
	}

	for _, a := range m.agents {
		label := fmt.Sprintf("  %-14s %-14s %3d", a.id, a.status, a.score)
		b.WriteString(styleForState(a.status).Render(label))
		if a.task != "" {
			b.WriteString("  " + a.task)
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("\n  Total: %d", len(m.agents)))

	return b.String()
}

func (m dashboardModel) renderAlertsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Alerts"))
	b.WriteString("\n")

	if len(m.alerts) == 0 {
		b.WriteString("  No active alerts.")
		return b.String()
	}

	for _, a := range m.alerts {
		sev := styleForSeverity(a.severity).Render(fmt.Sprintf("[%s]", strings.ToUpper(a.severity)))
		b.WriteString(fmt.Sprintf("  %s %s\n", sev, a.message))
	}

	b.WriteString(fmt.Sprintf("\n  Total: %d alert(s)", len(m.alerts)))

	return b.String()
}

func (m dashboardModel) renderSummaryPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Summary"))
	b.WriteString("\n")

	if m.summary == nil {
		b.WriteString("  No report available.")
		return b.String()
	}

	hub := "inactive"
	if m.summary.hubActive {
		hub = "active"
	}
	b.WriteString(fmt.Sprintf("  %-14s %s\n", "Hub", hub))
	b.WriteString(fmt.Sprintf("  %-14s %d\n", "Active", m.summary.activeTasks))
	b.WriteString(fmt.Sprintf("  %-14s %d\n", "Completed", m.summary.completedTasks))

	if len(m.summary.recommendations) > 0 {
		b.WriteString("\n")
		for _, r := range m.summary.recommendations {
			b.WriteString(fmt.Sprintf("  * %s\n", r))
		}
	}

	return b.String()
}

func styleForState(state string) lipgloss.Style {
	switch state {
	case "working":
		return stateWorking
	case "blocked":
		return stateBlocked
	case "waiting":
		return stateWaiting
	case "active":
		return stateActive
	case "completed_task":
		return stateCompleted
	case "idle":
		return stateIdle
	default:
		return lipgloss.NewStyle()
	}
}

func styleForSeverity(severity string) lipgloss.Style {
	switch strings.ToLower(severity) {
	case "critical":
		return severityCritical
	case "high":
		return severityHighSt
	case "warning":
		return severityWarning
	case "info":
		return severityInfoSt
	default:
		return lipgloss.NewStyle()
	}
}

func loadData() tea.Msg {
	var result dataLoadedMsg

	// Load agent records from the status store.
	if StatusStore != nil {
		doc, err := StatusStore.Load()
		if err != nil {
			result.err = fmt.Errorf("loading agent status: %w", err)
			return result
		}
		ids := make([]string, 0, len(doc.Agents))
		for id := range doc.Agents {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			rec := doc.Agents[id]
			result.agents = append(result.agents, agentSnapshot{
				id:     id,
				status: string(rec.Status),
				task:   rec.CurrentTask,
				score:  rec.ProductivityScore(),
			})
		}
	}

	// Evaluate alerts.
	if AlertEngine != nil {
		alerts, err := AlertEngine.Evaluate()
		if err != nil {
			result.err = fmt.Errorf("loading alerts: %w", err)
			return result
		}
		result.alerts = make([]alertSnapshot, 0, len(alerts))

		// Sort alerts by severity: critical first.
		sort.Slice(alerts, func(i, j int) bool {
			return severityRank(string(alerts[i].Severity)) < severityRank(string(alerts[j].Severity))
		})

		for _, a := range alerts {
			result.alerts = append(result.alerts, alertSnapshot{
				severity: string(a.Severity),
				message:  a.Message,
				time:     a.Timestamp.Format("2006-01-02 15:04 UTC"),
			})
		}
	}

	// Generate the report summary.
	if Tracker != nil {
		report, err := Tracker.GenerateReport()
		if err != nil {
			result.err = fmt.Errorf("generating report: %w", err)
			return result
		}
		summary := &summarySnapshot{
			hubActive:      report.SystemStatus.CommunicationHubActive,
			activeTasks:    report.TaskSummary.ActiveTasks,
			completedTasks: report.TaskSummary.CompletedTasks,
		}
		for _, r := range report.Recommendations {
			summary.recommendations = append(summary.recommendations, r.Message)
		}
		result.summary = summary
	}

	return result
}

func severityRank(s string) int {
	switch s {
	case "critical":
		return 0
	case "high":
		return 1
	case "warning":
		return 2
	case "info":
		return 3
	default:
		return 4
	}
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI dashboard for agents, alerts, and progress",
	Long: `Launch an interactive terminal dashboard showing agent states, active
alerts, and the progress summary in a live-updating view.

Navigate between panels with Tab, refresh with r, quit with q.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if StatusStore == nil {
			return fmt.Errorf("status store not initialized")
		}
		p := tea.NewProgram(newDashboardModel(), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
