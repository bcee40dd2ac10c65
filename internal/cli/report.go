package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agenthub/hubctl/internal/core"
	"github.com/spf13/cobra"
)

var (
	reportUpdateLog bool
	reportCharts    bool
)

// textChartRenderer draws horizontal bars on stdout.
type textChartRenderer struct{}

func (textChartRenderer) RenderScores(scores map[string]int) error {
	fmt.Println("\nProductivity scores:")
	renderBars(scores, 100)
	return nil
}

func (textChartRenderer) RenderCompletions(completions map[string]int) error {
	max := 0
	for _, v := range completions {
		if v > max {
			max = v
		}
	}
	if max < 1 {
		max = 1
	}
	fmt.Println("\nTasks completed today:")
	renderBars(completions, max)
	return nil
}

func renderBars(values map[string]int, max int) {
	const width = 40
	ids := make([]string, 0, len(values))
	for id := range values {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		n := values[id] * width / max
		if n < 0 {
			n = 0
		}
		fmt.Printf("  %-16s %s %d\n", id, strings.Repeat("#", n), values[id])
	}
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a progress report",
	Long: `Generate a progress report from the status and assignment documents:
system status, per-agent metrics, task counts, and recommendations.

With --update-log the rendered report is also inserted into
progress_log.md; with --charts plain text bar charts are drawn.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tracker == nil {
			return fmt.Errorf("progress tracker not initialized")
		}

		report, err := Tracker.GenerateReport()
		if err != nil {
			return fmt.Errorf("generating report: %w", err)
		}

		hub := "inactive"
		if report.SystemStatus.CommunicationHubActive {
			hub = "active"
		}
		fmt.Printf("Progress report %s\n", report.Timestamp.Format("2006-01-02 15:04 UTC"))
		fmt.Printf("Hub: %s | active tasks: %d | completed: %d | total assignments: %d\n\n",
			hub, report.TaskSummary.ActiveTasks, report.TaskSummary.CompletedTasks,
			report.TaskSummary.TotalAssignments)

		ids := make([]string, 0, len(report.AgentMetrics))
		for id := range report.AgentMetrics {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			m := report.AgentMetrics[id]
			fmt.Printf("  %-16s %-14s score %3d  %d done today  %.1fh logged\n",
				id, m.Status, m.ProductivityScore, m.TasksCompletedToday, m.TotalHoursLogged)
		}

		if len(report.Recommendations) > 0 {
			fmt.Println("\nRecommendations:")
			for _, r := range report.Recommendations {
				fmt.Printf("  [%s] %s\n", r.Type, r.Message)
			}
		}

		if reportCharts {
			if err := Tracker.RenderCharts(report, textChartRenderer{}); err != nil {
				return fmt.Errorf("rendering charts: %w", err)
			}
		}

		if reportUpdateLog {
			if err := Tracker.UpdateProgressLog(report); err != nil {
				return fmt.Errorf("updating progress log: %w", err)
			}
			fmt.Println("\nProgress log updated.")
		}

		return nil
	},
}

func init() {
	reportCmd.Flags().BoolVar(&reportUpdateLog, "update-log", false, "insert the report into progress_log.md")
	reportCmd.Flags().BoolVar(&reportCharts, "charts", false, "draw text bar charts")
	rootCmd.AddCommand(reportCmd)
}

var _ core.ChartRenderer = textChartRenderer{}
