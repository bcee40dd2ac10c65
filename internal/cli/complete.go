package cli

import (
	"fmt"
	"time"

	"github.com/agenthub/hubctl/internal/core"
	"github.com/agenthub/hubctl/pkg/models"
	"github.com/spf13/cobra"
)

var (
	completeAgent string
	completeHours float64
	completeNotes string
)

var completeCmd = &cobra.Command{
	Use:   "complete <task-id>",
	Short: "Mark a task complete",
	Long: `Record a task completion: the agent's status record moves to
completed_task, the assignment index moves the task to the completed
set, the agent's task log gains an entry, and a TASK_COMPLETE section
is appended to the instructions document.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskID := args[0]
		if completeAgent == "" {
			return fmt.Errorf("--agent is required")
		}

		monitor := core.NewAgentMonitor(Doc, StatusStore, AgentFiles, EventLog, core.MonitorConfig{
			AgentID: completeAgent,
			Logf:    func(format string, args ...any) {},
		})
		monitor.Restore()
		if current := monitor.CurrentTask(); current != taskID {
			return fmt.Errorf("agent %s is not working on %s (current task: %q)", completeAgent, taskID, current)
		}
		if err := monitor.CompleteTask(completeHours, completeNotes); err != nil {
			return fmt.Errorf("completing task %s: %w", taskID, err)
		}

		if err := Assignments.Complete(taskID, completeHours); err != nil {
			return fmt.Errorf("updating assignment index for %s: %w", taskID, err)
		}
		if err := syncTaskCounts(); err != nil {
			return fmt.Errorf("updating task counters: %w", err)
		}

		section := fmt.Sprintf("## Task Complete: %s\n\n%s\n\nCompleted by %s at %s.",
			taskID, models.DelimiterTaskComplete.Token(), completeAgent,
			time.Now().UTC().Format("2006-01-02 15:04 UTC"))
		marker := models.DelimiterCommunicationOver.Token()
		if err := Doc.Append(marker, section); err != nil {
			return fmt.Errorf("appending completion for %s: %w", taskID, err)
		}

		fmt.Printf("Task %s marked complete for %s (%.1fh logged)\n", taskID, completeAgent, completeHours)
		return nil
	},
}

func init() {
	completeCmd.Flags().StringVar(&completeAgent, "agent", "", "agent ID completing the task (required)")
	completeCmd.Flags().Float64Var(&completeHours, "hours", 0, "hours logged on the task")
	completeCmd.Flags().StringVar(&completeNotes, "notes", "", "completion notes for the agent's task log")
	rootCmd.AddCommand(completeCmd)
}
