package cli

import (
	"fmt"
	"time"

	"github.com/agenthub/hubctl/internal/core"
	"github.com/agenthub/hubctl/pkg/models"
	"github.com/spf13/cobra"
)

var (
	assignAgent        string
	assignPriority     string
	assignHours        string
	assignDescription  string
	assignDeliverables []string
	assignDepends      []string
	assignContext      string
)

var assignCmd = &cobra.Command{
	Use:   "assign <task-id>",
	Short: "Assign a task to an agent",
	Long: `Append a task assignment to the shared instructions document and record
it in the assignment index. The assignment is written as a fenced JSON
block under a TASK_ASSIGNED delimiter; the target agent's monitor loop
picks it up on its next poll.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskID := args[0]
		if assignAgent == "" {
			return fmt.Errorf("--agent is required")
		}

		task := models.TaskRecord{
			TaskID:         taskID,
			AssignedTo:     assignAgent,
			Priority:       models.Priority(assignPriority),
			EstimatedHours: assignHours,
			Description:    assignDescription,
			Deliverables:   assignDeliverables,
			Dependencies:   assignDepends,
			Context:        assignContext,
		}

		block, err := core.RenderTaskBlock(task)
		if err != nil {
			return fmt.Errorf("rendering task %s: %w", taskID, err)
		}

		section := fmt.Sprintf("## Task Assignment: %s\n\n%s\n\n%s",
			taskID, models.DelimiterTaskAssigned.Token(), block)
		marker := models.DelimiterCommunicationOver.Token()
		if err := Doc.Append(marker, section); err != nil {
			return fmt.Errorf("appending assignment %s: %w", taskID, err)
		}

		if err := Assignments.Add(task); err != nil {
			return fmt.Errorf("recording assignment %s: %w", taskID, err)
		}
		if err := syncTaskCounts(); err != nil {
			return fmt.Errorf("updating task counters: %w", err)
		}

		if EventLog != nil {
			_ = EventLog.Record("task.assigned", assignAgent,
				fmt.Sprintf("task %s assigned to %s", taskID, assignAgent),
				map[string]any{"task_id": taskID})
		}

		fmt.Printf("Assigned %s to %s at %s\n", taskID, assignAgent,
			time.Now().UTC().Format("2006-01-02 15:04 UTC"))
		return nil
	},
}

// syncTaskCounts mirrors the assignment index counts onto the status
// document's system block.
func syncTaskCounts() error {
	index, err := Assignments.Load()
	if err != nil {
		return err
	}
	return StatusStore.SetTaskCounts(len(index.ActiveTasks), len(index.CompletedTasks))
}

func init() {
	assignCmd.Flags().StringVar(&assignAgent, "agent", "", "agent ID to assign the task to (required)")
	assignCmd.Flags().StringVar(&assignPriority, "priority", string(models.PriorityMedium), "task priority (low, medium, high)")
	assignCmd.Flags().StringVar(&assignHours, "hours", "", "estimated effort range (e.g. \"4-6 hours\")")
	assignCmd.Flags().StringVar(&assignDescription, "description", "", "task description")
	assignCmd.Flags().StringSliceVar(&assignDeliverables, "deliverable", nil, "expected deliverable (repeatable)")
	assignCmd.Flags().StringSliceVar(&assignDepends, "depends", nil, "task ID this task depends on (repeatable)")
	assignCmd.Flags().StringVar(&assignContext, "context", "", "free-form context for the agent")
	rootCmd.AddCommand(assignCmd)
}
