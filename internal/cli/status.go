package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/agenthub/hubctl/pkg/models"
	"github.com/spf13/cobra"
)

// Display order for agent state groups.
var stateOrder = []models.AgentState{
	models.AgentWorking,
	models.AgentBlocked,
	models.AgentActive,
	models.AgentWaiting,
	models.AgentCompletedTask,
	models.AgentIdle,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show agent status grouped by state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := StatusStore.Load()
		if err != nil {
			return fmt.Errorf("loading agent status: %w", err)
		}

		hub := "inactive"
		if doc.SystemStatus.CommunicationHubActive {
			hub = "active"
		}
		fmt.Printf("Hub: %s | active tasks: %d | completed: %d | updated %s\n\n",
			hub, doc.SystemStatus.ActiveTasks, doc.SystemStatus.CompletedTasks,
			doc.LastUpdated.Format("2006-01-02 15:04 UTC"))

		groups := make(map[models.AgentState][]string)
		for id := range doc.Agents {
			groups[doc.Agents[id].Status] = append(groups[doc.Agents[id].Status], id)
		}

		now := time.Now().UTC()
		for _, state := range stateOrder {
			ids := groups[state]
			if len(ids) == 0 {
				continue
			}
			sort.Strings(ids)
			fmt.Printf("%s (%d):\n", state, len(ids))
			for _, id := range ids {
				rec := doc.Agents[id]
				line := fmt.Sprintf("  %-16s score %3d", id, rec.ProductivityScore())
				if rec.CurrentTask != "" {
					line += fmt.Sprintf("  task %s", rec.CurrentTask)
				}
				line += fmt.Sprintf("  last active %.0fm ago", rec.MinutesSinceActivity(now))
				fmt.Println(line)
			}
			fmt.Println()
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
