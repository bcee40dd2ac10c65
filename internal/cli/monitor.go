package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/agenthub/hubctl/internal/core"
	"github.com/agenthub/hubctl/pkg/models"
	"github.com/spf13/cobra"
)

var monitorAgent string

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run the coordination loop for an agent",
	Long: `Run the per-agent monitor loop: poll the instructions document for
changes, pick up newly-assigned tasks, and keep the agent's status
record current. Waiting agents poll every 10 seconds; working agents
every 60. Runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if monitorAgent == "" {
			return fmt.Errorf("--agent is required")
		}

		cfg := core.MonitorConfig{
			AgentID: monitorAgent,
			Handler: func(task models.TaskRecord) {
				fmt.Printf("[%s] picked up task %s\n", monitorAgent, task.TaskID)
			},
		}
		if Config != nil {
			cfg.WaitingInterval = time.Duration(Config.Intervals.WaitingSeconds) * time.Second
			cfg.WorkingInterval = time.Duration(Config.Intervals.WorkingSeconds) * time.Second
		}

		monitor := core.NewAgentMonitor(Doc, StatusStore, AgentFiles, EventLog, cfg)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		fmt.Printf("Monitoring %s (instructions: %s)\n", monitorAgent, Doc.Path())
		if err := monitor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("running monitor for %s: %w", monitorAgent, err)
		}

		fmt.Println("Monitor stopped.")
		return nil
	},
}

func init() {
	monitorCmd.Flags().StringVar(&monitorAgent, "agent", "", "agent ID to run the loop for (required)")
	rootCmd.AddCommand(monitorCmd)
}
