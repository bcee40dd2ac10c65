package cli

import (
	"fmt"

	"github.com/agenthub/hubctl/pkg/models"
	"github.com/spf13/cobra"
)

var instructionsAgent string

var instructionsCmd = &cobra.Command{
	Use:   "instructions",
	Short: "Parse and display the shared instructions document",
	Long: `Parse the instructions document and display the derived communication
status, the control delimiters present, and the task assignments,
optionally filtered to a single agent.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		parsed, err := Doc.Parse()
		if err != nil {
			return fmt.Errorf("parsing instructions: %w", err)
		}

		fmt.Printf("Status:      %s\n", parsed.Status)
		if parsed.LastUpdate != "" {
			fmt.Printf("Last update: %s\n", parsed.LastUpdate)
		}

		var present []string
		for _, d := range models.AllDelimiters {
			if parsed.Delimiters[d] {
				present = append(present, string(d))
			}
		}
		if len(present) > 0 {
			fmt.Printf("Delimiters:  %v\n", present)
		}

		tasks := parsed.Tasks
		if instructionsAgent != "" {
			tasks = parsed.TasksFor(instructionsAgent)
		}

		if len(tasks) == 0 {
			fmt.Println("\nNo task assignments.")
			return nil
		}

		fmt.Printf("\n%d task(s):\n\n", len(tasks))
		for _, t := range tasks {
			fmt.Printf("  %s -> %s", t.TaskID, t.AssignedTo)
			if t.Priority != "" {
				fmt.Printf(" [%s]", t.Priority)
			}
			if t.EstimatedHours != "" {
				fmt.Printf(" (%s)", t.EstimatedHours)
			}
			fmt.Println()
			if t.Description != "" {
				fmt.Printf("      %s\n", t.Description)
			}
			if len(t.Dependencies) > 0 {
				fmt.Printf("      depends on: %v\n", t.Dependencies)
			}
		}

		return nil
	},
}

func init() {
	instructionsCmd.Flags().StringVar(&instructionsAgent, "agent", "", "show only tasks assigned to this agent")
	rootCmd.AddCommand(instructionsCmd)
}
