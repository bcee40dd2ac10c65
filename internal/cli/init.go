package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/agenthub/hubctl/internal/storage"
	"github.com/agenthub/hubctl/pkg/models"
	"github.com/spf13/cobra"
)

var initAgents []string

// instructionsTemplate is the initial shared document. The closing delimiter
// doubles as the insertion marker for appended sections.
const instructionsTemplate = `# Agent Instructions

**Last Updated**: %s

## Active Tasks

No tasks assigned yet.

## Communication

%s
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a hub directory",
	Long: `Scaffold the hub base directory: the shared instructions document,
the agent status document seeded with the configured roster, the task
assignment index, the progress log, and a per-agent directory for each
roster member.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		agents := initAgents
		if len(agents) == 0 && Config != nil {
			agents = Config.Agents
		}

		if err := os.MkdirAll(BasePath, 0o755); err != nil {
			return fmt.Errorf("creating hub directory: %w", err)
		}

		now := time.Now().UTC()

		instructionsPath := filepath.Join(BasePath, "instructions.md")
		if _, err := os.Stat(instructionsPath); os.IsNotExist(err) {
			content := fmt.Sprintf(instructionsTemplate,
				now.Format("2006-01-02 15:04 UTC"),
				models.DelimiterCommunicationOver.Token())
			if err := os.WriteFile(instructionsPath, []byte(content), 0o644); err != nil {
				return fmt.Errorf("writing instructions document: %w", err)
			}
			fmt.Printf("Created %s\n", instructionsPath)
		}

		statusPath := filepath.Join(BasePath, "agent_status.json")
		if _, err := os.Stat(statusPath); os.IsNotExist(err) {
			doc := models.NewStatusDocument(agents, now)
			if err := StatusStore.Save(doc); err != nil {
				return fmt.Errorf("writing status document: %w", err)
			}
			fmt.Printf("Created %s (%d agents)\n", statusPath, len(agents))
		}

		assignmentsPath := filepath.Join(BasePath, "task_assignments.json")
		if _, err := os.Stat(assignmentsPath); os.IsNotExist(err) {
			empty := &storage.AssignmentIndex{
				ActiveTasks: make(map[string]storage.ActiveAssignment),
			}
			if err := Assignments.Save(empty); err != nil {
				return fmt.Errorf("writing assignment index: %w", err)
			}
			fmt.Printf("Created %s\n", assignmentsPath)
		}

		progressPath := filepath.Join(BasePath, "progress_log.md")
		if _, err := os.Stat(progressPath); os.IsNotExist(err) {
			content := "# Progress Log\n\n## Progress Updates\n"
			if err := os.WriteFile(progressPath, []byte(content), 0o644); err != nil {
				return fmt.Errorf("writing progress log: %w", err)
			}
			fmt.Printf("Created %s\n", progressPath)
		}

		for _, agent := range agents {
			dir := filepath.Join(BasePath, "agents", agent)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating agent directory for %s: %w", agent, err)
			}
		}

		fmt.Println("Hub initialized.")
		return nil
	},
}

func init() {
	initCmd.Flags().StringSliceVar(&initAgents, "agents", nil, "agent roster (defaults to the configured roster)")
	rootCmd.AddCommand(initCmd)
}
