package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	hubmcp "github.com/agenthub/hubctl/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the hubctl MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the hubctl MCP server on stdio",
	Long: `Start the hubctl MCP server on stdio transport.

The server exposes hub state as MCP tools that AI coding assistants can
call: get_instructions, list_agents, update_agent_status, get_alerts,
get_report.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Doc == nil || StatusStore == nil {
			return fmt.Errorf("hub services not initialized")
		}

		srv := hubmcp.NewServer(Doc, StatusStore, Tracker, AlertEngine, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
