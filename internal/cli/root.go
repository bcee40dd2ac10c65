package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "hubctl",
	Short: "Agent communication hub - file-resident coordination for worker agents",
	Long: `hubctl coordinates a fleet of worker agents through shared documents:
a markdown instructions file carrying task assignments and control
delimiters, a JSON status document tracking every agent's state, and an
alert engine watching for blocked or stalled work.

It provides CLI commands for assigning tasks, running per-agent monitor
loops, evaluating alerts, and generating progress reports.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("hubctl %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
