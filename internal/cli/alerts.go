package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Evaluate alert rules and show triggered alerts",
	Long: `Run one alert evaluation cycle against the status document and the
instructions document, and display any freshly triggered alerts.

Rules check for blocked agents, idle agents, hub liveness, and urgent
or blocked signals in the instructions document. Alerts repeated within
the dedup window are suppressed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if AlertEngine == nil {
			return fmt.Errorf("alert engine not initialized")
		}

		alerts, err := AlertEngine.Evaluate()
		if err != nil {
			return fmt.Errorf("evaluating alerts: %w", err)
		}

		if len(alerts) == 0 {
			fmt.Println("No active alerts.")
			return nil
		}

		fmt.Printf("%d active alert(s):\n\n", len(alerts))
		for _, alert := range alerts {
			severity := strings.ToUpper(string(alert.Severity))
			fmt.Printf("  [%s] %s: %s\n", severity, alert.Type, alert.Message)
			fmt.Printf("         triggered at %s\n\n", alert.Timestamp.Format("2006-01-02 15:04 UTC"))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(alertsCmd)
}
