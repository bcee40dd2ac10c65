package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the continuous alerting loop",
	Long: `Evaluate alert rules on a fixed interval and print triggered alerts as
they fire. Critical and high severity alerts are also routed to the
configured notification channels. Runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if AlertEngine == nil {
			return fmt.Errorf("alert engine not initialized")
		}

		interval := watchInterval
		if interval <= 0 && Config != nil {
			interval = time.Duration(Config.Intervals.AlertSeconds) * time.Second
		}
		if interval <= 0 {
			interval = time.Minute
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		fmt.Printf("Watching for alerts every %s (ctrl-c to stop)\n", interval)
		for {
			alerts, err := AlertEngine.Evaluate()
			if err != nil {
				fmt.Fprintf(os.Stderr, "evaluating alerts: %v\n", err)
			}
			for _, alert := range alerts {
				severity := strings.ToUpper(string(alert.Severity))
				fmt.Printf("%s [%s] %s: %s\n",
					alert.Timestamp.Format("2006-01-02 15:04:05"),
					severity, alert.Type, alert.Message)
			}

			select {
			case <-ctx.Done():
				fmt.Println("\nWatch stopped.")
				return nil
			case <-time.After(interval):
			}
		}
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "evaluation interval (defaults to the configured alert interval)")
	rootCmd.AddCommand(watchCmd)
}
