package cli

import (
	"github.com/spf13/cobra"

	"practicebot/internal/app"
)

// DaemonCmd returns the daemon command
func DaemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run on the configured schedule until interrupted",
		Long: `Run the practice pipeline on schedule.spec (cron expression, "every:15m",
"HH:MM" interval) until SIGINT/SIGTERM. The config file is watched and edits
apply from the next run; a schedule change needs a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(cmd *cobra.Command, a *app.App) error {
				return a.Daemon(cmd.Context())
			})
		},
	}
}
