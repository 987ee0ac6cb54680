package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"practicebot/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "practicebot",
		Short: "Post OpenF1 practice results to Discord",
		Long: `practicebot posts the classification of the latest Formula 1 practice
session to a Discord webhook, once per session. Without a subcommand it
performs a single run.`,
		Args:          cobra.NoArgs,
		RunE:          cli.RunOnce,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cli.BindConfigFlag(rootCmd)

	rootCmd.AddCommand(cli.RunCmd())
	rootCmd.AddCommand(cli.DaemonCmd())
	rootCmd.AddCommand(cli.PreviewCmd())
	rootCmd.AddCommand(cli.StateCmd())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "practicebot:", err)
		cancel()
		os.Exit(1)
	}
}
