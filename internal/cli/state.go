package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"practicebot/internal/app"
)

// StateCmd returns the state command
func StateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect or clear the last posted session",
	}
	cmd.AddCommand(stateShowCmd())
	cmd.AddCommand(stateResetCmd())
	return cmd
}

func stateShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the last posted session key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(cmd *cobra.Command, a *app.App) error {
				key := a.State(cmd.Context()).LastPosted()
				if key == "" {
					fmt.Fprintln(cmd.OutOrStdout(), color.New(color.FgYellow).Sprint("(nothing posted yet)"))
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "last posted session: %s\n", key)
				return nil
			})
		},
	}
}

func stateResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget the last posted session so it is posted again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(cmd *cobra.Command, a *app.App) error {
				if err := a.ResetState(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), color.New(color.FgGreen).Sprint("state cleared"))
				return nil
			})
		},
	}
}
