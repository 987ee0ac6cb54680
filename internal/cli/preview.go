package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"practicebot/internal/app"
	"practicebot/internal/pipeline"
)

// PreviewCmd returns the preview command
func PreviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "Print the message for the latest practice session without posting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(cmd *cobra.Command, a *app.App) error {
				msg, outcome, err := a.Preview(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if outcome != pipeline.OutcomeReady {
					fmt.Fprintln(out, color.New(color.FgYellow).Sprint(outcome.String()))
					return nil
				}
				fmt.Fprintln(out, color.New(color.Bold, color.FgCyan).Sprint(msg.Title))
				for _, line := range msg.Lines {
					fmt.Fprintln(out, line)
				}
				if st := a.State(cmd.Context()); st.LastPosted() != "" {
					fmt.Fprintf(out, "\nlast posted: %s\n", st.LastPosted())
				}
				return nil
			})
		},
	}
}
