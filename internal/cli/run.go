package cli

import (
	"github.com/spf13/cobra"

	"practicebot/internal/app"
	logx "practicebot/pkg/logx"
)

// RunCmd returns the run command
func RunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Post the latest practice results once, if not posted yet",
		Long: `Resolve the latest practice session, fetch its classification and post
the top N to the configured webhook. A session that was already posted is
skipped; state is only updated after a successful delivery.`,
		Args: cobra.NoArgs,
		RunE: RunOnce,
	}
}

// RunOnce is the run command body. The root command uses it as its default.
func RunOnce(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(cmd *cobra.Command, a *app.App) error {
		outcome, err := a.RunOnce(cmd.Context())
		if err != nil {
			return err
		}
		a.Logger().Info("done", logx.String("outcome", outcome.String()))
		return nil
	})
}
