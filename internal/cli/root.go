// Package cli holds the practicebot subcommands.
package cli

import (
	"github.com/spf13/cobra"

	"practicebot/internal/app"
	"practicebot/internal/config"
)

// ConfigPath is bound to the persistent --config flag by the root command.
var ConfigPath string

// BindConfigFlag registers --config on the root command.
func BindConfigFlag(root *cobra.Command) {
	root.PersistentFlags().StringVar(&ConfigPath, "config", "",
		"path to a JSON or YAML config file (optional; env vars override it)")
}

func openApp() (*app.App, error) {
	return app.New(config.NewManager(ConfigPath, nil))
}

// withApp runs fn against a freshly built app and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(cmd *cobra.Command, a *app.App) error) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(cmd, a)
}
