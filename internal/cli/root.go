package cli

import (
	"github.com/spf13/cobra"
)

const defaultConfigPath = "config.toml"

// NewRoot корневая команда reservations
func NewRoot() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "reservations",
		Short:         "Restaurant reservation availability service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config.toml")

	cmd.AddCommand(NewServeCmd(&configPath))
	cmd.AddCommand(NewMigrateCmd(&configPath))
	cmd.AddCommand(NewSweepCmd(&configPath))
	return cmd
}
