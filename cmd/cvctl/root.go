package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"folio/logging"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.AutomaticEnv()

	var logLevel string

	root := &cobra.Command{
		Use:          "cvctl",
		Short:        "Administer the CV projects API",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			logging.Init(logging.Config{Level: logLevel, Format: "console", Output: cmd.ErrOrStderr()})
			return nil
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		newMigrateCmd(v),
		newTokenCmd(v),
		newHealthCmd(v),
		newProjectsCmd(v),
		newProjectCmd(v),
		newStatsCmd(v),
	)
	return root
}
