package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"folio/database"
)

func newMigrateCmd(v *viper.Viper) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded SQL migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			databaseURL := v.GetString("DATABASE_URL")
			if databaseURL == "" {
				return errors.New("DATABASE_URL not set")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			db, err := database.Connect(ctx, databaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := db.Migrate(ctx)
			for _, name := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ %s\n", name)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\nAll %d migrations completed!\n", len(applied))
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "overall migration timeout")
	return cmd
}
