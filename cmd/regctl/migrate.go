package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"eventreg/internal/platform/database"
)

func migrateCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate up|down",
		Short: "Apply or roll back the embedded database migrations",
		Long: `Apply (up) or roll back (down) every embedded migration against
database.url. Running up on a current schema is a no-op.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(database.Up), string(database.Down)},
		RunE: func(cmd *cobra.Command, args []string) error {
			direction := database.Direction(args[0])
			if direction != database.Up && direction != database.Down {
				return fmt.Errorf("unknown direction %q, want up or down", args[0])
			}

			cfg, err := load()
			if err != nil {
				return err
			}
			if cfg.InMemory() {
				return errors.New("database.url is not configured")
			}

			if err := database.Migrate(cfg.Database.URL, direction); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", direction)
			return nil
		},
	}
}
