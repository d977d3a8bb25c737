package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bugtrackr/bug-tracker/internal/config"
	"github.com/bugtrackr/bug-tracker/internal/persistence"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply embedded schema migrations to the configured store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		// Explicit invocation overrides the auto-migrate switches.
		cfg.Postgres.RunMigrations = true
		cfg.SQLite.RunMigrations = true

		d, err := loadDepsFromConfig(ctx, cfg, true)
		if err != nil {
			return err
		}
		defer d.Close()

		files, err := persistence.MigrationFiles("migrations/" + cfg.Storage.Driver)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s schema up to date (%s, %d migrations)\n", successPrefix, cfg.Storage.Driver, len(files))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
