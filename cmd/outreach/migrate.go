package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/outreach/internal/db/migrations"
	"github.com/dmitrymomot/outreach/pkg/db"
)

func newMigrateCmd(cfgPath func() string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	run := func(dir db.MigrateDirection) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig(cfgPath())
			if err != nil {
				return err
			}
			pool, err := db.Connect(cmd.Context(), cfg.Database)
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer pool.Close()

			return db.Run(cmd.Context(), pool, migrations.FS, cfg.Database.MigrationsTable, dir, log)
		}
	}

	cmd.AddCommand(
		&cobra.Command{Use: "up", Short: "Apply all pending migrations", RunE: run(db.MigrateUp)},
		&cobra.Command{Use: "down", Short: "Roll back the latest migration", RunE: run(db.MigrateDown)},
		&cobra.Command{Use: "status", Short: "Show migration status", RunE: run(db.MigrateStatus)},
	)
	return cmd
}
