package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Freeeeeet/practice_scheduler/internal/app"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), func(ctx context.Context, m *app.Migrator) error {
				return m.Run(ctx)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), func(ctx context.Context, m *app.Migrator) error {
				if err := m.Down(ctx); err != nil {
					return err
				}
				version, err := m.Version(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Rolled back, database is at version %d.\n", version)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), func(ctx context.Context, m *app.Migrator) error {
				version, err := m.Version(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Database is at version %d.\n", version)
				return nil
			})
		},
	})

	return cmd
}

func withMigrator(ctx context.Context, fn func(context.Context, *app.Migrator) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.close()

	pool, err := rt.connect(ctx)
	if err != nil {
		return err
	}
	m, err := app.NewMigrator(pool, rt.logger.Named("migrate"))
	if err != nil {
		return err
	}
	defer m.Close()

	return fn(ctx, m)
}
