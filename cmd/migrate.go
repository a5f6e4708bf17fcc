package cmd

import (
	"errors"
	"fmt"

	"github.com/newhook/flagtrack/internal/store/sqlstore"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the flag database schema",
	Long: `Manage schema migrations for projects on the sqlite or postgres backend.
Migrations run automatically when the store is opened; these commands
inspect them or undo the newest one. The json backend has no schema.`,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	Args:  cobra.NoArgs,
	RunE:  runMigrateStatus,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	Args:  cobra.NoArgs,
	RunE:  runMigrateUp,
}

var migrateRollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Roll back the newest applied migration",
	Args:  cobra.NoArgs,
	RunE:  runMigrateRollback,
}

func init() {
	migrateCmd.AddCommand(migrateStatusCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateRollbackCmd)
}

// withMigrator opens the project's database and hands its migrator to fn.
func withMigrator(fn func(m *sqlstore.Migrator) error) error {
	ctx := GetContext()
	proj, err := openProject(ctx)
	if err != nil {
		return err
	}
	defer proj.Close()

	db, err := proj.Database()
	if err != nil {
		return err
	}
	return fn(db.Migrator())
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	return withMigrator(func(m *sqlstore.Migrator) error {
		states, err := m.Status(GetContext())
		if err != nil {
			return fmt.Errorf("failed to get migration status: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("Migrations (%d)", len(states))))
		for _, st := range states {
			state := dimStyle.Render("pending")
			if st.Applied {
				state = successStyle.Render("applied")
			}
			name := st.Name
			if name == "" {
				name = "(unknown)"
			}
			fmt.Fprintf(out, "  %s  %-20s %s\n", st.Version, name, state)
		}
		return nil
	})
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	return withMigrator(func(m *sqlstore.Migrator) error {
		applied, err := m.Up(GetContext())
		if err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(applied) == 0 {
			fmt.Fprintln(out, "Schema is up to date.")
			return nil
		}
		for _, mig := range applied {
			fmt.Fprintf(out, "Applied %s_%s\n", mig.Version, mig.Name)
		}
		return nil
	})
}

func runMigrateRollback(cmd *cobra.Command, args []string) error {
	return withMigrator(func(m *sqlstore.Migrator) error {
		mig, err := m.Rollback(GetContext())
		if errors.Is(err, sqlstore.ErrNoMigrations) {
			fmt.Fprintln(cmd.OutOrStdout(), "No migrations to roll back.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), warnStyle.Render(fmt.Sprintf("Rolled back %s_%s", mig.Version, mig.Name)))
		return nil
	})
}
