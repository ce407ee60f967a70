package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/TCG-Collection-Manager/internal/storage"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: withMigrations(func(mm *storage.MigrationManager, _ []string) error {
		if err := mm.Up(); err != nil {
			return err
		}
		return printVersion(mm)
	}),
}

var migrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Roll back migrations (default 1)",
	Args:  cobra.MaximumNArgs(1),
	RunE: withMigrations(func(mm *storage.MigrationManager, args []string) error {
		steps := 1
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			steps = n
		}
		if err := mm.Steps(-steps); err != nil {
			return err
		}
		return printVersion(mm)
	}),
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the schema version",
	Args:  cobra.NoArgs,
	RunE: withMigrations(func(mm *storage.MigrationManager, _ []string) error {
		return printVersion(mm)
	}),
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
}

func withMigrations(run func(mm *storage.MigrationManager, args []string) error) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, args []string) error {
		path, err := cfg.DBPath()
		if err != nil {
			return err
		}
		mm, err := storage.NewMigrationManager(path)
		if err != nil {
			return err
		}
		defer func() { _ = mm.Close() }()
		return run(mm, args)
	}
}

func printVersion(mm *storage.MigrationManager) error {
	version, dirty, err := mm.Version()
	if err != nil {
		return err
	}
	if dirty {
		fmt.Printf("Schema version: %d (dirty)\n", version)
		return nil
	}
	fmt.Printf("Schema version: %d\n", version)
	return nil
}
