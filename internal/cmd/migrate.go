package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anthropics/cmdschema/internal/bundle"
	"github.com/anthropics/cmdschema/internal/schema"
	"github.com/anthropics/cmdschema/internal/store"
)

var (
	migrateDB     string
	migratePrefix string
	migrateSource string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the SQLite-backed command schema store",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Create schema tables in the database",
	RunE:  runMigrateUp,
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Drop schema tables from the database",
	RunE:  runMigrateDown,
}

var migrateSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with JSON schemas from a directory",
	RunE:  runMigrateSeed,
}

var migrateRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Drop tables, recreate, and reseed from a directory",
	RunE:  runMigrateRefresh,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration and table status",
	RunE:  runMigrateStatus,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateSeedCmd, migrateRefreshCmd, migrateStatusCmd)

	for _, c := range []*cobra.Command{migrateUpCmd, migrateDownCmd, migrateSeedCmd, migrateRefreshCmd, migrateStatusCmd} {
		c.Flags().StringVar(&migrateDB, "db", "", "Database file path")
		c.Flags().StringVar(&migratePrefix, "prefix", "", "Table prefix")
		c.MarkFlagRequired("db")
		c.MarkFlagRequired("prefix")
	}
	migrateSeedCmd.Flags().StringVar(&migrateSource, "source", "", "Source directory with JSON schemas")
	migrateSeedCmd.MarkFlagRequired("source")
	migrateRefreshCmd.Flags().StringVar(&migrateSource, "source", "", "Source directory with JSON schemas")
	migrateRefreshCmd.MarkFlagRequired("source")
}

func runMigrateUp(c *cobra.Command, args []string) error {
	s, err := store.Open(migrateDB, migratePrefix)
	if err != nil {
		return fmt.Errorf("opening database %q: %w", migrateDB, err)
	}
	defer s.Close()

	fmt.Printf("Migration up complete. Tables created with prefix %q in %q.\n", migratePrefix, migrateDB)
	return nil
}

func runMigrateDown(c *cobra.Command, args []string) error {
	s, err := store.Open(migrateDB, migratePrefix)
	if err != nil {
		return fmt.Errorf("opening database %q: %w", migrateDB, err)
	}
	defer s.Close()

	if err := s.MigrateDown(); err != nil {
		return fmt.Errorf("migration down failed: %w", err)
	}

	fmt.Printf("Migration down complete. Tables with prefix %q dropped from %q.\n", migratePrefix, migrateDB)
	return nil
}

func runMigrateSeed(c *cobra.Command, args []string) error {
	s, err := store.Open(migrateDB, migratePrefix)
	if err != nil {
		return fmt.Errorf("opening database %q: %w", migrateDB, err)
	}
	defer s.Close()

	report, err := seedFromSource(s, migrateSource)
	if err != nil {
		return err
	}

	fmt.Println("Seed complete:")
	printSeedReport(report)
	return nil
}

func runMigrateRefresh(c *cobra.Command, args []string) error {
	s, err := store.Open(migrateDB, migratePrefix)
	if err != nil {
		return fmt.Errorf("opening database %q: %w", migrateDB, err)
	}
	defer s.Close()

	if err := s.MigrateDown(); err != nil {
		return fmt.Errorf("migration down failed: %w", err)
	}
	if err := s.MigrateUp(); err != nil {
		return fmt.Errorf("recreating tables failed: %w", err)
	}

	report, err := seedFromSource(s, migrateSource)
	if err != nil {
		return err
	}

	fmt.Println("Refresh complete (tables dropped, recreated, and reseeded):")
	printSeedReport(report)
	return nil
}

func runMigrateStatus(c *cobra.Command, args []string) error {
	s, err := store.Open(migrateDB, migratePrefix)
	if err != nil {
		return fmt.Errorf("opening database %q: %w", migrateDB, err)
	}
	defer s.Close()

	status, err := s.MigrateStatus()
	if err != nil {
		return fmt.Errorf("reading migration status: %w", err)
	}

	fmt.Println("Migration Status:")
	fmt.Printf("  Command count: %d\n", status.Commands)
	fmt.Printf("  Flag count: %d\n", status.Flags)
	fmt.Printf("  Subcommand count: %d\n", status.Subcommands)
	fmt.Printf("  Arg count: %d\n", status.PositionalArgs)
	return nil
}

// seedReport tallies the rows inserted by a seed/refresh operation.
type seedReport struct {
	commandsInserted    int
	flagsInserted       int
	subcommandsInserted int
	argsInserted        int
}

func seedFromSource(s *store.Store, source string) (seedReport, error) {
	paths, err := bundle.CollectSchemaPaths([]string{source})
	if err != nil {
		return seedReport{}, err
	}
	schemas, err := bundle.LoadAndValidateSchemas(paths)
	if err != nil {
		return seedReport{}, err
	}

	var report seedReport
	for _, sch := range schemas {
		if err := s.SaveCommand(sch); err != nil {
			return seedReport{}, fmt.Errorf("saving command %q: %w", sch.Command, err)
		}
		report.commandsInserted++
		report.flagsInserted += len(sch.GlobalFlags)
		report.argsInserted += len(sch.Positional)
		countSubcommands(sch.Subcommands, &report)
	}
	return report, nil
}

func countSubcommands(subs []schema.SubcommandSchema, report *seedReport) {
	for _, sub := range subs {
		report.subcommandsInserted++
		report.flagsInserted += len(sub.Flags)
		report.argsInserted += len(sub.Positional)
		countSubcommands(sub.Subcommands, report)
	}
}

func printSeedReport(report seedReport) {
	fmt.Printf("  Commands inserted: %d\n", report.commandsInserted)
	fmt.Printf("  Flags inserted: %d\n", report.flagsInserted)
	fmt.Printf("  Subcommands inserted: %d\n", report.subcommandsInserted)
	fmt.Printf("  Args inserted: %d\n", report.argsInserted)
}
