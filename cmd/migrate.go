package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/killallgit/genre-api/internal/database"
	"github.com/killallgit/genre-api/internal/models"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Manage the prediction history database.

The serve command migrates on startup; these subcommands are for preparing
or inspecting the database separately.

Available subcommands:
  up      - Create or update the prediction tables
  status  - Show whether the tables exist and how many predictions are stored`,
}

// migrateUpCmd applies the schema
var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Create or update the prediction tables",
	Long: `Create or update the prediction history tables in the configured database.

Migrations are additive: columns are added, never dropped.`,
	RunE: runMigrateUp,
}

// migrateStatusCmd shows migration status
var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	Long: `Display the current status of the prediction history database.`,
	RunE: runMigrateStatus,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateStatusCmd)

	migrateCmd.PersistentFlags().Bool("dry-run", false, "show what would be done without making changes")
}

func openHistoryDB() (*database.DB, string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, "", err
	}
	if cfg.Database.Path == "" {
		return nil, "", fmt.Errorf("database.path is empty, prediction history is disabled")
	}

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		return nil, "", fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, cfg.Database.Path, nil
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	db, path, err := openHistoryDB()
	if err != nil {
		return err
	}
	defer db.Close()

	out := cmd.OutOrStdout()
	if dryRun {
		fmt.Fprintln(out, "Dry run mode - no changes will be made")
		fmt.Fprintf(out, "Would migrate table %q in %s\n", predictionsTable(db), path)
		return nil
	}

	if err := db.AutoMigrate(&models.Prediction{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	fmt.Fprintf(out, "Migrated %s\n", path)
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	db, path, err := openHistoryDB()
	if err != nil {
		return err
	}
	defer db.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Database Migration Status")
	fmt.Fprintln(out, repeatString("=", 50))
	fmt.Fprintf(out, "Database:     %s\n", path)

	if err := db.HealthCheck(); err != nil {
		fmt.Fprintf(out, "Connection:   unhealthy (%v)\n", err)
		return err
	}
	fmt.Fprintln(out, "Connection:   healthy")

	table := predictionsTable(db)
	if !db.Migrator().HasTable(&models.Prediction{}) {
		fmt.Fprintf(out, "Table %s:  missing (run 'migrate up')\n", table)
		return nil
	}

	var count int64
	if err := db.Model(&models.Prediction{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count predictions: %w", err)
	}
	fmt.Fprintf(out, "Table %s:  present, %d prediction(s)\n", table, count)
	return nil
}

func predictionsTable(db *database.DB) string {
	stmt := db.Model(&models.Prediction{}).Statement
	if err := stmt.Parse(&models.Prediction{}); err != nil {
		return "predictions"
	}
	return stmt.Schema.Table
}
