package cmd

import (
	"fmt"

	"github.com/fekuna/omnipos-backoffice-service/migrations"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	appLogger := newLogger(cfg)
	defer appLogger.Sync()

	db, err := openDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := migrations.Apply(cmd.Context(), db, appLogger); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	appLogger.Info("Migrations applied", zap.String("db_name", cfg.Postgres.DBName))
	return nil
}
