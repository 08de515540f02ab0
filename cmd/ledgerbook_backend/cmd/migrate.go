package cmd

import (
	"fmt"
	"log/slog"

	"github.com/SscSPs/ledgerbook/internal/platform/config"
	"github.com/SscSPs/ledgerbook/pkg/database"
	"github.com/spf13/cobra"
)

// migrateCmd applies pending database migrations and exits.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.StorageDriver != config.StoragePostgres {
			return fmt.Errorf("migrate requires STORAGE_DRIVER=%s", config.StoragePostgres)
		}

		slog.Info("Running database migrations...", slog.String("path", cfg.MigrationsPath))
		if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			slog.Error("Failed to apply migrations", slog.String("error", err.Error()))
			return err
		}
		return nil
	},
}
