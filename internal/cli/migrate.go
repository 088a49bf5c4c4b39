package cli

import (
	"log/slog"

	"saleor-stripe-app/internal/config"
	"saleor-stripe-app/internal/db"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.MustLoadConfig(configPath)
		if err := db.RunMigrations(db.GetConnStr(cfg.Database)); err != nil {
			return errors.Wrap(err, "running migrations")
		}
		slog.Info("Migrations applied", "database", cfg.Database.Name)
		return nil
	},
}
