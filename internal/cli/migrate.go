package cli

import (
	"fmt"

	"github.com/rogerio-castellano/product-catalog/internal/config"
	"github.com/rogerio-castellano/product-catalog/internal/db"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or roll back Postgres schema migrations",
	Long:      "up applies every pending migration; down rolls back the last one",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.StorageDriver != config.DriverPostgres {
			return fmt.Errorf("migrations only apply to the postgres driver, got %q", cfg.StorageDriver)
		}

		if args[0] == "down" {
			return db.MigrateDown(cfg.DatabaseURL)
		}
		return db.MigrateUp(cfg.DatabaseURL)
	},
}
