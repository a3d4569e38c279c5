package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/intelhub/pkg/config"
	"github.com/ekaya-inc/intelhub/pkg/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending PostgreSQL migrations",
	Long: `Creates or upgrades the kv_entries table used by the postgres store backend.
The serve command also applies migrations on start, so this is only needed
when the schema should be prepared ahead of time.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if cfg.Store.Backend != config.BackendPostgres {
		logger.Warn("Store backend is not postgres; migrating anyway", zap.String("backend", cfg.Store.Backend))
	}

	db, err := database.NewConnection(cmd.Context(), database.ConfigFrom(&cfg.Database), logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(logger); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
	return nil
}
