package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"genr8-backend/internal/app"
	"genr8-backend/internal/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long:  `Create the kv_entries table for STORE_BACKEND=sqlite, postgres or mysql. Other backends need no schema.`,
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.NewWithWriter(os.Stderr, cfg.LogLevel, "console")

	if err := app.Migrate(cmd.Context(), cfg, log); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", cfg.StoreBackend)
	return nil
}
