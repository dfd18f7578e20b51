package handlers

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"newsengine/internal/config"
	"newsengine/internal/logger"
	"newsengine/internal/persistence"
)

// NewMigrateCmd provisions the database schema. It skips the shared
// bootstrap because the health check requires the tables this command
// creates.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store, err := persistence.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Migrate(ctx); err != nil {
				return err
			}
			logger.Info("schema migrated")
			return nil
		},
	}
}
