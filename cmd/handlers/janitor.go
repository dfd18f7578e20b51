package handlers

import (
	"context"

	"github.com/spf13/cobra"

	"newsengine/internal/cleanup"
	"newsengine/internal/config"
	"newsengine/internal/persistence"
)

// NewJanitorCmd runs one retention cleanup pass.
func NewJanitorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "janitor",
		Short: "Delete articles, events, and snapshots past retention",
		Long: `Deletes rows older than the retention windows configured in
system_config (article_retention_hours, event_retention_hours,
metrics_retention_hours), in batches of cleanup_batch_size, and records
each pass in the cleanup log. Runs one pass and exits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return bootstrap(cmd.Context(), "janitor", runJanitor)
		},
	}
}

func runJanitor(ctx context.Context, cfg *config.Config, store *persistence.DB) error {
	return cleanup.NewJanitor(store).Run(ctx)
}
