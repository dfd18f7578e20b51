package handlers

import (
	"context"

	"github.com/spf13/cobra"

	"newsengine/internal/config"
	"newsengine/internal/logger"
	"newsengine/internal/persistence"
)

// NewSyncFeedsCmd synchronizes rss_feeds with the feeds.yaml file.
func NewSyncFeedsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync-feeds",
		Short: "Synchronize the feed table with feeds.yaml",
		Long: `Deactivates every stored feed, then upserts and reactivates the
feeds listed in the feeds.yaml file, so the file is the single source
of truth for what gets polled.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return bootstrap(cmd.Context(), "sync-feeds", runSyncFeeds)
		},
	}
	return cmd
}

func runSyncFeeds(ctx context.Context, cfg *config.Config, store *persistence.DB) error {
	file, err := config.LoadFeedsFile(cfg.FeedsConfigPath)
	if err != nil {
		return err
	}
	if err := store.Feeds.Sync(ctx, file.Feeds); err != nil {
		return err
	}
	logger.Info("feeds synchronized", "feeds", len(file.Feeds))
	return nil
}
