package handlers

import (
	"context"

	"github.com/spf13/cobra"

	"newsengine/internal/config"
	"newsengine/internal/feeds"
	"newsengine/internal/fetch"
	"newsengine/internal/ingest"
	"newsengine/internal/persistence"
	"newsengine/internal/scheduler"
)

const fetchUserAgent = "newsengine-fetcher/1.0"

// NewFetchCmd runs the feed scheduler and article ingester.
func NewFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Poll active feeds and ingest new articles",
		Long: `Polls every active RSS/Atom feed on its own interval, fetches new
entries, extracts article bodies, and stores deduplicated articles.
Runs until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return bootstrap(cmd.Context(), "fetch", runFetch)
		},
	}
}

func runFetch(ctx context.Context, cfg *config.Config, store *persistence.DB) error {
	ingester := ingest.New(store, feeds.NewParser(), fetch.New(fetchUserAgent))
	sched := scheduler.New(store, ingester)
	sched.SetTick(cfg.FetchInterval)
	return sched.Run(ctx)
}
