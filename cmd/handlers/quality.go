package handlers

import (
	"context"

	"github.com/spf13/cobra"

	"newsengine/internal/config"
	"newsengine/internal/health"
	"newsengine/internal/persistence"
	"newsengine/internal/quality"
)

// NewQualityCmd runs the composition worker: quality scoring, NER,
// event grouping, and the self-tuning performance loop.
func NewQualityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quality",
		Short: "Score articles and group them into events",
		Long: `Processes article batches: extracts named entities, scores writing
quality and outlet reputation, composes the stored quality score,
groups scored articles into events, and records a performance snapshot
per batch. Runs until interrupted; the in-flight article is finished
before shutdown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return bootstrap(cmd.Context(), "quality", runQuality)
		},
	}
}

func runQuality(ctx context.Context, cfg *config.Config, store *persistence.DB) error {
	extractor := health.Extractor(nil)
	worker := quality.NewWorker(store, extractor, cfg.ServiceInstance, cfg.BatchSize, cfg.SleepInterval)
	return worker.Run(ctx)
}
