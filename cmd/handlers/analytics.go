package handlers

import (
	"context"

	"github.com/spf13/cobra"

	"newsengine/internal/config"
	"newsengine/internal/eqis"
	"newsengine/internal/persistence"
)

// NewAnalyticsCmd runs one EQIS scoring pass over all events.
func NewAnalyticsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analytics",
		Short: "Compute the quality index for every event",
		Long: `Recomputes the Event Quality Index Score for every stored event:
timeliness, outlet coverage, keyword coherence, best source,
corroboration, and correction risk, weighted per configs/metrics.yaml.
Runs one pass and exits; schedule it externally.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return bootstrap(cmd.Context(), "analytics", runAnalytics)
		},
	}
}

func runAnalytics(ctx context.Context, cfg *config.Config, store *persistence.DB) error {
	file, err := config.LoadEQISFile(cfg.EQISConfigPath)
	if err != nil {
		return err
	}
	params := eqis.Params{
		RecencyTauDays:     file.Params.RecencyTauDays,
		CoverageSaturation: file.Params.CoverageSaturation,
		CoherenceMin:       file.Params.CoherenceMinArticles,
		HighRiskCap:        file.Params.HighRiskCap,
	}
	return eqis.NewRunner(store, file.Weights, params).Run(ctx)
}
