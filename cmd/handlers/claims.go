package handlers

import (
	"context"

	"github.com/spf13/cobra"

	"newsengine/internal/claims"
	"newsengine/internal/config"
	"newsengine/internal/persistence"
)

// NewClaimsCmd runs the claim extraction service.
func NewClaimsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "claims",
		Short: "Extract factual claims from stored articles",
		Long: `Processes articles that have no claims yet: classifies declarative
sentences into claim types with heuristic verification states and
stores them. Articles without extractable claims get a placeholder row
so they are not reprocessed. Runs until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return bootstrap(cmd.Context(), "claims", runClaims)
		},
	}
}

func runClaims(ctx context.Context, cfg *config.Config, store *persistence.DB) error {
	worker := claims.NewWorker(store, cfg.BatchSize, cfg.SleepInterval)
	return worker.Run(ctx)
}
