package handlers

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"newsengine/internal/config"
	"newsengine/internal/persistence"
	"newsengine/internal/reputation"
)

// NewValidateFeedsCmd reports feed-to-agency mapping coverage.
func NewValidateFeedsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-feeds",
		Short: "Report feed-to-agency reputation mapping coverage",
		Long: `Checks every active feed against the agency reputation table and
prints which feeds resolve to a scored agency, which map without a
score, and which have no mapping at all, with name-variant suggestions
for the unmapped ones. Advisory only; nothing is modified.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return bootstrap(cmd.Context(), "validate-feeds", runValidateFeeds)
		},
	}
}

func runValidateFeeds(ctx context.Context, cfg *config.Config, store *persistence.DB) error {
	report, err := reputation.NewValidator(store).Validate(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FEED\tOUTLET\tSTATUS\tSCORE")
	for _, feed := range report.Feeds {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", feed.FeedID, feed.OutletName, feed.Status, feed.ReputationScore)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nFeeds: %d  mapped: %.2f%%  scored: %.2f%%\n",
		report.TotalFeeds, report.MappingPercentage, report.ScoringPercentage)
	if len(report.Suggestions) > 0 {
		fmt.Println("\nSuggested mappings:")
		for _, s := range report.Suggestions {
			fmt.Printf("  %s -> %s\n", s.Outlet, s.Agency)
		}
	}
	return nil
}
