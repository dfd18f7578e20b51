package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"newsengine/cmd/handlers"
)

// rootCmd is the base command; every service runs as a subcommand of
// the single newsd binary.
var rootCmd = &cobra.Command{
	Use:   "newsd",
	Short: "News ingestion and analysis pipeline",
	Long: `newsd runs the news pipeline services: RSS/Atom ingestion, claim
extraction, quality composition with event grouping, event analytics,
and retention cleanup. Each service is a subcommand sharing one
database and one configuration surface.`,
	SilenceUsage: true,
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(handlers.NewFetchCmd())
	rootCmd.AddCommand(handlers.NewQualityCmd())
	rootCmd.AddCommand(handlers.NewClaimsCmd())
	rootCmd.AddCommand(handlers.NewAnalyticsCmd())
	rootCmd.AddCommand(handlers.NewJanitorCmd())
	rootCmd.AddCommand(handlers.NewValidateFeedsCmd())
	rootCmd.AddCommand(handlers.NewSyncFeedsCmd())
	rootCmd.AddCommand(handlers.NewMigrateCmd())
}
