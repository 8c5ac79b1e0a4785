package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/jobscout/internal/output"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show job discovery statistics",
	Long: `Display aggregate statistics: stored jobs, per-profile grade
distribution, filter reasons and job sources.

Examples:
  jobscout stats
  jobscout stats -o json`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	stats, err := a.db.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	return output.Output(outputFmt, stats)
}
