package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/jobscout/internal/database"
	"github.com/vijay-prabhu/jobscout/internal/output"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List scored jobs, including filtered ones",
	Long: `List scores joined with their jobs, most recently computed first.
Unlike digest, this includes filtered jobs so you can audit the filters.

Examples:
  jobscout list                              # Everything
  jobscout list --profile=robotics --filtered
  jobscout list --reason=hr_role             # Jobs blocked for one reason
  jobscout list -o json`,
	RunE: runList,
}

var (
	listProfile  string
	listFiltered bool
	listReason   string
	listLimit    int
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listProfile, "profile", "p", "", "Only scores for this profile")
	listCmd.Flags().BoolVar(&listFiltered, "filtered", false, "Only filtered jobs")
	listCmd.Flags().StringVar(&listReason, "reason", "", "Only jobs filtered for this reason")
	listCmd.Flags().IntVar(&listLimit, "limit", 50, "Maximum number of results (0 for all)")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	opts := database.ScoreListOptions{
		ProfileID:    listProfile,
		FilteredOnly: listFiltered,
		Limit:        listLimit,
	}
	if listReason != "" {
		opts.FilterReason = &listReason
	}

	jobs, err := a.db.ListScores(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to list scores: %w", err)
	}

	return output.Output(outputFmt, jobs)
}
