package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/jobscout/internal/database"
	"github.com/vijay-prabhu/jobscout/internal/output"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <company>",
	Short: "Search stored jobs by company name",
	Long: `Search stored jobs whose company name contains the query
(case-insensitive), newest first.

Examples:
  jobscout search "boston dynamics"
  jobscout search anduril -o json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVar(&searchLimit, "limit", 50, "Maximum number of results (0 for all)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	query := strings.Join(args, " ")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := a.db.ListJobs(ctx, database.JobListOptions{
		Company: &query,
		Limit:   searchLimit,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 && outputFmt != "json" {
		fmt.Printf("No jobs found matching: %s\n", query)
		return nil
	}

	if outputFmt != "json" {
		fmt.Printf("Found %d job(s) matching: %s\n\n", len(results), query)
	}

	return output.Output(outputFmt, results)
}
