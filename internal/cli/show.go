package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/jobscout/internal/output"
)

var showCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Show a job with its score for every profile",
	Long: `Show detailed information about a stored job: where it was seen and
how each profile scored it, category by category.

The job ID is the identity hash or a unique prefix of it (at least 4
characters), as printed by digest, review and list.

Examples:
  jobscout show 3f2a9c81
  jobscout show 3f2a9c81 -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	j, err := a.resolveJob(ctx, args[0])
	if err != nil {
		return err
	}

	prov, err := a.db.ListProvenance(ctx, j.IdentityHash)
	if err != nil {
		return fmt.Errorf("failed to load provenance: %w", err)
	}
	j.Provenance = prov

	scores, err := a.db.ScoresForJob(ctx, j.IdentityHash)
	if err != nil {
		return fmt.Errorf("failed to load scores: %w", err)
	}

	return output.Output(outputFmt, &output.JobDetail{Job: *j, Scores: scores})
}
