package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	rescoreProfiles []string
	rescorePrune    bool
)

var rescoreCmd = &cobra.Command{
	Use:   "rescore",
	Short: "Recompute scores after editing profiles",
	Long: `Rescore re-runs the filters and the scorer for every stored job,
overwriting the score rows in place. Manual review decisions are kept.

Examples:
  jobscout rescore                      # All enabled profiles
  jobscout rescore --profile=robotics   # One profile
  jobscout rescore --prune              # Also drop scores of removed or disabled profiles`,
	RunE: runRescore,
}

func init() {
	rootCmd.AddCommand(rescoreCmd)
	rescoreCmd.Flags().StringSliceVar(&rescoreProfiles, "profile", nil, "Profile IDs to rescore (default: all enabled)")
	rescoreCmd.Flags().BoolVar(&rescorePrune, "prune", false, "Delete scores of profiles that are no longer enabled")
}

func runRescore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ingester, err := a.newIngester(ctx)
	if err != nil {
		return err
	}

	terminal := NewTerminal()
	n, err := ingester.Rescore(ctx, rescoreProfiles, terminal.Counter("Rescoring"))
	terminal.ClearLine()
	if err != nil {
		return fmt.Errorf("rescore failed after %d jobs: %w", n, err)
	}

	fmt.Printf("Rescored %d jobs for %d profile(s)\n", n, profileCount(rescoreProfiles, len(ingester.Profiles())))

	if rescorePrune {
		keep := make([]string, 0, len(ingester.Profiles()))
		for _, p := range ingester.Profiles() {
			keep = append(keep, p.ID)
		}
		removed, err := a.db.PruneScores(ctx, keep)
		if err != nil {
			return fmt.Errorf("failed to prune scores: %w", err)
		}
		fmt.Printf("Pruned %d score(s) of removed profiles\n", removed)
	}

	return nil
}

func profileCount(selected []string, enabled int) int {
	if len(selected) > 0 {
		return len(selected)
	}
	return enabled
}
