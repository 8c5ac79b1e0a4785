package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/jobscout/internal/database"
	"github.com/vijay-prabhu/jobscout/internal/job"
	"github.com/vijay-prabhu/jobscout/internal/output"
)

const (
	PromptApprove = "Approve (send to digest)"
	PromptReject  = "Reject"
	PromptSkip    = "Skip"
	PromptQuit    = "Quit"
)

var (
	reviewProfile     string
	reviewInteractive bool
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "List or resolve jobs flagged for manual review",
	Long: `Review shows jobs with ambiguous titles (for example "Senior
Associate") that need a human decision before they reach a digest.

Examples:
  jobscout review                         # Queue for all profiles
  jobscout review --profile=robotics -i   # Decide interactively
  jobscout review approve 3f2a9c --profile=robotics
  jobscout review reject 3f2a9c --profile=robotics`,
	RunE: runReview,
}

var reviewApproveCmd = &cobra.Command{
	Use:   "approve <job-id>",
	Short: "Approve a job waiting for review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runResolve(cmd.Context(), args[0], true)
	},
}

var reviewRejectCmd = &cobra.Command{
	Use:   "reject <job-id>",
	Short: "Reject a job waiting for review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runResolve(cmd.Context(), args[0], false)
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)
	reviewCmd.AddCommand(reviewApproveCmd)
	reviewCmd.AddCommand(reviewRejectCmd)

	reviewCmd.PersistentFlags().StringVarP(&reviewProfile, "profile", "p", "", "Profile ID (default: all profiles for listing)")
	reviewCmd.Flags().BoolVarP(&reviewInteractive, "interactive", "i", false, "Approve or reject each job interactively")
}

func runReview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	queue, err := a.db.ManualReviewQueue(ctx, reviewProfile)
	if err != nil {
		return fmt.Errorf("failed to load review queue: %w", err)
	}

	if !reviewInteractive {
		return output.Output(outputFmt, queue)
	}

	if len(queue) == 0 {
		fmt.Println("Nothing to review.")
		return nil
	}

	approved, rejected := 0, 0
	for i, sj := range queue {
		fmt.Println()
		fmt.Printf("[%d/%d] %s\n", i+1, len(queue), reviewLabel(sj))
		fmt.Printf("  %s\n", sj.Job.Link)

		prompt := promptui.Select{
			Label: "Decision",
			Items: []string{PromptApprove, PromptReject, PromptSkip, PromptQuit},
		}
		_, choice, err := prompt.Run()
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			break
		}
		if err != nil {
			return err
		}

		switch choice {
		case PromptApprove, PromptReject:
			approve := choice == PromptApprove
			if err := a.db.ResolveReview(ctx, sj.Job.IdentityHash, sj.Score.ProfileID, approve); err != nil {
				return fmt.Errorf("failed to record decision: %w", err)
			}
			if approve {
				approved++
			} else {
				rejected++
			}
		case PromptSkip:
			continue
		case PromptQuit:
			fmt.Printf("\nApproved %d, rejected %d\n", approved, rejected)
			return nil
		}
	}

	fmt.Printf("\nApproved %d, rejected %d\n", approved, rejected)
	return nil
}

func runResolve(ctx context.Context, prefix string, approve bool) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	profile, err := a.resolveProfile(reviewProfile)
	if err != nil {
		return err
	}

	j, err := a.resolveJob(ctx, prefix)
	if err != nil {
		return err
	}

	score, err := a.db.GetScore(ctx, j.IdentityHash, profile.ID)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if score == nil {
		return fmt.Errorf("job %s has no score for profile %s", job.ShortHash(j.IdentityHash), profile.ID)
	}
	if !score.ManualReview {
		return fmt.Errorf("job %s is not waiting for review for profile %s", job.ShortHash(j.IdentityHash), profile.ID)
	}

	if err := a.db.ResolveReview(ctx, j.IdentityHash, profile.ID, approve); err != nil {
		return fmt.Errorf("failed to record decision: %w", err)
	}

	decision := database.ReviewRejected
	if approve {
		decision = database.ReviewApproved
	}
	fmt.Printf("%s: %s at %s (%s)\n", decision, j.Title, j.Company, profile.ID)
	return nil
}

func reviewLabel(sj database.ScoredJob) string {
	label := fmt.Sprintf("%s at %s [%s]", sj.Job.Title, sj.Job.Company, sj.Score.ProfileID)
	if sj.Score.TotalScore != nil && sj.Score.Grade != nil {
		label += fmt.Sprintf(" %d %s", *sj.Score.TotalScore, *sj.Score.Grade)
	}
	return label
}
