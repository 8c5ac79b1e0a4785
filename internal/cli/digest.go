package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/jobscout/internal/database"
	"github.com/vijay-prabhu/jobscout/internal/output"
	"github.com/vijay-prabhu/jobscout/internal/scoring"
)

var (
	digestProfile  string
	digestSince    string
	digestLimit    int
	digestMinGrade string
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "List the best unfiltered jobs for a profile",
	Long: `Digest lists jobs that passed every filter for a profile and meet its
digest thresholds, best score first. Jobs waiting for manual review are left
out until approved.

Examples:
  jobscout digest                          # Single enabled profile
  jobscout digest --profile=robotics --since=7d
  jobscout digest --min-grade=A -o json`,
	RunE: runDigest,
}

func init() {
	rootCmd.AddCommand(digestCmd)
	digestCmd.Flags().StringVarP(&digestProfile, "profile", "p", "", "Profile ID (required when several are enabled)")
	digestCmd.Flags().StringVar(&digestSince, "since", "", "Only jobs first seen within this period (e.g., 7d, 2w, 1m)")
	digestCmd.Flags().IntVar(&digestLimit, "limit", 0, "Maximum number of results")
	digestCmd.Flags().StringVar(&digestMinGrade, "min-grade", "", "Override the profile's minimum grade")
}

func runDigest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	profile, err := a.resolveProfile(digestProfile)
	if err != nil {
		return err
	}

	opts := database.DigestOptions{
		ProfileID: profile.ID,
		MinScore:  profile.Digest.MinScore,
		Limit:     digestLimit,
	}

	grades, err := digestGrades(profile.Digest.Grades, profile.Digest.MinGrade, digestMinGrade)
	if err != nil {
		return err
	}
	opts.Grades = grades

	if digestSince != "" {
		since, err := parseDuration(digestSince)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		sinceTime := time.Now().Add(-since)
		opts.Since = &sinceTime
	}

	jobs, err := a.db.DigestCandidates(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to build digest: %w", err)
	}

	if outputFmt != "json" {
		fmt.Printf("Digest for %s (%d jobs)\n\n", profile.ID, len(jobs))
	}
	return output.Output(outputFmt, jobs)
}

// digestGrades resolves the grade letters a digest includes. An override
// minimum wins over the profile's explicit list and its minimum grade.
func digestGrades(explicit []string, minGrade, override string) ([]string, error) {
	floor := minGrade
	if override != "" {
		floor = override
	} else if len(explicit) > 0 {
		return explicit, nil
	}

	if floor == "" {
		return nil, nil
	}

	g, err := scoring.ParseGrade(floor)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, gr := range scoring.GradesAtLeast(g) {
		out = append(out, string(gr))
	}
	return out, nil
}

// parseDuration parses a human-readable duration like "7d", "2w", "1m"
func parseDuration(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid duration format")
	}

	unit := s[len(s)-1]
	valueStr := s[:len(s)-1]

	var value int
	if _, err := fmt.Sscanf(valueStr, "%d", &value); err != nil {
		return 0, fmt.Errorf("invalid duration value")
	}

	switch unit {
	case 'd':
		return time.Duration(value) * 24 * time.Hour, nil
	case 'w':
		return time.Duration(value) * 7 * 24 * time.Hour, nil
	case 'm':
		return time.Duration(value) * 30 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unknown duration unit: %c (use d, w, or m)", unit)
	}
}
