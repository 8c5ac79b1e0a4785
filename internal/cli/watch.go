package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vijay-prabhu/jobscout/internal/collector"
	"github.com/vijay-prabhu/jobscout/internal/scheduler"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Sync on a schedule until interrupted",
	Long: `Watch runs a Gmail sync immediately and then every interval
(scheduler.interval_hours in the config unless --interval is set). The
config and profiles are reloaded before every cycle.

Examples:
  jobscout watch
  jobscout watch --interval=30m`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Time between syncs (default: scheduler.interval_hours)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The first load validates the config and sets up logging for the
	// scheduler itself; each cycle loads its own copy.
	a, err := openApp()
	if err != nil {
		return err
	}
	log := a.logger
	a.Close()

	interval := watchInterval
	if interval == 0 {
		interval = time.Duration(a.cfg.Scheduler.IntervalHours) * time.Hour
	}

	s, err := scheduler.New(interval, syncCycle, log)
	if err != nil {
		return err
	}

	fmt.Printf("Watching for new jobs every %s (Ctrl-C to stop)\n", interval)
	return s.Run(ctx)
}

// syncCycle runs one incremental sync with a freshly loaded config
func syncCycle(ctx context.Context) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := syncOnce(ctx, a, collector.SyncOptions{}, false)
	if err != nil {
		return err
	}

	a.logger.Info("sync cycle results",
		zap.Int("messages", result.MessagesExtracted),
		zap.Int("jobs_created", result.JobsCreated),
		zap.Int("jobs_updated", result.JobsUpdated),
		zap.Int("for_review", result.JobsForReview),
		zap.Int("errors", len(result.Errors)),
	)
	return nil
}
