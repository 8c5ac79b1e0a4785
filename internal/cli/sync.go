package cli

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/jobscout/internal/collector"
	"github.com/vijay-prabhu/jobscout/internal/email/gmail"
	"github.com/vijay-prabhu/jobscout/internal/output"
)

var (
	syncDays int
	syncFull bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch job alert emails from Gmail and score the jobs they contain",
	Long: `Sync fetches job alert emails from your Gmail account, extracts the
postings with the LinkedIn and ATS parsers (falling back to Gemini when
enabled), and ingests them into the local database.

On first run, it will open a browser for Google authentication.

Examples:
  jobscout sync              # Incremental sync (since last sync, or 14 days)
  jobscout sync --days=30    # Fetch last 30 days
  jobscout sync --full       # Ignore last sync time`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().IntVar(&syncDays, "days", 0, "Number of days to fetch (default: since last sync, or 14)")
	syncCmd.Flags().BoolVar(&syncFull, "full", false, "Ignore last sync time and fetch from scratch")
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if outputFmt != "json" {
		fmt.Println("Authenticating with Gmail...")
	}
	result, err := syncOnce(ctx, a, collector.SyncOptions{
		Days:     syncDays,
		FullSync: syncFull,
	}, outputFmt != "json")
	if err != nil {
		return err
	}

	if outputFmt != "json" {
		fmt.Println()
		fmt.Println("Sync complete:")
	}
	return output.Output(outputFmt, result)
}

// syncOnce runs one Gmail sync cycle with the app's config
func syncOnce(ctx context.Context, a *app, opts collector.SyncOptions, showProgress bool) (*collector.SyncResult, error) {
	provider := gmail.New(a.cfg.Gmail.CredentialsPath, a.cfg.Gmail.TokenPath, a.logger)
	if err := provider.Authenticate(ctx); err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	registry, err := a.newRegistry(ctx)
	if err != nil {
		return nil, err
	}

	ingester, err := a.newIngester(ctx)
	if err != nil {
		return nil, err
	}

	c := collector.New(a.db, provider, registry, ingester, a.cfg.Gmail, a.logger)

	terminal := NewTerminal()
	if showProgress {
		opts.Progress = syncProgress(terminal)
	}

	result, err := c.SyncWithOptions(ctx, opts)

	// Clear progress line
	if showProgress {
		terminal.ClearLine()
	}

	if err != nil {
		return nil, fmt.Errorf("sync failed: %w", err)
	}
	return result, nil
}

// syncProgress renders collector progress on one line in a terminal and
// as occasional log lines elsewhere
func syncProgress(terminal *Terminal) collector.ProgressCallback {
	var mu sync.Mutex
	var lastPhase collector.ProgressPhase
	started := make(map[collector.ProgressPhase]time.Time)

	// Scoring progress arrives from the ingest worker pool
	return func(p collector.Progress) {
		mu.Lock()
		defer mu.Unlock()

		// Extracting and scoring interleave per message, so each phase keeps
		// the time it was first seen for its ETA
		if _, ok := started[p.Phase]; !ok {
			started[p.Phase] = time.Now()
		}
		p.StartedAt = started[p.Phase]

		terminal.ClearLine()

		var msg, eta string
		switch p.Phase {
		case collector.PhaseFetching:
			msg = fmt.Sprintf("%s Fetching job alert emails...", terminal.Spinner())
		case collector.PhaseExtracting:
			if etaDur := p.ETA(); etaDur > 0 {
				eta = fmt.Sprintf(" (ETA: %s)", FormatETA(etaDur))
			}
			msg = fmt.Sprintf("Extracting: %d/%d emails (%d%%)%s", p.Current, p.Total, p.Percentage(), eta)
		case collector.PhaseIngesting:
			msg = fmt.Sprintf("%s Scoring: %d/%d jobs", terminal.Spinner(), p.Current, p.Total)
		}

		msg = terminal.Color(PhaseColor(p.Phase), msg)

		if terminal.IsTerminal {
			fmt.Print(msg)
			terminal.Flush()
		} else {
			// For non-terminals, print the fetch once and every 10 emails
			shouldPrint := p.Phase == collector.PhaseFetching && p.Phase != lastPhase
			if p.Phase == collector.PhaseExtracting {
				shouldPrint = p.Current%10 == 0 || p.Current == p.Total
			}
			if shouldPrint {
				fmt.Println(msg)
			}
		}
		lastPhase = p.Phase
	}
}
