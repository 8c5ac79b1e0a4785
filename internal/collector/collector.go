// Package collector pulls job alert mail, extracts raw jobs from it and
// feeds them to the ingest pipeline.
package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vijay-prabhu/jobscout/internal/config"
	"github.com/vijay-prabhu/jobscout/internal/database"
	"github.com/vijay-prabhu/jobscout/internal/email"
	"github.com/vijay-prabhu/jobscout/internal/ingest"
	"github.com/vijay-prabhu/jobscout/internal/job"
	"github.com/vijay-prabhu/jobscout/internal/source"
)

// defaultLookbackDays bounds the first sync and full syncs
const defaultLookbackDays = 14

// Store records which messages were handled and when the last sync ran
type Store interface {
	MessageProcessed(ctx context.Context, messageID string) (bool, error)
	MarkMessageProcessed(ctx context.Context, m database.SourceMessage) error
	GetSyncState(ctx context.Context) (*database.SyncState, error)
	UpdateSyncState(ctx context.Context, state *database.SyncState) error
}

// Collector orchestrates the mail sync pipeline
type Collector struct {
	store    Store
	provider email.Provider
	registry *source.Registry
	ingester *ingest.Ingester
	config   config.GmailConfig
	logger   *zap.Logger
	now      func() time.Time
}

// New creates a new Collector
func New(store Store, provider email.Provider, registry *source.Registry, ingester *ingest.Ingester, cfg config.GmailConfig, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		store:    store,
		provider: provider,
		registry: registry,
		ingester: ingester,
		config:   cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// SyncOptions configures the sync behavior
type SyncOptions struct {
	Days     int              // Number of days to fetch (0 = since last sync)
	FullSync bool             // Ignore last sync time
	Progress ProgressCallback // Optional progress callback
}

// SyncResult contains the results of a sync operation
type SyncResult struct {
	MessagesFetched   int            `json:"messages_fetched"`
	MessagesSkipped   int            `json:"messages_skipped"`
	MessagesExtracted int            `json:"messages_extracted"`
	JobsFound         int            `json:"jobs_found"`
	JobsCreated       int            `json:"jobs_created"`
	JobsUpdated       int            `json:"jobs_updated"`
	JobsInvalid       int            `json:"jobs_invalid"`
	JobsFiltered      int            `json:"jobs_filtered"`
	JobsForReview     int            `json:"jobs_for_review"`
	ByProducer        map[string]int `json:"by_producer,omitempty"`
	Errors            []error        `json:"-"`
}

// Sync fetches new emails and processes them with default options
func (c *Collector) Sync(ctx context.Context) (*SyncResult, error) {
	return c.SyncWithOptions(ctx, SyncOptions{})
}

// SyncWithOptions fetches new emails with custom options
func (c *Collector) SyncWithOptions(ctx context.Context, syncOpts SyncOptions) (*SyncResult, error) {
	result := &SyncResult{ByProducer: make(map[string]int)}
	started := c.now()

	report := func(phase ProgressPhase, current, total int, desc string) {
		if syncOpts.Progress != nil {
			syncOpts.Progress(Progress{
				Phase:       phase,
				Current:     current,
				Total:       total,
				Description: desc,
			})
		}
	}

	syncState, err := c.store.GetSyncState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get sync state: %w", err)
	}

	opts := email.FetchOptions{
		MaxResults: c.config.MaxResults,
		Query:      c.config.Query,
	}
	switch {
	case syncOpts.Days > 0:
		after := started.AddDate(0, 0, -syncOpts.Days)
		opts.After = &after
	case syncOpts.FullSync || syncState.LastSyncAt == nil:
		after := started.AddDate(0, 0, -defaultLookbackDays)
		opts.After = &after
	default:
		// Gmail's after: has day granularity, the processed-message table covers the overlap
		opts.After = syncState.LastSyncAt
	}

	report(PhaseFetching, 0, 0, "Fetching job alert mail")
	emails, err := c.provider.FetchEmails(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch emails: %w", err)
	}
	result.MessagesFetched = len(emails)

	c.logger.Info("messages fetched",
		zap.String("provider", c.provider.Name()),
		zap.Int("count", len(emails)),
	)

	// Failed messages stay unprocessed; the next window must still reach them
	var retry retryWindow
	for i := range emails {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		e := &emails[i]
		report(PhaseExtracting, i+1, len(emails), "Extracting jobs")

		if err := c.processMessage(ctx, e, result, report); err != nil {
			result.Errors = append(result.Errors, err)
			retry.add(e.Date)
			c.logger.Warn("message failed",
				zap.String("message_id", e.ID),
				zap.String("subject", e.Subject),
				zap.Error(err),
			)
		}
	}

	syncState.LastSyncAt = retry.next(started, syncState.LastSyncAt)
	syncState.MessagesProcessed += result.MessagesExtracted
	syncState.JobsIngested += result.JobsCreated
	if err := c.store.UpdateSyncState(ctx, syncState); err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("failed to update sync state: %w", err))
	}

	c.logger.Info("sync complete",
		zap.Int("messages", result.MessagesExtracted),
		zap.Int("skipped", result.MessagesSkipped),
		zap.Int("jobs_found", result.JobsFound),
		zap.Int("jobs_created", result.JobsCreated),
		zap.Int("errors", len(result.Errors)),
	)

	return result, nil
}

// processMessage extracts and ingests the jobs in one message. A message is
// only marked processed once every job it holds was stored or rejected as
// invalid, so transient failures are retried on the next sync.
func (c *Collector) processMessage(ctx context.Context, e *email.Email, result *SyncResult, report func(ProgressPhase, int, int, string)) error {
	done, err := c.store.MessageProcessed(ctx, e.ID)
	if err != nil {
		return fmt.Errorf("message %s: %w", e.ID, err)
	}
	if done {
		result.MessagesSkipped++
		return nil
	}

	ex, err := c.registry.Extract(ctx, e)
	if err != nil {
		return fmt.Errorf("message %s: %w", e.ID, err)
	}

	result.MessagesExtracted++
	result.JobsFound += len(ex.Jobs)
	if ex.Producer != "" {
		result.ByProducer[ex.Producer] += len(ex.Jobs)
	}

	var failed error
	if len(ex.Jobs) > 0 {
		items := c.ingester.IngestBatch(ctx, ex.Jobs, func(current, total int) {
			report(PhaseIngesting, current, total, "Scoring jobs")
		})

		summary := ingest.Summarize(items)
		result.JobsCreated += summary.Created
		result.JobsUpdated += summary.Updated
		result.JobsInvalid += summary.Invalid
		result.JobsFiltered += summary.Filtered
		result.JobsForReview += summary.Review

		for _, it := range items {
			if it.Error != nil && !errors.Is(it.Error, job.ErrInvalidJob) {
				failed = errors.Join(failed, it.Error)
			}
		}
	}
	if failed != nil {
		return fmt.Errorf("message %s: %w", e.ID, failed)
	}

	return c.store.MarkMessageProcessed(ctx, database.SourceMessage{
		MessageID:   e.ID,
		Producer:    ex.Producer,
		JobsFound:   len(ex.Jobs),
		ProcessedAt: c.now(),
	})
}

// retryWindow tracks the oldest message that has to be fetched again
type retryWindow struct {
	failed   bool
	undated  bool
	earliest time.Time
}

func (w *retryWindow) add(date time.Time) {
	w.failed = true
	if date.IsZero() {
		w.undated = true
		return
	}
	if w.earliest.IsZero() || date.Before(w.earliest) {
		w.earliest = date
	}
}

// next returns the fetch cursor for the following sync: started when
// nothing failed, otherwise the oldest failed message. A failed message
// without a date keeps the previous cursor.
func (w *retryWindow) next(started time.Time, previous *time.Time) *time.Time {
	switch {
	case !w.failed:
		return &started
	case w.undated:
		return previous
	default:
		earliest := w.earliest
		return &earliest
	}
}
