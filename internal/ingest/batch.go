package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/vijay-prabhu/jobscout/internal/config"
	"github.com/vijay-prabhu/jobscout/internal/database"
	"github.com/vijay-prabhu/jobscout/internal/job"
)

// ProgressCallback is called as batch items complete
type ProgressCallback func(current, total int)

// BatchItem is the outcome for one raw job in a batch
type BatchItem struct {
	Index  int
	Result *Result
	Error  error
}

// BatchSummary counts the outcomes of a batch
type BatchSummary struct {
	Total    int `json:"total"`
	Created  int `json:"created"`
	Updated  int `json:"updated"`
	Invalid  int `json:"invalid"`
	Failed   int `json:"failed"`
	Filtered int `json:"filtered"`
	Review   int `json:"manual_review"`
}

// Summarize counts the outcomes of batch items
func Summarize(items []BatchItem) BatchSummary {
	s := BatchSummary{Total: len(items)}
	for _, it := range items {
		switch {
		case errors.Is(it.Error, job.ErrInvalidJob):
			s.Invalid++
			continue
		case it.Error != nil:
			s.Failed++
			continue
		case it.Result.Created:
			s.Created++
		default:
			s.Updated++
		}
		for _, sc := range it.Result.Scores {
			if sc.Filtered() {
				s.Filtered++
			}
			if sc.ManualReview {
				s.Review++
			}
		}
	}
	return s
}

// IngestBatch ingests raw jobs on a bounded worker pool. Items keep their
// input order; per-item errors do not stop the batch.
func (i *Ingester) IngestBatch(ctx context.Context, raws []job.RawJob, progress ProgressCallback) []BatchItem {
	results := make([]BatchItem, len(raws))
	resultChan := make(chan BatchItem, len(raws))
	var doneCount int64

	var wg sync.WaitGroup
	sem := make(chan struct{}, i.opts.Workers)

	total := len(raws)
	if progress != nil {
		progress(0, total)
	}

	for idx, raw := range raws {
		wg.Add(1)
		go func(index int, r job.RawJob) {
			defer wg.Done()

			// Acquire semaphore
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				resultChan <- BatchItem{Index: index, Error: ctx.Err()}
				return
			}

			res, err := i.Ingest(ctx, r)
			if err != nil {
				i.logger.Warn("ingest failed",
					zap.Int("index", index),
					zap.String("source", r.Source),
					zap.String("title", r.Title),
					zap.Error(err),
				)
			}

			if progress != nil {
				current := int(atomic.AddInt64(&doneCount, 1))
				progress(current, total)
			}

			resultChan <- BatchItem{Index: index, Result: res, Error: err}
		}(idx, raw)
	}

	// Close channel when all done
	go func() {
		wg.Wait()
		close(resultChan)
	}()

	// Collect results
	for r := range resultChan {
		results[r.Index] = r
	}

	return results
}

// Rescore recomputes every stored job for the given profiles, overwriting
// their score rows in place. An empty profileIDs rescores every profile.
func (i *Ingester) Rescore(ctx context.Context, profileIDs []string, progress ProgressCallback) (int, error) {
	profiles, err := i.selectProfiles(profileIDs)
	if err != nil {
		return 0, err
	}

	jobs, err := i.store.ListJobs(ctx, database.JobListOptions{})
	if err != nil {
		return 0, fmt.Errorf("failed to list jobs: %w", err)
	}

	sub := *i
	sub.profiles = profiles

	total := len(jobs)
	if progress != nil {
		progress(0, total)
	}

	for n, j := range jobs {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if _, err := sub.scoreJob(ctx, j); err != nil {
			return n, err
		}
		if progress != nil {
			progress(n+1, total)
		}
	}

	i.logger.Info("rescore complete",
		zap.Int("jobs", total),
		zap.Int("profiles", len(profiles)),
	)
	return total, nil
}

func (i *Ingester) selectProfiles(ids []string) ([]config.Profile, error) {
	if len(ids) == 0 {
		return i.profiles, nil
	}

	byID := make(map[string]config.Profile, len(i.profiles))
	for _, p := range i.profiles {
		byID[p.ID] = p
	}

	selected := make([]config.Profile, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("unknown or disabled profile %q", id)
		}
		selected = append(selected, p)
	}
	return selected, nil
}
