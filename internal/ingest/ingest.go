// Package ingest deduplicates raw jobs and scores them against every
// enabled profile.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vijay-prabhu/jobscout/internal/company"
	"github.com/vijay-prabhu/jobscout/internal/config"
	"github.com/vijay-prabhu/jobscout/internal/database"
	"github.com/vijay-prabhu/jobscout/internal/filter"
	"github.com/vijay-prabhu/jobscout/internal/job"
	"github.com/vijay-prabhu/jobscout/internal/scoring"
)

// Store is the persistence the orchestrator needs
type Store interface {
	UpsertJob(ctx context.Context, j job.Job, prov job.Provenance) (bool, error)
	GetJob(ctx context.Context, hash string) (*job.Job, error)
	ListJobs(ctx context.Context, opts database.JobListOptions) ([]job.Job, error)
	UpsertScore(ctx context.Context, s *database.Score) error
}

// Options tunes the worker pool and persistence retries
type Options struct {
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
}

// OptionsFromConfig builds Options from the ingest config section
func OptionsFromConfig(cfg config.IngestConfig) Options {
	return Options{
		Workers:      cfg.Workers,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff(),
	}
}

// ScoreResult is the per-profile outcome handed to digest and review consumers
type ScoreResult struct {
	JobIdentityHash string                  `json:"job_identity_hash"`
	ProfileID       string                  `json:"profile_id"`
	TotalScore      *int                    `json:"total_score"`
	Grade           *scoring.Grade          `json:"grade"`
	Breakdown       scoring.Breakdown       `json:"breakdown"`
	FilterReason    *string                 `json:"filter_reason"`
	ManualReview    bool                    `json:"manual_review"`
	ReviewDecision  *string                 `json:"review_decision,omitempty"`
	FilterStage     filter.Stage            `json:"filter_stage,omitempty"`
	CompanyClass    company.Kind            `json:"company_class,omitempty"`
	Seniority       string                  `json:"seniority,omitempty"`
	Details         []scoring.CategoryScore `json:"details,omitempty"`
}

// Filtered reports whether a filter blocked the job for this profile
func (r ScoreResult) Filtered() bool {
	return r.FilterReason != nil
}

// Result is the outcome of ingesting one raw job
type Result struct {
	Job     job.Job       `json:"job"`
	Created bool          `json:"created"`
	Scores  []ScoreResult `json:"scores"`
}

// Ingester runs the dedup, filter and scoring pipeline
type Ingester struct {
	store      Store
	filter     *filter.Filter
	classifier *company.Classifier
	profiles   []config.Profile
	logger     *zap.Logger
	opts       Options
	now        func() time.Time
}

// New creates an Ingester for the given enabled profiles
func New(store Store, f *filter.Filter, classifier *company.Classifier, profiles []config.Profile, logger *zap.Logger, opts Options) *Ingester {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Ingester{
		store:      store,
		filter:     f,
		classifier: classifier,
		profiles:   profiles,
		logger:     logger,
		opts:       opts,
		now:        time.Now,
	}
}

// Profiles returns the profiles this ingester scores against
func (i *Ingester) Profiles() []config.Profile {
	return i.profiles
}

// Evaluate runs Stage A, the scorer and Stage B for one profile. It is a
// pure function of its arguments.
func Evaluate(f *filter.Filter, j job.Job, p config.Profile, class company.Classification) ScoreResult {
	res := ScoreResult{
		JobIdentityHash: j.IdentityHash,
		ProfileID:       p.ID,
		CompanyClass:    class.Kind,
	}

	pre := f.PreScore(j.Title, p)
	if !pre.Proceed() {
		reason := pre.Reason
		res.FilterReason = &reason
		res.FilterStage = filter.StagePre
		return res
	}
	res.ManualReview = pre.ManualReview()

	score := scoring.Score(j, p, class)
	total := score.Total
	grade := score.Grade
	res.TotalScore = &total
	res.Grade = &grade
	res.Breakdown = score.Breakdown
	res.Details = score.Details
	res.Seniority = score.Seniority.String()

	post := f.PostScore(j, p, class, score)
	if !post.Proceed() {
		reason := post.Reason
		res.FilterReason = &reason
		res.FilterStage = filter.StagePost
		res.ManualReview = false
	}

	return res
}

// Ingest validates, deduplicates and scores one raw job. Invalid jobs
// return a *job.InvalidJobError and touch nothing.
func (i *Ingester) Ingest(ctx context.Context, raw job.RawJob) (*Result, error) {
	if err := raw.Validate(); err != nil {
		return nil, err
	}

	now := i.now()
	j := raw.ToJob(now)
	prov := job.Provenance{Source: j.Source, ExtractionMethod: raw.ExtractionMethod, SeenAt: now}

	var created bool
	if err := i.withRetry(ctx, "upsert job", func() error {
		var err error
		created, err = i.store.UpsertJob(ctx, j, prov)
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to store job %s: %w", job.ShortHash(j.IdentityHash), err)
	}

	// Score the merged row so earlier sightings' descriptions still count
	if !created {
		stored, err := i.store.GetJob(ctx, j.IdentityHash)
		if err != nil {
			return nil, fmt.Errorf("failed to load job %s: %w", job.ShortHash(j.IdentityHash), err)
		}
		if stored != nil {
			j = *stored
		}
	}

	scores, err := i.scoreJob(ctx, j)
	if err != nil {
		return nil, err
	}

	i.logger.Debug("job ingested",
		zap.String("identity_hash", j.IdentityHash),
		zap.String("source", j.Source),
		zap.Bool("created", created),
		zap.Int("profiles", len(scores)),
	)

	return &Result{Job: j, Created: created, Scores: scores}, nil
}

// scoreJob evaluates and persists a job for every profile
func (i *Ingester) scoreJob(ctx context.Context, j job.Job) ([]ScoreResult, error) {
	class := i.classifier.Classify(ctx, j.Company, j.Title, j.RawDescription)

	results := make([]ScoreResult, 0, len(i.profiles))
	for _, p := range i.profiles {
		res := Evaluate(i.filter, j, p, class)

		row, err := toScoreRow(res, i.now())
		if err != nil {
			return nil, err
		}
		if err := i.withRetry(ctx, "upsert score", func() error {
			return i.store.UpsertScore(ctx, row)
		}); err != nil {
			return nil, fmt.Errorf("failed to store score %s/%s: %w", job.ShortHash(j.IdentityHash), p.ID, err)
		}

		// A recorded review decision overrides the fresh outcome
		res.FilterReason = row.FilterReason
		res.ManualReview = row.ManualReview
		res.ReviewDecision = row.ReviewDecision

		fields := []zap.Field{
			zap.String("identity_hash", j.IdentityHash),
			zap.String("profile_id", p.ID),
		}
		if res.Grade != nil {
			fields = append(fields, zap.String("grade", string(*res.Grade)), zap.Int("score", *res.TotalScore))
		}
		if res.FilterReason != nil {
			fields = append(fields, zap.String("filter_reason", *res.FilterReason))
		}
		if res.ManualReview {
			fields = append(fields, zap.Bool("manual_review", true))
		}
		i.logger.Debug("job scored", fields...)

		results = append(results, res)
	}

	return results, nil
}

// toScoreRow converts a ScoreResult into its persisted form
func toScoreRow(res ScoreResult, computedAt time.Time) (*database.Score, error) {
	row := &database.Score{
		JobIdentityHash: res.JobIdentityHash,
		ProfileID:       res.ProfileID,
		TotalScore:      res.TotalScore,
		FilterReason:    res.FilterReason,
		ManualReview:    res.ManualReview,
		ComputedAt:      computedAt,
	}

	if res.Grade != nil {
		g := string(*res.Grade)
		row.Grade = &g
	}
	if len(res.Breakdown) > 0 {
		row.Breakdown = make(map[string]int, len(res.Breakdown))
		for cat, pts := range res.Breakdown {
			row.Breakdown[string(cat)] = pts
		}
	}
	if len(res.Details) > 0 {
		data, err := json.Marshal(res.Details)
		if err != nil {
			return nil, fmt.Errorf("encode rationale: %w", err)
		}
		s := string(data)
		row.Rationale = &s
	}
	if res.FilterStage != "" {
		s := string(res.FilterStage)
		row.FilterStage = &s
	}
	if res.CompanyClass != "" {
		s := string(res.CompanyClass)
		row.CompanyClass = &s
	}
	if res.Seniority != "" {
		s := res.Seniority
		row.Seniority = &s
	}

	return row, nil
}

// withRetry retries fn while the store reports a transient lock error
func (i *Ingester) withRetry(ctx context.Context, op string, fn func() error) error {
	backoff := i.opts.RetryBackoff
	var err error

	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || !database.IsBusy(err) || attempt >= i.opts.MaxRetries {
			return err
		}

		i.logger.Warn("store busy, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}
