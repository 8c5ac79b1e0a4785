// Package scheduler runs the sync cycle on a fixed interval for the watch
// command.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Cycle is one scheduled run. It is expected to load its own configuration
// so edits take effect on the next tick.
type Cycle func(ctx context.Context) error

// Scheduler wraps robfig/cron and manages the sync loop
type Scheduler struct {
	cron   *cron.Cron
	cycle  Cycle
	spec   string // cron spec, e.g. "@every 6h"
	logger *zap.Logger

	mu      sync.Mutex
	runs    int
	entryID cron.EntryID
}

// New creates a Scheduler that fires every interval
func New(interval time.Duration, cycle Cycle, logger *zap.Logger) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("scheduler interval must be positive, got %s", interval)
	}
	if cycle == nil {
		return nil, fmt.Errorf("scheduler cycle is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cl := cronLogger{logger.Sugar()}
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl))),
		cycle:  cycle,
		spec:   fmt.Sprintf("@every %s", interval),
		logger: logger,
	}, nil
}

// Spec returns the cron spec the scheduler registers
func (s *Scheduler) Spec() string {
	return s.spec
}

// Runs returns how many cycles have completed
func (s *Scheduler) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

// Start registers the cycle and starts the scheduler. One cycle also runs
// immediately so results are available without waiting for the first tick.
// A tick that fires while a cycle is still running is skipped.
func (s *Scheduler) Start(ctx context.Context) error {
	job := cron.NewChain(cron.SkipIfStillRunning(cronLogger{s.logger.Sugar()})).
		Then(cron.FuncJob(func() { s.run(ctx) }))

	id, err := s.cron.AddJob(s.spec, job)
	if err != nil {
		return fmt.Errorf("cron.AddJob: %w", err)
	}
	s.entryID = id

	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("spec", s.spec))

	go job.Run()

	return nil
}

// Next returns when the next tick fires, zero before Start
func (s *Scheduler) Next() time.Time {
	if s.entryID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// Stop shuts the scheduler down and waits for a running cycle to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped", zap.Int("runs", s.Runs()))
}

// Run starts the scheduler and blocks until ctx is cancelled
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

func (s *Scheduler) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	s.logger.Info("sync cycle started")

	err := s.cycle(ctx)

	s.mu.Lock()
	s.runs++
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("sync cycle failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return
	}
	s.logger.Info("sync cycle complete",
		zap.Duration("elapsed", time.Since(start)),
		zap.Time("next", s.Next()),
	)
}

// cronLogger routes robfig/cron's logging through zap
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
