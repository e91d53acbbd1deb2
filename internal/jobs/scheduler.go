// Package jobs runs the marketplace's recurring background work: the
// sales-quote expiry sweep and the ERP payment reconciliation.
package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler wraps a cron runner with per-job bookkeeping. A job that is
// still running when its next tick arrives is skipped, and panics are
// recovered so one bad sweep cannot take the scheduler down.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger

	mu   sync.Mutex
	jobs map[string]cron.EntryID
}

func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds(), cron.WithChain(
			cron.SkipIfStillRunning(cron.DefaultLogger),
			cron.Recover(cron.DefaultLogger),
		)),
		logger: logger,
		jobs:   make(map[string]cron.EntryID),
	}
}

// Start begins executing registered jobs on their schedules
func (s *Scheduler) Start() {
	s.logger.Info("job scheduler started")
	s.cron.Start()
}

// Stop halts scheduling. The returned context is done once in-flight
// jobs have finished.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("job scheduler stopping")
	return s.cron.Stop()
}

// AddJob registers a named job. The cron expression carries a leading
// seconds field, e.g. "0 */30 * * * *" for every half hour; "@hourly"
// and "@every" specs also work. Names must be unique.
func (s *Scheduler) AddJob(name string, cronExpr string, job func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %q already registered", name)
	}

	entryID, err := s.cron.AddFunc(cronExpr, func() {
		start := time.Now()
		s.logger.Info("job started", zap.String("job", name))
		job()
		s.logger.Info("job finished",
			zap.String("job", name),
			zap.Duration("duration", time.Since(start)),
		)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %q: %w", name, err)
	}

	s.jobs[name] = entryID
	s.logger.Info("job scheduled",
		zap.String("job", name),
		zap.String("schedule", cronExpr),
	)
	return nil
}

// GetJobNames returns the registered job names, sorted
func (s *Scheduler) GetJobNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
