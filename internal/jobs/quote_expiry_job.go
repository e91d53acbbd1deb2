package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// QuoteExpiryJobName is the name of the sales quote expiry sweep
const QuoteExpiryJobName = "quote_expiry"

// QuoteExpiryService defines the sweep the job invokes. The interface
// lets the job avoid importing the service package directly.
type QuoteExpiryService interface {
	// ExpireQuotes flags sales quotes past their validity date and
	// notifies the affected customers. Returns the number expired.
	ExpireQuotes(ctx context.Context) (int, error)
}

// QuoteExpiryJob sweeps sales quotes whose validity date has passed.
type QuoteExpiryJob struct {
	service QuoteExpiryService
	logger  *zap.Logger
	timeout time.Duration
}

// NewQuoteExpiryJob creates the expiry sweep job. The timeout bounds a
// single sweep.
func NewQuoteExpiryJob(service QuoteExpiryService, logger *zap.Logger, timeout time.Duration) *QuoteExpiryJob {
	return &QuoteExpiryJob{
		service: service,
		logger:  logger,
		timeout: timeout,
	}
}

// Run executes one sweep. Called by the scheduler.
func (j *QuoteExpiryJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()

	expired, err := j.service.ExpireQuotes(ctx)
	if err != nil {
		j.logger.Error("quote expiry sweep failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	if expired > 0 {
		j.logger.Info("quote expiry sweep completed",
			zap.Int("expired", expired),
			zap.Duration("duration", time.Since(start)))
	}
}

// RegisterQuoteExpiryJob registers the sweep with the scheduler. If
// runAtStartup is true an initial sweep runs in the background so
// quotes that lapsed while the API was down are flagged immediately.
func RegisterQuoteExpiryJob(scheduler *Scheduler, service QuoteExpiryService, logger *zap.Logger, cronExpr string, timeout time.Duration, runAtStartup bool) error {
	job := NewQuoteExpiryJob(service, logger, timeout)

	if runAtStartup {
		go job.Run()
	}

	return scheduler.AddJob(QuoteExpiryJobName, cronExpr, job.Run)
}
