package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// PaymentReconcileJobName is the name of the ERP payment reconcile job
const PaymentReconcileJobName = "payment_reconcile"

// PaymentReconcileService defines the reconcile pass the job invokes.
type PaymentReconcileService interface {
	// Reconcile matches unpaid orders against settled ERP invoices.
	// Returns the number of orders checked and reconciled.
	Reconcile(ctx context.Context) (checked int, reconciled int, err error)
}

// PaymentReconcileJob pulls settled invoices from the accounting ERP
// and marks the matching orders paid.
type PaymentReconcileJob struct {
	service PaymentReconcileService
	logger  *zap.Logger
	timeout time.Duration
}

// NewPaymentReconcileJob creates the reconcile job. The timeout bounds
// a single pass including the ERP query.
func NewPaymentReconcileJob(service PaymentReconcileService, logger *zap.Logger, timeout time.Duration) *PaymentReconcileJob {
	return &PaymentReconcileJob{
		service: service,
		logger:  logger,
		timeout: timeout,
	}
}

// Run executes one reconcile pass. Called by the scheduler.
func (j *PaymentReconcileJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()

	checked, reconciled, err := j.service.Reconcile(ctx)
	if err != nil {
		j.logger.Error("payment reconcile failed",
			zap.Error(err),
			zap.Int("checked", checked),
			zap.Duration("duration", time.Since(start)))
		return
	}

	if checked > 0 {
		j.logger.Info("payment reconcile completed",
			zap.Int("checked", checked),
			zap.Int("reconciled", reconciled),
			zap.Duration("duration", time.Since(start)))
	}
}

// RegisterPaymentReconcileJob registers the reconcile pass with the
// scheduler.
func RegisterPaymentReconcileJob(scheduler *Scheduler, service PaymentReconcileService, logger *zap.Logger, cronExpr string, timeout time.Duration) error {
	job := NewPaymentReconcileJob(service, logger, timeout)
	return scheduler.AddJob(PaymentReconcileJobName, cronExpr, job.Run)
}
