package service

import (
	"context"
	"testing"
	"time"

	"github.com/partbridge/marketplace-api/internal/auth"
	"github.com/partbridge/marketplace-api/internal/domain"
	"github.com/partbridge/marketplace-api/internal/erp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubInvoiceSource stands in for the ERP during reconciliation tests
type stubInvoiceSource struct {
	enabled   bool
	invoices  []erp.PaidInvoice
	requested []string
}

func (s *stubInvoiceSource) IsEnabled() bool { return s.enabled }

func (s *stubInvoiceSource) PaidInvoicesForOrders(_ context.Context, orderNumbers []string) ([]erp.PaidInvoice, error) {
	s.requested = orderNumbers
	return s.invoices, nil
}

func (env *testEnv) seedInvoicedOrder(t *testing.T, customer *auth.UserContext) *domain.Order {
	t.Helper()
	order := env.seedOrder(t, customer, domain.StageManufacturing, 100)
	invoice := &domain.File{Filename: "invoice.pdf", StoragePath: "invoices/" + order.OrderNumber + ".pdf"}
	require.NoError(t, env.db.Create(invoice).Error)
	order.InvoiceFileID = &invoice.ID
	require.NoError(t, env.orderRepo.Update(context.Background(), order))
	return order
}

func TestReconcileMarksSettledOrdersPaidAndArchived(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := customerUser()
	settled := env.seedInvoicedOrder(t, customer)
	outstanding := env.seedInvoicedOrder(t, customer)

	source := &stubInvoiceSource{
		enabled: true,
		invoices: []erp.PaidInvoice{{
			InvoiceNumber: "INV-9001",
			OrderNumber:   settled.OrderNumber,
			Amount:        settled.Amount,
			Currency:      "USD",
			PaidAt:        time.Now().UTC(),
		}},
	}
	svc := NewPaymentReconcileService(env.orderRepo, source, env.activityRepo, env.notificationRepo, zap.NewNop())

	checked, reconciled, err := svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, checked)
	assert.Equal(t, 1, reconciled)
	assert.ElementsMatch(t, []string{settled.OrderNumber, outstanding.OrderNumber}, source.requested)

	paid, err := env.orderRepo.GetByID(ctx, settled.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, paid.PaymentStatus)
	assert.True(t, paid.IsArchived)

	untouched, err := env.orderRepo.GetByID(ctx, outstanding.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusUnpaid, untouched.PaymentStatus)
	assert.False(t, untouched.IsArchived)

	var notifications []domain.Notification
	require.NoError(t, env.db.Where("user_id = ? AND type = ?", customer.UserID, domain.NotificationOrderPaid).Find(&notifications).Error)
	assert.Len(t, notifications, 1)

	var activities int64
	require.NoError(t, env.db.Model(&domain.Activity{}).Where("target_id = ?", settled.ID).Count(&activities).Error)
	assert.EqualValues(t, 1, activities)
}

func TestReconcileSecondRunFindsNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order := env.seedInvoicedOrder(t, customerUser())

	source := &stubInvoiceSource{
		enabled:  true,
		invoices: []erp.PaidInvoice{{InvoiceNumber: "INV-9002", OrderNumber: order.OrderNumber, PaidAt: time.Now().UTC()}},
	}
	svc := NewPaymentReconcileService(env.orderRepo, source, env.activityRepo, env.notificationRepo, zap.NewNop())

	_, reconciled, err := svc.Reconcile(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, reconciled)

	// Archived on the first pass, so the sweep no longer sees it
	checked, reconciled, err := svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, checked)
	assert.Equal(t, 0, reconciled)
}

func TestReconcileDisabledSource(t *testing.T) {
	env := newTestEnv(t)
	env.seedInvoicedOrder(t, customerUser())

	svc := NewPaymentReconcileService(env.orderRepo, &stubInvoiceSource{}, env.activityRepo, env.notificationRepo, zap.NewNop())

	checked, reconciled, err := svc.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, checked)
	assert.Equal(t, 0, reconciled)
}
