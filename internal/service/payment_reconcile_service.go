package service

import (
	"context"
	"fmt"

	"github.com/partbridge/marketplace-api/internal/domain"
	"github.com/partbridge/marketplace-api/internal/erp"
	"github.com/partbridge/marketplace-api/internal/repository"
	"go.uber.org/zap"
)

// InvoiceSource is the slice of the ERP client the reconcile pass
// needs: a reachability check and the settled-invoice lookup.
type InvoiceSource interface {
	IsEnabled() bool
	PaidInvoicesForOrders(ctx context.Context, orderNumbers []string) ([]erp.PaidInvoice, error)
}

// PaymentReconcileService matches unpaid orders against settled
// invoices in the accounting ERP and marks them paid.
type PaymentReconcileService struct {
	orderRepo        *repository.OrderRepository
	invoices         InvoiceSource
	activityRepo     *repository.ActivityRepository
	notificationRepo *repository.NotificationRepository
	logger           *zap.Logger
}

func NewPaymentReconcileService(
	orderRepo *repository.OrderRepository,
	invoices InvoiceSource,
	activityRepo *repository.ActivityRepository,
	notificationRepo *repository.NotificationRepository,
	logger *zap.Logger,
) *PaymentReconcileService {
	return &PaymentReconcileService{
		orderRepo:        orderRepo,
		invoices:         invoices,
		activityRepo:     activityRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// Reconcile pulls settled invoices for every unpaid order that has an
// invoice on file and marks the matched ones paid. Returns the number
// of orders checked and reconciled.
func (s *PaymentReconcileService) Reconcile(ctx context.Context) (checked int, reconciled int, err error) {
	if !s.invoices.IsEnabled() {
		return 0, 0, nil
	}

	orders, err := s.orderRepo.ListUnpaidWithInvoice(ctx)
	if err != nil {
		return 0, 0, err
	}
	if len(orders) == 0 {
		return 0, 0, nil
	}

	numbers := make([]string, len(orders))
	byNumber := make(map[string]*domain.Order, len(orders))
	for i := range orders {
		numbers[i] = orders[i].OrderNumber
		byNumber[orders[i].OrderNumber] = &orders[i]
	}

	invoices, err := s.invoices.PaidInvoicesForOrders(ctx, numbers)
	if err != nil {
		return len(orders), 0, err
	}

	for _, invoice := range invoices {
		order, ok := byNumber[invoice.OrderNumber]
		if !ok {
			continue
		}

		decision := domain.CanTransitionOrderPayment(domain.RoleAdmin, order.PaymentStatus, domain.PaymentStatusPaid, order.InvoiceFileID != nil)
		if !decision.Allowed {
			s.logger.Warn("reconcile skipped order",
				zap.String("order_number", order.OrderNumber),
				zap.String("reason", string(decision.Reason)),
			)
			continue
		}

		order.PaymentStatus = domain.PaymentStatusPaid
		// Settled orders move to the archived view
		order.IsArchived = true
		if err := s.orderRepo.Update(ctx, order); err != nil {
			s.logger.Error("failed to mark order paid",
				zap.Error(err),
				zap.String("order_number", order.OrderNumber),
			)
			continue
		}
		reconciled++

		s.recordReconciliation(ctx, order, invoice)
	}

	if reconciled > 0 {
		s.logger.Info("payment reconciliation completed",
			zap.Int("checked", len(orders)),
			zap.Int("reconciled", reconciled),
		)
	}
	return len(orders), reconciled, nil
}

func (s *PaymentReconcileService) recordReconciliation(ctx context.Context, order *domain.Order, invoice erp.PaidInvoice) {
	activity := &domain.Activity{
		TargetType: "order",
		TargetID:   order.ID,
		Title:      "Payment reconciled",
		Body:       fmt.Sprintf("Invoice %s settled in the ERP on %s", invoice.InvoiceNumber, invoice.PaidAt.Format("2006-01-02")),
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to record activity", zap.Error(err))
	}

	entityID := order.ID
	notification := &domain.Notification{
		UserID:     order.CustomerID,
		Type:       domain.NotificationOrderPaid,
		Title:      "Payment confirmed",
		Message:    fmt.Sprintf("Payment for order %s has been received", order.OrderNumber),
		EntityType: "order",
		EntityID:   &entityID,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Warn("failed to create notification", zap.Error(err))
	}
}
