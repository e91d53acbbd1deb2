package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/partbridge/marketplace-api/internal/auth"
	"github.com/partbridge/marketplace-api/internal/domain"
	"github.com/partbridge/marketplace-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrderService tracks orders through the manufacturing stages, records
// shipments and settles payment.
type OrderService struct {
	orderRepo        *repository.OrderRepository
	activityRepo     *repository.ActivityRepository
	notificationRepo *repository.NotificationRepository
	logger           *zap.Logger
}

func NewOrderService(
	orderRepo *repository.OrderRepository,
	activityRepo *repository.ActivityRepository,
	notificationRepo *repository.NotificationRepository,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:        orderRepo,
		activityRepo:     activityRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// Get loads an order. Orders are between the marketplace and the buying
// customer; only admins and the owning customer may read them.
func (s *OrderService) Get(ctx context.Context, user *auth.UserContext, id uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !user.IsAdmin() && order.CustomerID != user.UserID {
		return nil, ErrPermissionDenied
	}
	return order, nil
}

// List returns orders scoped to the caller
func (s *OrderService) List(ctx context.Context, user *auth.UserContext, page, pageSize int, filters repository.OrderFilters, sort repository.SortConfig) ([]domain.Order, int64, error) {
	if scope := user.OwnerScope(); scope != nil {
		filters.CustomerID = scope
	}
	return s.orderRepo.List(ctx, page, pageSize, filters, sort)
}

// AdvanceStage moves an order exactly one stage forward
func (s *OrderService) AdvanceStage(ctx context.Context, user *auth.UserContext, id uuid.UUID, target domain.OrderStage) (*domain.Order, error) {
	order, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}

	decision := domain.CanAdvanceOrderStage(user.Role, order.Stage, target)
	if !decision.Allowed {
		return nil, NewTransitionError("order", string(order.Stage), string(target), decision.Reason)
	}

	order.Stage = target
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, order, user, "Stage advanced", fmt.Sprintf("Order moved to %s", target.DisplayName()))
	s.notifyCustomer(ctx, order, domain.NotificationOrderStage,
		"Order progress",
		fmt.Sprintf("Order %s is now in %s", order.OrderNumber, target.DisplayName()))

	s.logger.Info("order stage advanced",
		zap.String("order_id", order.ID.String()),
		zap.String("stage", string(target)),
	)
	return order, nil
}

// AddShipment records a partial or full shipment. The quantity must fit
// within what remains unshipped.
func (s *OrderService) AddShipment(ctx context.Context, user *auth.UserContext, id uuid.UUID, req *domain.CreateShipmentRequest) (*domain.Order, error) {
	order, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if order.Stage.IsTerminal() {
		return nil, NewTransitionError("order", string(order.Stage), string(order.Stage), domain.DenialTerminalState)
	}
	if req.Quantity < 1 || req.Quantity > order.QuantityRemaining() {
		return nil, ErrShipmentQuantity
	}

	shippedAt := time.Now()
	if req.ShippedAt != nil {
		shippedAt = *req.ShippedAt
	}
	shipment := &domain.Shipment{
		OrderID:         order.ID,
		Quantity:        req.Quantity,
		TrackingNumber:  req.TrackingNumber,
		ShippingCarrier: req.ShippingCarrier,
		ShippedAt:       shippedAt,
	}

	if err := s.orderRepo.AddShipment(ctx, order, shipment); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, order, user, "Shipment recorded",
		fmt.Sprintf("%d units via %s (%s)", shipment.Quantity, shipment.ShippingCarrier, shipment.TrackingNumber))
	s.notifyCustomer(ctx, order, domain.NotificationOrderShipped,
		"Shipment on its way",
		fmt.Sprintf("%d units of order %s shipped", shipment.Quantity, order.OrderNumber))

	return s.orderRepo.GetByID(ctx, order.ID)
}

// MarkPaid settles the order. Payment requires an invoice on file and
// is one way.
func (s *OrderService) MarkPaid(ctx context.Context, user *auth.UserContext, id uuid.UUID, req *domain.MarkOrderPaidRequest) (*domain.Order, error) {
	order, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}

	if req != nil && req.InvoiceFileID != "" {
		if fileID, err := uuid.Parse(req.InvoiceFileID); err == nil {
			order.InvoiceFileID = &fileID
		}
	}

	decision := domain.CanTransitionOrderPayment(user.Role, order.PaymentStatus, domain.PaymentStatusPaid, order.InvoiceFileID != nil)
	if !decision.Allowed {
		return nil, NewTransitionError("order_payment", string(order.PaymentStatus), string(domain.PaymentStatusPaid), decision.Reason)
	}

	order.PaymentStatus = domain.PaymentStatusPaid
	// Settled orders move to the archived view
	order.IsArchived = true
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, order, user, "Payment received", fmt.Sprintf("%.2f %s settled", order.Amount, order.Currency))
	s.notifyCustomer(ctx, order, domain.NotificationOrderPaid,
		"Payment confirmed",
		fmt.Sprintf("Payment for order %s has been received", order.OrderNumber))

	s.logger.Info("order marked paid", zap.String("order_id", order.ID.String()))
	return order, nil
}

// SetArchived hides or restores a delivered order in listings
func (s *OrderService) SetArchived(ctx context.Context, user *auth.UserContext, id uuid.UUID, archived bool) (*domain.Order, error) {
	order, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	order.IsArchived = archived
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// Activities returns the order's event trail
func (s *OrderService) Activities(ctx context.Context, user *auth.UserContext, id uuid.UUID, limit int) ([]domain.Activity, error) {
	if _, err := s.Get(ctx, user, id); err != nil {
		return nil, err
	}
	return s.activityRepo.ListByTarget(ctx, "order", id, limit)
}

func (s *OrderService) recordActivity(ctx context.Context, order *domain.Order, actor *auth.UserContext, title, body string) {
	activity := &domain.Activity{
		TargetType: "order",
		TargetID:   order.ID,
		Title:      title,
		Body:       body,
		ActorID:    actor.UserID,
		ActorName:  actor.DisplayName,
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to record activity", zap.Error(err), zap.String("order_id", order.ID.String()))
	}
}

func (s *OrderService) notifyCustomer(ctx context.Context, order *domain.Order, typ domain.NotificationType, title, message string) {
	entityID := order.ID
	notification := &domain.Notification{
		UserID:     order.CustomerID,
		Type:       typ,
		Title:      title,
		Message:    message,
		EntityType: "order",
		EntityID:   &entityID,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Warn("failed to create notification", zap.Error(err))
	}
}
