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

// PurchaseOrderService issues purchase orders against accepted supplier
// quotes and tracks the supplier's fulfilment reports.
type PurchaseOrderService struct {
	poRepo           *repository.PurchaseOrderRepository
	quoteRepo        *repository.SupplierQuoteRepository
	supplierRepo     *repository.SupplierRepository
	activityRepo     *repository.ActivityRepository
	notificationRepo *repository.NotificationRepository
	logger           *zap.Logger
}

func NewPurchaseOrderService(
	poRepo *repository.PurchaseOrderRepository,
	quoteRepo *repository.SupplierQuoteRepository,
	supplierRepo *repository.SupplierRepository,
	activityRepo *repository.ActivityRepository,
	notificationRepo *repository.NotificationRepository,
	logger *zap.Logger,
) *PurchaseOrderService {
	return &PurchaseOrderService{
		poRepo:           poRepo,
		quoteRepo:        quoteRepo,
		supplierRepo:     supplierRepo,
		activityRepo:     activityRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// Create issues a purchase order against an accepted supplier quote.
// One purchase order per quote.
func (s *PurchaseOrderService) Create(ctx context.Context, user *auth.UserContext, req *domain.CreatePurchaseOrderRequest) (*domain.PurchaseOrder, error) {
	quoteID, err := uuid.Parse(req.SupplierQuoteID)
	if err != nil {
		return nil, ErrSupplierQuoteNotFound
	}

	quote, err := s.quoteRepo.GetByID(ctx, quoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSupplierQuoteNotFound
		}
		return nil, err
	}
	if quote.Status != domain.SupplierQuoteStatusAccepted {
		return nil, ErrQuoteNotAccepted
	}

	exists, err := s.poRepo.ExistsForSupplierQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicatePurchaseOrder
	}

	number, err := s.nextPONumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate purchase order number: %w", err)
	}

	po := &domain.PurchaseOrder{
		PONumber:        number,
		SupplierQuoteID: quote.ID,
		RFQID:           quote.RFQID,
		SupplierID:      quote.SupplierID,
		SupplierName:    quote.SupplierName,
		CompanyName:     quote.CompanyName,
		Amount:          quote.Price * float64(req.Quantity),
		Currency:        quote.Currency,
		Quantity:        req.Quantity,
		DeliveryDate:    req.DeliveryDate,
		Notes:           req.Notes,
		Status:          domain.POStatusPending,
	}
	if req.POFileID != "" {
		if fileID, err := uuid.Parse(req.POFileID); err == nil {
			po.POFileID = &fileID
		}
	}

	if err := s.poRepo.Create(ctx, po); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, po, user, "Purchase order issued",
		fmt.Sprintf("%s for %d units at %.2f %s", po.PONumber, po.Quantity, quote.Price, po.Currency))
	s.notifySupplier(ctx, po, domain.NotificationPOAssigned,
		"Purchase order assigned",
		fmt.Sprintf("Purchase order %s is awaiting your response", po.PONumber))

	s.logger.Info("purchase order created",
		zap.String("po_id", po.ID.String()),
		zap.String("po_number", po.PONumber),
		zap.String("supplier_id", po.SupplierID.String()),
	)
	return po, nil
}

// Get loads a purchase order. Purchase orders are between the
// marketplace and a supplier; customers never see them, and suppliers
// only see their own.
func (s *PurchaseOrderService) Get(ctx context.Context, user *auth.UserContext, id uuid.UUID) (*domain.PurchaseOrder, error) {
	po, err := s.poRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPurchaseOrderNotFound
		}
		return nil, err
	}
	if user.IsCustomer() {
		return nil, ErrPermissionDenied
	}
	if user.IsSupplier() {
		supplier, err := s.supplierRepo.GetByUserID(ctx, user.UserID)
		if err != nil || supplier.ID != po.SupplierID {
			return nil, ErrPermissionDenied
		}
	}
	return po, nil
}

// List returns purchase orders scoped to the caller
func (s *PurchaseOrderService) List(ctx context.Context, user *auth.UserContext, page, pageSize int, filters repository.POFilters, sort repository.SortConfig) ([]domain.PurchaseOrder, int64, error) {
	if user.IsSupplier() {
		supplier, err := s.supplierRepo.GetByUserID(ctx, user.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, 0, ErrSupplierNotFound
			}
			return nil, 0, err
		}
		id := supplier.ID
		filters.SupplierID = &id
	}
	return s.poRepo.List(ctx, page, pageSize, filters, sort)
}

// SetStatus applies the supplier's status report: accept or decline
// while pending, then progress reports up to delivered. Skipping ahead
// is allowed, moving backwards is not.
func (s *PurchaseOrderService) SetStatus(ctx context.Context, user *auth.UserContext, id uuid.UUID, req *domain.PurchaseOrderStatusRequest) (*domain.PurchaseOrder, error) {
	po, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}

	target := domain.PurchaseOrderStatus(req.Status)
	decision := domain.CanTransitionPurchaseOrder(user.Role, po.Status, target)
	if !decision.Allowed {
		return nil, NewTransitionError("purchase_order", string(po.Status), string(target), decision.Reason)
	}

	po.Status = target
	if err := s.poRepo.Update(ctx, po); err != nil {
		return nil, err
	}

	body := fmt.Sprintf("Status set to %s", target)
	if req.Note != "" {
		body = fmt.Sprintf("%s: %s", body, req.Note)
	}
	s.recordActivity(ctx, po, user, "Purchase order status updated", body)

	s.logger.Info("purchase order status updated",
		zap.String("po_id", po.ID.String()),
		zap.String("status", string(target)),
	)
	return po, nil
}

// Activities returns the purchase order's event trail
func (s *PurchaseOrderService) Activities(ctx context.Context, user *auth.UserContext, id uuid.UUID, limit int) ([]domain.Activity, error) {
	if _, err := s.Get(ctx, user, id); err != nil {
		return nil, err
	}
	return s.activityRepo.ListByTarget(ctx, "purchase_order", id, limit)
}

func (s *PurchaseOrderService) nextPONumber(ctx context.Context) (string, error) {
	year := time.Now().UTC().Year()
	count, err := s.poRepo.CountCreatedInYear(ctx, year)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("PO-%d-%04d", year, count+1), nil
}

func (s *PurchaseOrderService) recordActivity(ctx context.Context, po *domain.PurchaseOrder, actor *auth.UserContext, title, body string) {
	activity := &domain.Activity{
		TargetType: "purchase_order",
		TargetID:   po.ID,
		Title:      title,
		Body:       body,
		ActorID:    actor.UserID,
		ActorName:  actor.DisplayName,
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to record activity", zap.Error(err), zap.String("po_id", po.ID.String()))
	}
}

func (s *PurchaseOrderService) notifySupplier(ctx context.Context, po *domain.PurchaseOrder, typ domain.NotificationType, title, message string) {
	supplier, err := s.supplierRepo.GetByID(ctx, po.SupplierID)
	if err != nil || supplier.UserID == nil {
		return
	}
	entityID := po.ID
	notification := &domain.Notification{
		UserID:     *supplier.UserID,
		Type:       typ,
		Title:      title,
		Message:    message,
		EntityType: "purchase_order",
		EntityID:   &entityID,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Warn("failed to notify supplier", zap.Error(err))
	}
}
