package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/partbridge/marketplace-api/internal/auth"
	"github.com/partbridge/marketplace-api/internal/domain"
	"github.com/partbridge/marketplace-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SupplierQuoteService handles supplier bids on dispatched RFQs and the
// admin's selection among them.
type SupplierQuoteService struct {
	quoteRepo        *repository.SupplierQuoteRepository
	rfqRepo          *repository.RFQRepository
	supplierRepo     *repository.SupplierRepository
	poRepo           *repository.PurchaseOrderRepository
	activityRepo     *repository.ActivityRepository
	notificationRepo *repository.NotificationRepository
	logger           *zap.Logger
}

func NewSupplierQuoteService(
	quoteRepo *repository.SupplierQuoteRepository,
	rfqRepo *repository.RFQRepository,
	supplierRepo *repository.SupplierRepository,
	poRepo *repository.PurchaseOrderRepository,
	activityRepo *repository.ActivityRepository,
	notificationRepo *repository.NotificationRepository,
	logger *zap.Logger,
) *SupplierQuoteService {
	return &SupplierQuoteService{
		quoteRepo:        quoteRepo,
		rfqRepo:          rfqRepo,
		supplierRepo:     supplierRepo,
		poRepo:           poRepo,
		activityRepo:     activityRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// Submit places a supplier's bid on a dispatched RFQ. A supplier can
// only hold one pending bid per RFQ at a time.
func (s *SupplierQuoteService) Submit(ctx context.Context, user *auth.UserContext, rfqID uuid.UUID, req *domain.CreateSupplierQuoteRequest) (*domain.SupplierQuote, error) {
	rfq, err := s.rfqRepo.GetByID(ctx, rfqID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRFQNotFound
		}
		return nil, err
	}
	if rfq.Status != domain.RFQStatusSentToSuppliers {
		return nil, NewTransitionError("rfq", string(rfq.Status), string(rfq.Status), domain.DenialPreconditionFailed)
	}

	supplier, err := s.supplierRepo.GetByUserID(ctx, user.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSupplierNotFound
		}
		return nil, err
	}

	pending, err := s.quoteRepo.HasPendingFromSupplier(ctx, rfqID, supplier.ID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, ErrDuplicateQuote
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	quote := &domain.SupplierQuote{
		RFQID:        rfqID,
		SupplierID:   supplier.ID,
		SupplierName: supplier.Name,
		CompanyName:  supplier.CompanyName,
		Price:        req.Price,
		Currency:     currency,
		LeadTimeDays: req.LeadTimeDays,
		Notes:        req.Notes,
		Status:       domain.SupplierQuoteStatusPending,
	}
	if req.QuoteFileID != "" {
		if fileID, err := uuid.Parse(req.QuoteFileID); err == nil {
			quote.QuoteFileID = &fileID
		}
	}

	if err := s.quoteRepo.Create(ctx, quote); err != nil {
		return nil, err
	}

	s.logger.Info("supplier quote submitted",
		zap.String("quote_id", quote.ID.String()),
		zap.String("rfq_id", rfqID.String()),
		zap.String("supplier_id", supplier.ID.String()),
	)
	return quote, nil
}

// Decide applies the admin's verdict on a supplier bid. Accepting is
// refused while another bid on the same RFQ is already accepted.
func (s *SupplierQuoteService) Decide(ctx context.Context, user *auth.UserContext, quoteID uuid.UUID, req *domain.SupplierQuoteDecisionRequest) (*domain.SupplierQuote, error) {
	quote, err := s.quoteRepo.GetByID(ctx, quoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSupplierQuoteNotFound
		}
		return nil, err
	}

	target := domain.NormalizeSupplierQuoteStatus(req.Status)

	otherAccepted := false
	if target == domain.SupplierQuoteStatusAccepted {
		otherAccepted, err = s.quoteRepo.HasAcceptedForRFQ(ctx, quote.RFQID, quote.ID)
		if err != nil {
			return nil, err
		}
	}

	decision := domain.CanTransitionSupplierQuote(user.Role, quote.Status, target, otherAccepted)
	if !decision.Allowed {
		return nil, NewTransitionError("supplier_quote", string(quote.Status), string(target), decision.Reason)
	}

	quote.Status = target
	if req.AdminFeedback != "" {
		quote.AdminFeedback = req.AdminFeedback
	}
	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		return nil, err
	}

	s.notifySupplier(ctx, quote, target)
	s.recordActivity(ctx, quote, user, target)
	return quote, nil
}

// Get loads a supplier quote. Supplier pricing is between the
// marketplace and the bidding supplier; customers never see it.
func (s *SupplierQuoteService) Get(ctx context.Context, user *auth.UserContext, quoteID uuid.UUID) (*domain.SupplierQuote, error) {
	quote, err := s.quoteRepo.GetByID(ctx, quoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSupplierQuoteNotFound
		}
		return nil, err
	}
	if user.IsCustomer() {
		return nil, ErrPermissionDenied
	}
	if user.IsSupplier() {
		supplier, err := s.supplierRepo.GetByUserID(ctx, user.UserID)
		if err != nil || supplier.ID != quote.SupplierID {
			return nil, ErrPermissionDenied
		}
	}
	return quote, nil
}

// ListByRFQ returns all bids on an RFQ in submission order
func (s *SupplierQuoteService) ListByRFQ(ctx context.Context, rfqID uuid.UUID) ([]domain.SupplierQuote, error) {
	return s.quoteRepo.ListByRFQ(ctx, rfqID)
}

// CompareByRFQ groups the RFQ's bids by company for side-by-side
// comparison, cheapest representative first.
func (s *SupplierQuoteService) CompareByRFQ(ctx context.Context, rfqID uuid.UUID) ([]domain.QuoteGroup, error) {
	quotes, err := s.quoteRepo.ListByRFQ(ctx, rfqID)
	if err != nil {
		return nil, err
	}
	return domain.GroupQuotesByCompany(quotes), nil
}

// ListMine returns the calling supplier's own bids
func (s *SupplierQuoteService) ListMine(ctx context.Context, user *auth.UserContext, page, pageSize int) ([]domain.SupplierQuote, int64, error) {
	supplier, err := s.supplierRepo.GetByUserID(ctx, user.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrSupplierNotFound
		}
		return nil, 0, err
	}
	return s.quoteRepo.ListBySupplier(ctx, supplier.ID, page, pageSize)
}

// HasPurchaseOrder reports whether a purchase order was issued against
// the quote
func (s *SupplierQuoteService) HasPurchaseOrder(ctx context.Context, quoteID uuid.UUID) (bool, error) {
	return s.poRepo.ExistsForSupplierQuote(ctx, quoteID)
}

func (s *SupplierQuoteService) notifySupplier(ctx context.Context, quote *domain.SupplierQuote, target domain.SupplierQuoteStatus) {
	supplier, err := s.supplierRepo.GetByID(ctx, quote.SupplierID)
	if err != nil || supplier.UserID == nil {
		return
	}

	typ := domain.NotificationQuoteDeclined
	title := "Quote not selected"
	message := fmt.Sprintf("Your quote of %.2f %s was not selected", quote.Price, quote.Currency)
	if target == domain.SupplierQuoteStatusAccepted {
		typ = domain.NotificationQuoteAccepted
		title = "Quote accepted"
		message = fmt.Sprintf("Your quote of %.2f %s was accepted", quote.Price, quote.Currency)
	}

	entityID := quote.ID
	notification := &domain.Notification{
		UserID:     *supplier.UserID,
		Type:       typ,
		Title:      title,
		Message:    message,
		EntityType: "supplier_quote",
		EntityID:   &entityID,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Warn("failed to notify supplier", zap.Error(err))
	}
}

func (s *SupplierQuoteService) recordActivity(ctx context.Context, quote *domain.SupplierQuote, actor *auth.UserContext, target domain.SupplierQuoteStatus) {
	title := "Supplier quote marked not selected"
	if target == domain.SupplierQuoteStatusAccepted {
		title = "Supplier quote accepted"
	}
	activity := &domain.Activity{
		TargetType: "rfq",
		TargetID:   quote.RFQID,
		Title:      title,
		Body:       fmt.Sprintf("%s quoted %.2f %s", quote.CompanyName, quote.Price, quote.Currency),
		ActorID:    actor.UserID,
		ActorName:  actor.DisplayName,
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to record activity", zap.Error(err))
	}
}
