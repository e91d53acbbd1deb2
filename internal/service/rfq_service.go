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

// RFQService owns the request-for-quote lifecycle: submission, sales
// quoting, the customer's decision and dispatch to suppliers.
type RFQService struct {
	rfqRepo          *repository.RFQRepository
	salesQuoteRepo   *repository.SalesQuoteRepository
	orderRepo        *repository.OrderRepository
	supplierRepo     *repository.SupplierRepository
	activityRepo     *repository.ActivityRepository
	notificationRepo *repository.NotificationRepository
	logger           *zap.Logger
}

func NewRFQService(
	rfqRepo *repository.RFQRepository,
	salesQuoteRepo *repository.SalesQuoteRepository,
	orderRepo *repository.OrderRepository,
	supplierRepo *repository.SupplierRepository,
	activityRepo *repository.ActivityRepository,
	notificationRepo *repository.NotificationRepository,
	logger *zap.Logger,
) *RFQService {
	return &RFQService{
		rfqRepo:          rfqRepo,
		salesQuoteRepo:   salesQuoteRepo,
		orderRepo:        orderRepo,
		supplierRepo:     supplierRepo,
		activityRepo:     activityRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// Create registers a customer-submitted RFQ
func (s *RFQService) Create(ctx context.Context, user *auth.UserContext, req *domain.CreateRFQRequest) (*domain.RFQ, error) {
	return s.create(ctx, user.UserID, user.DisplayName, user.CompanyName, domain.RFQSourceCustomer, user, req)
}

// CreateForCustomer registers an RFQ on a customer's behalf. Admin-origin
// RFQs may later be dispatched to suppliers.
func (s *RFQService) CreateForCustomer(ctx context.Context, user *auth.UserContext, customerID uuid.UUID, customerName string, req *domain.CreateRFQRequest) (*domain.RFQ, error) {
	return s.create(ctx, customerID, customerName, "", domain.RFQSourceAdmin, user, req)
}

func (s *RFQService) create(ctx context.Context, customerID uuid.UUID, customerName, companyName string, source domain.RFQSource, actor *auth.UserContext, req *domain.CreateRFQRequest) (*domain.RFQ, error) {
	ref, err := s.nextReferenceNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate reference number: %w", err)
	}

	rfq := &domain.RFQ{
		ReferenceNumber:      ref,
		CustomerID:           customerID,
		CustomerName:         customerName,
		CompanyName:          companyName,
		ProjectName:          req.ProjectName,
		Material:             req.Material,
		MaterialGrade:        req.MaterialGrade,
		Finishing:            req.Finishing,
		Tolerance:            req.Tolerance,
		ManufacturingProcess: req.ManufacturingProcess,
		Quantity:             req.Quantity,
		AllowInternational:   req.AllowInternational,
		Notes:                req.Notes,
		Status:               domain.RFQStatusSubmitted,
		Source:               source,
	}
	if req.DrawingFileID != "" {
		if fileID, err := uuid.Parse(req.DrawingFileID); err == nil {
			rfq.DrawingFileID = &fileID
		}
	}

	if err := s.rfqRepo.Create(ctx, rfq); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, rfq.ID, actor, "RFQ submitted", fmt.Sprintf("Project %q, quantity %d", rfq.ProjectName, rfq.Quantity))
	s.logger.Info("rfq created",
		zap.String("rfq_id", rfq.ID.String()),
		zap.String("reference", rfq.ReferenceNumber),
		zap.String("source", string(source)),
	)
	return rfq, nil
}

// Get loads an RFQ. Customers only see their own; suppliers only see
// RFQs open for bids or ones they have already quoted on.
func (s *RFQService) Get(ctx context.Context, user *auth.UserContext, id uuid.UUID) (*domain.RFQ, error) {
	rfq, err := s.rfqRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRFQNotFound
		}
		return nil, err
	}
	if user.IsCustomer() && rfq.CustomerID != user.UserID {
		return nil, ErrPermissionDenied
	}
	if user.IsSupplier() && !s.supplierCanView(ctx, user, rfq) {
		return nil, ErrPermissionDenied
	}
	return rfq, nil
}

func (s *RFQService) supplierCanView(ctx context.Context, user *auth.UserContext, rfq *domain.RFQ) bool {
	if rfq.Status == domain.RFQStatusSentToSuppliers {
		return true
	}
	supplier, err := s.supplierRepo.GetByUserID(ctx, user.UserID)
	if err != nil {
		return false
	}
	for i := range rfq.SupplierQuotes {
		if rfq.SupplierQuotes[i].SupplierID == supplier.ID {
			return true
		}
	}
	return false
}

// List returns RFQs scoped by role: admins see everything, customers
// their own submissions, suppliers the ones dispatched to the market.
func (s *RFQService) List(ctx context.Context, user *auth.UserContext, page, pageSize int, filters repository.RFQFilters, sort repository.SortConfig) ([]domain.RFQ, int64, error) {
	switch user.Role {
	case domain.RoleCustomer:
		id := user.UserID
		filters.CustomerID = &id
	case domain.RoleSupplier:
		status := domain.RFQStatusSentToSuppliers
		filters.Status = &status
	}
	return s.rfqRepo.List(ctx, page, pageSize, filters, sort)
}

// Update edits an RFQ while it is still submitted
func (s *RFQService) Update(ctx context.Context, user *auth.UserContext, id uuid.UUID, req *domain.UpdateRFQRequest) (*domain.RFQ, error) {
	rfq, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if rfq.Status != domain.RFQStatusSubmitted {
		return nil, NewTransitionError("rfq", string(rfq.Status), string(rfq.Status), domain.DenialPreconditionFailed)
	}

	if req.ProjectName != nil {
		rfq.ProjectName = *req.ProjectName
	}
	if req.Material != nil {
		rfq.Material = *req.Material
	}
	if req.MaterialGrade != nil {
		rfq.MaterialGrade = *req.MaterialGrade
	}
	if req.Finishing != nil {
		rfq.Finishing = *req.Finishing
	}
	if req.Tolerance != nil {
		rfq.Tolerance = *req.Tolerance
	}
	if req.ManufacturingProcess != nil {
		rfq.ManufacturingProcess = *req.ManufacturingProcess
	}
	if req.Quantity != nil {
		rfq.Quantity = *req.Quantity
	}
	if req.AllowInternational != nil {
		rfq.AllowInternational = *req.AllowInternational
	}
	if req.Notes != nil {
		rfq.Notes = *req.Notes
	}

	if err := s.rfqRepo.Update(ctx, rfq); err != nil {
		return nil, err
	}
	return rfq, nil
}

// CreateSalesQuote quotes an RFQ back to the customer. Quoting a
// submitted RFQ moves it to quoted; re-quoting replaces the existing
// quote in place and leaves the status untouched.
func (s *RFQService) CreateSalesQuote(ctx context.Context, user *auth.UserContext, rfqID uuid.UUID, req *domain.CreateSalesQuoteRequest) (*domain.SalesQuote, error) {
	rfq, err := s.Get(ctx, user, rfqID)
	if err != nil {
		return nil, err
	}

	existing, err := s.salesQuoteRepo.GetByRFQID(ctx, rfqID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if existing == nil {
		decision := domain.CanTransitionRFQ(user.Role, rfq.Status, domain.RFQStatusQuoted, false)
		if !decision.Allowed {
			return nil, NewTransitionError("rfq", string(rfq.Status), string(domain.RFQStatusQuoted), decision.Reason)
		}
	} else if rfq.Status != domain.RFQStatusQuoted {
		return nil, NewTransitionError("rfq", string(rfq.Status), string(domain.RFQStatusQuoted), domain.DenialInvalidTransition)
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	quote := existing
	if quote == nil {
		quote = &domain.SalesQuote{RFQID: rfqID}
	}
	quote.Amount = req.Amount
	quote.Currency = currency
	quote.ValidUntil = req.ValidUntil
	quote.EstimatedDeliveryDate = req.EstimatedDeliveryDate
	quote.Notes = req.Notes
	quote.CreatedByID = user.UserID
	quote.IsExpiredFlag = false
	if req.QuoteFileID != "" {
		if fileID, err := uuid.Parse(req.QuoteFileID); err == nil {
			quote.QuoteFileID = &fileID
		}
	}

	if existing == nil {
		if err := s.salesQuoteRepo.Create(ctx, quote); err != nil {
			return nil, err
		}
	} else {
		if err := s.salesQuoteRepo.Update(ctx, quote); err != nil {
			return nil, err
		}
	}

	rfq.Status = domain.RFQStatusQuoted
	if err := s.rfqRepo.Update(ctx, rfq); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, rfq.ID, user, "Quote sent", fmt.Sprintf("Amount %.2f %s, valid until %s", quote.Amount, quote.Currency, quote.ValidUntil.Format("2006-01-02")))
	s.notify(ctx, rfq.CustomerID, domain.NotificationQuoteReceived,
		"Quote received",
		fmt.Sprintf("Your request %s has been quoted", rfq.ReferenceNumber),
		"rfq", rfq.ID)

	return quote, nil
}

// Decide handles the customer's accept or decline on a quoted RFQ.
// Accepting creates the order in the same call.
func (s *RFQService) Decide(ctx context.Context, user *auth.UserContext, rfqID uuid.UUID, req *domain.RFQDecisionRequest) (*domain.RFQ, *domain.Order, error) {
	rfq, err := s.Get(ctx, user, rfqID)
	if err != nil {
		return nil, nil, err
	}

	quote, err := s.salesQuoteRepo.GetByRFQID(ctx, rfqID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}
	hasActiveQuote := quote != nil && !quote.IsExpired(time.Now())

	target := domain.RFQStatusDeclined
	if req.Decision == "accept" {
		target = domain.RFQStatusAccepted
	}

	decision := domain.CanTransitionRFQ(user.Role, rfq.Status, target, hasActiveQuote)
	if !decision.Allowed {
		if target == domain.RFQStatusAccepted && decision.Reason == domain.DenialPreconditionFailed && quote != nil {
			return nil, nil, ErrQuoteExpired
		}
		return nil, nil, NewTransitionError("rfq", string(rfq.Status), string(target), decision.Reason)
	}

	rfq.Status = target
	if err := s.rfqRepo.Update(ctx, rfq); err != nil {
		return nil, nil, err
	}

	if target == domain.RFQStatusDeclined {
		s.recordActivity(ctx, rfq.ID, user, "Quote declined", req.Reason)
		s.logger.Info("rfq declined", zap.String("rfq_id", rfq.ID.String()))
		return rfq, nil, nil
	}

	order, err := s.createOrderFromRFQ(ctx, rfq, quote)
	if err != nil {
		return nil, nil, err
	}

	s.recordActivity(ctx, rfq.ID, user, "Quote accepted", fmt.Sprintf("Order %s created", order.OrderNumber))
	s.logger.Info("rfq accepted",
		zap.String("rfq_id", rfq.ID.String()),
		zap.String("order_id", order.ID.String()),
	)
	return rfq, order, nil
}

// Dispatch forwards an admin-origin RFQ to the selected suppliers
func (s *RFQService) Dispatch(ctx context.Context, user *auth.UserContext, rfqID uuid.UUID, req *domain.DispatchRFQRequest) (*domain.RFQ, error) {
	rfq, err := s.Get(ctx, user, rfqID)
	if err != nil {
		return nil, err
	}
	if rfq.Source != domain.RFQSourceAdmin {
		return nil, NewTransitionError("rfq", string(rfq.Status), string(domain.RFQStatusSentToSuppliers), domain.DenialPreconditionFailed)
	}

	decision := domain.CanTransitionRFQ(user.Role, rfq.Status, domain.RFQStatusSentToSuppliers, false)
	if !decision.Allowed {
		return nil, NewTransitionError("rfq", string(rfq.Status), string(domain.RFQStatusSentToSuppliers), decision.Reason)
	}

	ids := make([]uuid.UUID, 0, len(req.SupplierIDs))
	for _, raw := range req.SupplierIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	suppliers, err := s.supplierRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	rfq.Status = domain.RFQStatusSentToSuppliers
	if err := s.rfqRepo.Update(ctx, rfq); err != nil {
		return nil, err
	}

	notifications := make([]domain.Notification, 0, len(suppliers))
	for _, supplier := range suppliers {
		if supplier.UserID == nil {
			continue
		}
		entityID := rfq.ID
		notifications = append(notifications, domain.Notification{
			UserID:     *supplier.UserID,
			Type:       domain.NotificationRFQDispatched,
			Title:      "New request for quote",
			Message:    fmt.Sprintf("Request %s is open for bids", rfq.ReferenceNumber),
			EntityType: "rfq",
			EntityID:   &entityID,
		})
	}
	if err := s.notificationRepo.CreateBatch(ctx, notifications); err != nil {
		s.logger.Warn("failed to notify suppliers", zap.Error(err))
	}

	s.recordActivity(ctx, rfq.ID, user, "Sent to suppliers", fmt.Sprintf("%d suppliers invited", len(suppliers)))
	return rfq, nil
}

// ExpireQuotes sweeps sales quotes past their validity date, flags
// them and tells the affected customers. Called by the scheduler.
func (s *RFQService) ExpireQuotes(ctx context.Context) (int, error) {
	expired, err := s.salesQuoteRepo.ExpireDue(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	for i := range expired {
		quote := &expired[i]
		rfq, err := s.rfqRepo.GetByID(ctx, quote.RFQID)
		if err != nil {
			s.logger.Warn("failed to load rfq for expired quote",
				zap.Error(err),
				zap.String("quote_id", quote.ID.String()),
			)
			continue
		}
		s.notify(ctx, rfq.CustomerID, domain.NotificationQuoteExpired,
			"Quote expired",
			fmt.Sprintf("The quote on request %s is no longer valid", rfq.ReferenceNumber),
			"rfq", rfq.ID)
	}

	if len(expired) > 0 {
		s.logger.Info("sales quotes expired", zap.Int("count", len(expired)))
	}
	return len(expired), nil
}

// Pipeline returns per-status counts for the admin dashboard
func (s *RFQService) Pipeline(ctx context.Context) (map[domain.RFQStatus]int64, error) {
	return s.rfqRepo.CountByStatus(ctx)
}

func (s *RFQService) createOrderFromRFQ(ctx context.Context, rfq *domain.RFQ, quote *domain.SalesQuote) (*domain.Order, error) {
	number, err := s.nextOrderNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate order number: %w", err)
	}

	order := &domain.Order{
		OrderNumber:   number,
		RFQID:         rfq.ID,
		CustomerID:    rfq.CustomerID,
		CustomerName:  rfq.CustomerName,
		CompanyName:   rfq.CompanyName,
		ProjectName:   rfq.ProjectName,
		Amount:        quote.Amount,
		Currency:      quote.Currency,
		Stage:         domain.StagePending,
		PaymentStatus: domain.PaymentStatusUnpaid,
		Quantity:      rfq.Quantity,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *RFQService) nextReferenceNumber(ctx context.Context) (string, error) {
	year := time.Now().UTC().Year()
	count, err := s.rfqRepo.CountCreatedInYear(ctx, year)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("RFQ-%d-%04d", year, count+1), nil
}

func (s *RFQService) nextOrderNumber(ctx context.Context) (string, error) {
	year := time.Now().UTC().Year()
	count, err := s.orderRepo.CountCreatedInYear(ctx, year)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD-%d-%04d", year, count+1), nil
}

func (s *RFQService) recordActivity(ctx context.Context, rfqID uuid.UUID, actor *auth.UserContext, title, body string) {
	activity := &domain.Activity{
		TargetType: "rfq",
		TargetID:   rfqID,
		Title:      title,
		Body:       body,
		ActorID:    actor.UserID,
		ActorName:  actor.DisplayName,
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to record activity", zap.Error(err), zap.String("rfq_id", rfqID.String()))
	}
}

func (s *RFQService) notify(ctx context.Context, userID uuid.UUID, typ domain.NotificationType, title, message, entityType string, entityID uuid.UUID) {
	notification := &domain.Notification{
		UserID:     userID,
		Type:       typ,
		Title:      title,
		Message:    message,
		EntityType: entityType,
		EntityID:   &entityID,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Warn("failed to create notification", zap.Error(err))
	}
}
