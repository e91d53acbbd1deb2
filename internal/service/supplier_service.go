package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/partbridge/marketplace-api/internal/auth"
	"github.com/partbridge/marketplace-api/internal/domain"
	"github.com/partbridge/marketplace-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SupplierService manages the supplier directory and per-supplier
// performance figures.
type SupplierService struct {
	supplierRepo *repository.SupplierRepository
	quoteRepo    *repository.SupplierQuoteRepository
	poRepo       *repository.PurchaseOrderRepository
	logger       *zap.Logger
}

func NewSupplierService(
	supplierRepo *repository.SupplierRepository,
	quoteRepo *repository.SupplierQuoteRepository,
	poRepo *repository.PurchaseOrderRepository,
	logger *zap.Logger,
) *SupplierService {
	return &SupplierService{
		supplierRepo: supplierRepo,
		quoteRepo:    quoteRepo,
		poRepo:       poRepo,
		logger:       logger,
	}
}

// Create registers a supplier in the directory
func (s *SupplierService) Create(ctx context.Context, req *domain.CreateSupplierRequest) (*domain.Supplier, error) {
	supplier := &domain.Supplier{
		Name:                  req.Name,
		CompanyName:           req.CompanyName,
		Email:                 req.Email,
		Phone:                 req.Phone,
		Address:               req.Address,
		City:                  req.City,
		Country:               req.Country,
		Website:               req.Website,
		Description:           req.Description,
		Capabilities:          pq.StringArray(req.Capabilities),
		Certifications:        pq.StringArray(req.Certifications),
		Industries:            pq.StringArray(req.Industries),
		EmployeeCount:         req.EmployeeCount,
		YearEstablished:       req.YearEstablished,
		EmergencyCapability:   req.EmergencyCapability,
		InternationalShipping: req.InternationalShipping,
		IsActive:              true,
	}
	if req.UserID != "" {
		if userID, err := uuid.Parse(req.UserID); err == nil {
			supplier.UserID = &userID
		}
	}

	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return nil, err
	}

	s.logger.Info("supplier created",
		zap.String("supplier_id", supplier.ID.String()),
		zap.String("company", supplier.CompanyName),
	)
	return supplier, nil
}

// Get loads a supplier profile
func (s *SupplierService) Get(ctx context.Context, id uuid.UUID) (*domain.Supplier, error) {
	supplier, err := s.supplierRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSupplierNotFound
		}
		return nil, err
	}
	return supplier, nil
}

// GetOwn loads the calling supplier user's own profile
func (s *SupplierService) GetOwn(ctx context.Context, user *auth.UserContext) (*domain.Supplier, error) {
	supplier, err := s.supplierRepo.GetByUserID(ctx, user.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSupplierNotFound
		}
		return nil, err
	}
	return supplier, nil
}

// Update edits a supplier profile. Suppliers may only edit their own.
func (s *SupplierService) Update(ctx context.Context, user *auth.UserContext, id uuid.UUID, req *domain.UpdateSupplierRequest) (*domain.Supplier, error) {
	supplier, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.IsSupplier() && (supplier.UserID == nil || *supplier.UserID != user.UserID) {
		return nil, ErrPermissionDenied
	}

	if req.Name != nil {
		supplier.Name = *req.Name
	}
	if req.CompanyName != nil {
		supplier.CompanyName = *req.CompanyName
	}
	if req.Email != nil {
		supplier.Email = *req.Email
	}
	if req.Phone != nil {
		supplier.Phone = *req.Phone
	}
	if req.Address != nil {
		supplier.Address = *req.Address
	}
	if req.City != nil {
		supplier.City = *req.City
	}
	if req.Country != nil {
		supplier.Country = *req.Country
	}
	if req.Website != nil {
		supplier.Website = *req.Website
	}
	if req.Description != nil {
		supplier.Description = *req.Description
	}
	if req.Capabilities != nil {
		supplier.Capabilities = pq.StringArray(*req.Capabilities)
	}
	if req.Certifications != nil {
		supplier.Certifications = pq.StringArray(*req.Certifications)
	}
	if req.Industries != nil {
		supplier.Industries = pq.StringArray(*req.Industries)
	}
	if req.EmployeeCount != nil {
		supplier.EmployeeCount = *req.EmployeeCount
	}
	if req.YearEstablished != nil {
		supplier.YearEstablished = *req.YearEstablished
	}
	if req.EmergencyCapability != nil {
		supplier.EmergencyCapability = *req.EmergencyCapability
	}
	if req.InternationalShipping != nil {
		supplier.InternationalShipping = *req.InternationalShipping
	}

	if err := s.supplierRepo.Update(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

// Deactivate removes a supplier from the active directory
func (s *SupplierService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.supplierRepo.Deactivate(ctx, id)
}

// List returns the active directory filtered by the given criteria
func (s *SupplierService) List(ctx context.Context, page, pageSize int, criteria domain.SupplierCriteria, sort repository.SortConfig) ([]domain.Supplier, int64, error) {
	return s.supplierRepo.List(ctx, page, pageSize, criteria, sort)
}

// Stats aggregates a supplier's quoting record and open workload
func (s *SupplierService) Stats(ctx context.Context, id uuid.UUID) (*domain.SupplierStatsDTO, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	counts, err := s.quoteRepo.CountBySupplierStatus(ctx, id)
	if err != nil {
		return nil, err
	}
	openPOs, err := s.poRepo.CountOpenForSupplier(ctx, id)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, n := range counts {
		total += n
	}
	accepted := counts[domain.SupplierQuoteStatusAccepted]

	winRate := 0.0
	decided := total - counts[domain.SupplierQuoteStatusPending]
	if decided > 0 {
		winRate = float64(accepted) / float64(decided) * 100
	}

	return &domain.SupplierStatsDTO{
		TotalQuotes:    total,
		AcceptedQuotes: accepted,
		PendingQuotes:  counts[domain.SupplierQuoteStatusPending],
		WinRate:        winRate,
		OpenPOs:        openPOs,
	}, nil
}
