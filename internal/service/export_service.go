package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/partbridge/marketplace-api/internal/domain"
	"github.com/partbridge/marketplace-api/internal/repository"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ExportService renders the order book, the RFQ pipeline and the
// supplier directory as Excel workbooks for the operations team.
type ExportService struct {
	rfqRepo      *repository.RFQRepository
	orderRepo    *repository.OrderRepository
	supplierRepo *repository.SupplierRepository
	logger       *zap.Logger
}

func NewExportService(rfqRepo *repository.RFQRepository, orderRepo *repository.OrderRepository, supplierRepo *repository.SupplierRepository, logger *zap.Logger) *ExportService {
	return &ExportService{rfqRepo: rfqRepo, orderRepo: orderRepo, supplierRepo: supplierRepo, logger: logger}
}

// ExportOrders writes all orders into a single-sheet workbook
func (s *ExportService) ExportOrders(ctx context.Context) (*bytes.Buffer, error) {
	orders, err := s.orderRepo.ListAll(ctx, repository.OrderFilters{})
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Orders"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Order Number", "Project", "Customer", "Company", "Stage", "Payment", "Amount", "Currency", "Quantity", "Shipped", "Created"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, order := range orders {
		values := []interface{}{
			order.OrderNumber,
			order.ProjectName,
			order.CustomerName,
			order.CompanyName,
			order.Stage.DisplayName(),
			string(order.PaymentStatus),
			order.Amount,
			order.Currency,
			order.Quantity,
			order.QuantityShipped,
			order.CreatedAt.UTC().Format("2006-01-02"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	s.logger.Info("order export generated", zap.Int("rows", len(orders)))
	return buf, nil
}

// ExportRFQs writes the RFQ pipeline into a single-sheet workbook
func (s *ExportService) ExportRFQs(ctx context.Context) (*bytes.Buffer, error) {
	rfqs, err := s.rfqRepo.ListAll(ctx, repository.RFQFilters{})
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "RFQs"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Reference", "Project", "Customer", "Material", "Process", "Quantity", "Status", "Source", "Created"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, rfq := range rfqs {
		values := []interface{}{
			rfq.ReferenceNumber,
			rfq.ProjectName,
			rfq.CustomerName,
			rfq.Material,
			rfq.ManufacturingProcess,
			rfq.Quantity,
			rfq.Status.DisplayName(),
			string(rfq.Source),
			rfq.CreatedAt.UTC().Format("2006-01-02"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	s.logger.Info("rfq export generated", zap.Int("rows", len(rfqs)))
	return buf, nil
}

// ExportSuppliers writes the active directory into a single-sheet
// workbook. The directory search form is applied in memory so the
// export matches exactly what the caller sees on screen.
func (s *ExportService) ExportSuppliers(ctx context.Context, criteria domain.SupplierCriteria) (*bytes.Buffer, error) {
	suppliers, err := s.supplierRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	suppliers = domain.FilterSuppliers(suppliers, criteria)

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Suppliers"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Name", "Company", "Email", "City", "Country", "Capabilities", "Certifications", "Employees", "Established", "Emergency", "Intl Shipping"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, supplier := range suppliers {
		values := []interface{}{
			supplier.Name,
			supplier.CompanyName,
			supplier.Email,
			supplier.City,
			supplier.Country,
			strings.Join(supplier.Capabilities, ", "),
			strings.Join(supplier.Certifications, ", "),
			supplier.EmployeeCount,
			supplier.YearEstablished,
			supplier.EmergencyCapability,
			supplier.InternationalShipping,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	s.logger.Info("supplier export generated", zap.Int("rows", len(suppliers)))
	return buf, nil
}
