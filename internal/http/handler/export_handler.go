package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/partbridge/marketplace-api/internal/service"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportHandler struct {
	exportService *service.ExportService
	logger        *zap.Logger
}

func NewExportHandler(exportService *service.ExportService, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{exportService: exportService, logger: logger}
}

// @Summary Export order book
// @Description Downloads all orders as an Excel workbook.
// @Tags Exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /exports/orders [get]
func (h *ExportHandler) Orders(w http.ResponseWriter, r *http.Request) {
	buf, err := h.exportService.ExportOrders(r.Context())
	if err != nil {
		h.logger.Error("failed to export orders", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = buf.WriteTo(w)
}

// @Summary Export RFQ pipeline
// @Description Downloads all RFQs as an Excel workbook.
// @Tags Exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /exports/rfqs [get]
func (h *ExportHandler) RFQs(w http.ResponseWriter, r *http.Request) {
	buf, err := h.exportService.ExportRFQs(r.Context())
	if err != nil {
		h.logger.Error("failed to export rfqs", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("rfqs-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = buf.WriteTo(w)
}

// @Summary Export supplier directory
// @Description Downloads the active supplier directory as an Excel workbook. Accepts the same filter query parameters as the directory listing.
// @Tags Exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param search query string false "Free-text search over name, company and description"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /exports/suppliers [get]
func (h *ExportHandler) Suppliers(w http.ResponseWriter, r *http.Request) {
	buf, err := h.exportService.ExportSuppliers(r.Context(), parseSupplierCriteria(r))
	if err != nil {
		h.logger.Error("failed to export suppliers", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("suppliers-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = buf.WriteTo(w)
}
