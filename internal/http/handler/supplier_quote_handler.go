package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/partbridge/marketplace-api/internal/auth"
	"github.com/partbridge/marketplace-api/internal/domain"
	"github.com/partbridge/marketplace-api/internal/mapper"
	"github.com/partbridge/marketplace-api/internal/service"
	"go.uber.org/zap"
)

type SupplierQuoteHandler struct {
	quoteService *service.SupplierQuoteService
	logger       *zap.Logger
}

func NewSupplierQuoteHandler(quoteService *service.SupplierQuoteService, logger *zap.Logger) *SupplierQuoteHandler {
	return &SupplierQuoteHandler{quoteService: quoteService, logger: logger}
}

// @Summary Get supplier quote
// @Tags Supplier Quotes
// @Produce json
// @Param id path string true "Supplier quote ID"
// @Success 200 {object} domain.SupplierQuoteDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /supplier-quotes/{id} [get]
func (h *SupplierQuoteHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID: must be a valid UUID")
		return
	}

	quote, err := h.quoteService.Get(r.Context(), user, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	hasPO, _ := h.quoteService.HasPurchaseOrder(r.Context(), quote.ID)
	respondJSON(w, http.StatusOK, mapper.ToSupplierQuoteDTO(quote, hasPO))
}

// @Summary Decide on a supplier quote
// @Description Accepts a bid or marks it not selected. Accepting is refused with 409 while another bid on the RFQ is accepted.
// @Tags Supplier Quotes
// @Accept json
// @Produce json
// @Param id path string true "Supplier quote ID"
// @Param request body domain.SupplierQuoteDecisionRequest true "Decision"
// @Success 200 {object} domain.SupplierQuoteDTO
// @Failure 409 {object} domain.ErrorResponse "Another bid is already accepted"
// @Security BearerAuth
// @Router /supplier-quotes/{id}/decision [post]
func (h *SupplierQuoteHandler) Decide(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID: must be a valid UUID")
		return
	}

	var req domain.SupplierQuoteDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.quoteService.Decide(r.Context(), user, id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	hasPO, _ := h.quoteService.HasPurchaseOrder(r.Context(), quote.ID)
	respondJSON(w, http.StatusOK, mapper.ToSupplierQuoteDTO(quote, hasPO))
}

// @Summary List own supplier quotes
// @Description Lists the calling supplier's bids across all RFQs.
// @Tags Supplier Quotes
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Router /supplier-quotes/mine [get]
func (h *SupplierQuoteHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	page, pageSize := parsePagination(r)

	quotes, total, err := h.quoteService.ListMine(r.Context(), user, page, pageSize)
	if err != nil {
		h.logger.Error("failed to list own quotes", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	dtos := make([]domain.SupplierQuoteDTO, len(quotes))
	for i := range quotes {
		hasPO, _ := h.quoteService.HasPurchaseOrder(r.Context(), quotes[i].ID)
		dtos[i] = mapper.ToSupplierQuoteDTO(&quotes[i], hasPO)
	}
	respondJSON(w, http.StatusOK, paginatedResponse(dtos, total, page, pageSize))
}
