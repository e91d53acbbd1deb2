package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/partbridge/marketplace-api/internal/auth"
	"github.com/partbridge/marketplace-api/internal/domain"
	"github.com/partbridge/marketplace-api/internal/mapper"
	"github.com/partbridge/marketplace-api/internal/repository"
	"github.com/partbridge/marketplace-api/internal/service"
	"go.uber.org/zap"
)

type PurchaseOrderHandler struct {
	poService *service.PurchaseOrderService
	logger    *zap.Logger
}

func NewPurchaseOrderHandler(poService *service.PurchaseOrderService, logger *zap.Logger) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{poService: poService, logger: logger}
}

// @Summary List purchase orders
// @Description Lists purchase orders. Suppliers see their own, admins see all.
// @Tags Purchase Orders
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param status query string false "Filter by status"
// @Param rfqId query string false "Filter by RFQ"
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Router /purchase-orders [get]
func (h *PurchaseOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	page, pageSize := parsePagination(r)

	filters := repository.POFilters{}
	if s := r.URL.Query().Get("status"); s != "" {
		status := domain.PurchaseOrderStatus(s)
		filters.Status = &status
	}
	if v := r.URL.Query().Get("rfqId"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			filters.RFQID = &id
		}
	}

	pos, total, err := h.poService.List(r.Context(), user, page, pageSize, filters, parseSort(r))
	if err != nil {
		h.logger.Error("failed to list purchase orders", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	dtos := make([]domain.PurchaseOrderDTO, len(pos))
	for i := range pos {
		dtos[i] = mapper.ToPurchaseOrderDTO(&pos[i])
	}
	respondJSON(w, http.StatusOK, paginatedResponse(dtos, total, page, pageSize))
}

// @Summary Issue purchase order
// @Description Issues a purchase order against an accepted supplier quote. One per quote.
// @Tags Purchase Orders
// @Accept json
// @Produce json
// @Param request body domain.CreatePurchaseOrderRequest true "Purchase order data"
// @Success 201 {object} domain.PurchaseOrderDTO
// @Failure 409 {object} domain.ErrorResponse "Quote already has a purchase order"
// @Security BearerAuth
// @Router /purchase-orders [post]
func (h *PurchaseOrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())

	var req domain.CreatePurchaseOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	po, err := h.poService.Create(r.Context(), user, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/purchase-orders/"+po.ID.String())
	respondJSON(w, http.StatusCreated, mapper.ToPurchaseOrderDTO(po))
}

// @Summary Get purchase order
// @Tags Purchase Orders
// @Produce json
// @Param id path string true "Purchase order ID"
// @Success 200 {object} domain.PurchaseOrderDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /purchase-orders/{id} [get]
func (h *PurchaseOrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid purchase order ID: must be a valid UUID")
		return
	}

	po, err := h.poService.Get(r.Context(), user, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToPurchaseOrderDTO(po))
}

// @Summary Report purchase order status
// @Description Supplier accepts or declines a pending purchase order, then reports progress up to delivered. Moving backwards is refused.
// @Tags Purchase Orders
// @Accept json
// @Produce json
// @Param id path string true "Purchase order ID"
// @Param request body domain.PurchaseOrderStatusRequest true "Status report"
// @Success 200 {object} domain.PurchaseOrderDTO
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /purchase-orders/{id}/status [post]
func (h *PurchaseOrderHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid purchase order ID: must be a valid UUID")
		return
	}

	var req domain.PurchaseOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	po, err := h.poService.SetStatus(r.Context(), user, id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToPurchaseOrderDTO(po))
}

// @Summary Purchase order activity trail
// @Tags Purchase Orders
// @Produce json
// @Param id path string true "Purchase order ID"
// @Param limit query int false "Maximum entries" default(50)
// @Success 200 {array} domain.ActivityDTO
// @Security BearerAuth
// @Router /purchase-orders/{id}/activities [get]
func (h *PurchaseOrderHandler) Activities(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid purchase order ID: must be a valid UUID")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	activities, err := h.poService.Activities(r.Context(), user, id, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	dtos := make([]domain.ActivityDTO, len(activities))
	for i := range activities {
		dtos[i] = mapper.ToActivityDTO(&activities[i])
	}
	respondJSON(w, http.StatusOK, dtos)
}
