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

type OrderHandler struct {
	orderService *service.OrderService
	logger       *zap.Logger
}

func NewOrderHandler(orderService *service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orderService: orderService, logger: logger}
}

// @Summary List orders
// @Description Lists orders. Customers see their own, admins see all.
// @Tags Orders
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param stage query string false "Filter by manufacturing stage"
// @Param archived query bool false "Include archived orders" default(false)
// @Param sortBy query string false "Sort field" Enums(createdAt, updatedAt, orderNumber, amount, stage)
// @Param sortOrder query string false "Sort order" Enums(asc, desc) default(desc)
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Router /orders [get]
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	page, pageSize := parsePagination(r)

	filters := repository.OrderFilters{}
	if s := r.URL.Query().Get("stage"); s != "" {
		stage := domain.OrderStage(s)
		filters.Stage = &stage
	}
	if v := r.URL.Query().Get("archived"); v != "" {
		archived, _ := strconv.ParseBool(v)
		filters.Archived = &archived
	}

	orders, total, err := h.orderService.List(r.Context(), user, page, pageSize, filters, parseSort(r))
	if err != nil {
		h.logger.Error("failed to list orders", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	dtos := make([]domain.OrderDTO, len(orders))
	for i := range orders {
		dtos[i] = mapper.ToOrderDTO(&orders[i])
	}
	respondJSON(w, http.StatusOK, paginatedResponse(dtos, total, page, pageSize))
}

// @Summary Get order
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} domain.OrderDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /orders/{id} [get]
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID: must be a valid UUID")
		return
	}

	order, err := h.orderService.Get(r.Context(), user, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToOrderDTO(order))
}

// @Summary Advance order stage
// @Description Moves the order exactly one manufacturing stage forward. Skipping or moving backwards is refused.
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body domain.AdvanceOrderStageRequest true "Target stage"
// @Success 200 {object} domain.OrderDTO
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /orders/{id}/stage [post]
func (h *OrderHandler) AdvanceStage(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID: must be a valid UUID")
		return
	}

	var req domain.AdvanceOrderStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	order, err := h.orderService.AdvanceStage(r.Context(), user, id, domain.OrderStage(req.Stage))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToOrderDTO(order))
}

// @Summary Record shipment
// @Description Records a partial or full shipment. The quantity must not exceed what remains unshipped.
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body domain.CreateShipmentRequest true "Shipment data"
// @Success 200 {object} domain.OrderDTO
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /orders/{id}/shipments [post]
func (h *OrderHandler) AddShipment(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID: must be a valid UUID")
		return
	}

	var req domain.CreateShipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	order, err := h.orderService.AddShipment(r.Context(), user, id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToOrderDTO(order))
}

// @Summary Mark order paid
// @Description Settles the order. Requires an invoice on file; payment is one way.
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body domain.MarkOrderPaidRequest false "Invoice reference"
// @Success 200 {object} domain.OrderDTO
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /orders/{id}/payment [post]
func (h *OrderHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID: must be a valid UUID")
		return
	}

	var req domain.MarkOrderPaidRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
			return
		}
		if err := validate.Struct(req); err != nil {
			respondValidationError(w, err)
			return
		}
	}

	order, err := h.orderService.MarkPaid(r.Context(), user, id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToOrderDTO(order))
}

// @Summary Archive order
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} domain.OrderDTO
// @Security BearerAuth
// @Router /orders/{id}/archive [post]
func (h *OrderHandler) Archive(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, true)
}

// @Summary Restore archived order
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} domain.OrderDTO
// @Security BearerAuth
// @Router /orders/{id}/unarchive [post]
func (h *OrderHandler) Unarchive(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, false)
}

func (h *OrderHandler) setArchived(w http.ResponseWriter, r *http.Request, archived bool) {
	user := auth.MustFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID: must be a valid UUID")
		return
	}

	order, err := h.orderService.SetArchived(r.Context(), user, id, archived)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToOrderDTO(order))
}

// @Summary Order activity trail
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Param limit query int false "Maximum entries" default(50)
// @Success 200 {array} domain.ActivityDTO
// @Security BearerAuth
// @Router /orders/{id}/activities [get]
func (h *OrderHandler) Activities(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order ID: must be a valid UUID")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	activities, err := h.orderService.Activities(r.Context(), user, id, limit)
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
