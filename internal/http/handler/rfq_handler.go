package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/partbridge/marketplace-api/internal/auth"
	"github.com/partbridge/marketplace-api/internal/domain"
	"github.com/partbridge/marketplace-api/internal/mapper"
	"github.com/partbridge/marketplace-api/internal/repository"
	"github.com/partbridge/marketplace-api/internal/service"
	"go.uber.org/zap"
)

type RFQHandler struct {
	rfqService   *service.RFQService
	quoteService *service.SupplierQuoteService
	logger       *zap.Logger
}

func NewRFQHandler(rfqService *service.RFQService, quoteService *service.SupplierQuoteService, logger *zap.Logger) *RFQHandler {
	return &RFQHandler{
		rfqService:   rfqService,
		quoteService: quoteService,
		logger:       logger,
	}
}

// @Summary List RFQs
// @Description Lists requests for quote. Customers see their own, suppliers see dispatched requests, admins see all.
// @Tags RFQs
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param status query string false "Filter by status" Enums(submitted, quoted, sent_to_suppliers, accepted, declined)
// @Param search query string false "Free-text search across project, material and reference"
// @Param sortBy query string false "Sort field" Enums(createdAt, updatedAt, referenceNumber, projectName, status, quantity)
// @Param sortOrder query string false "Sort order" Enums(asc, desc) default(desc)
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Router /rfqs [get]
func (h *RFQHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	page, pageSize := parsePagination(r)

	filters := repository.RFQFilters{
		Search: r.URL.Query().Get("search"),
	}
	if s := r.URL.Query().Get("status"); s != "" {
		status := domain.RFQStatus(s)
		filters.Status = &status
	}
	if src := r.URL.Query().Get("source"); src != "" {
		source := domain.RFQSource(src)
		filters.Source = &source
	}

	rfqs, total, err := h.rfqService.List(r.Context(), user, page, pageSize, filters, parseSort(r))
	if err != nil {
		h.logger.Error("failed to list rfqs", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	dtos := make([]domain.RFQDTO, len(rfqs))
	for i := range rfqs {
		dtos[i] = mapper.ToRFQDTO(&rfqs[i])
	}
	respondJSON(w, http.StatusOK, paginatedResponse(dtos, total, page, pageSize))
}

// @Summary Submit RFQ
// @Description Submits a new request for quote as the calling customer.
// @Tags RFQs
// @Accept json
// @Produce json
// @Param request body domain.CreateRFQRequest true "RFQ data"
// @Success 201 {object} domain.RFQDTO
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /rfqs [post]
func (h *RFQHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())

	var req domain.CreateRFQRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	rfq, err := h.rfqService.Create(r.Context(), user, &req)
	if err != nil {
		h.logger.Error("failed to create rfq", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/rfqs/"+rfq.ID.String())
	respondJSON(w, http.StatusCreated, mapper.ToRFQDTO(rfq))
}

// @Summary Create RFQ on behalf of a customer
// @Description Registers an RFQ for a customer. Admin-origin RFQs can later be dispatched to suppliers.
// @Tags RFQs
// @Accept json
// @Produce json
// @Param request body domain.CreateRFQForCustomerRequest true "RFQ data with customer"
// @Success 201 {object} domain.RFQDTO
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /rfqs/admin [post]
func (h *RFQHandler) CreateForCustomer(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())

	var req domain.CreateRFQForCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid customer ID: must be a valid UUID")
		return
	}

	rfq, err := h.rfqService.CreateForCustomer(r.Context(), user, customerID, req.CustomerName, &req.CreateRFQRequest)
	if err != nil {
		h.logger.Error("failed to create rfq for customer", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/rfqs/"+rfq.ID.String())
	respondJSON(w, http.StatusCreated, mapper.ToRFQDTO(rfq))
}

// @Summary Get RFQ
// @Tags RFQs
// @Produce json
// @Param id path string true "RFQ ID"
// @Success 200 {object} domain.RFQDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /rfqs/{id} [get]
func (h *RFQHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid RFQ ID: must be a valid UUID")
		return
	}

	rfq, err := h.rfqService.Get(r.Context(), user, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToRFQDTO(rfq))
}

// @Summary Update RFQ
// @Description Edits an RFQ while it is still in the submitted state.
// @Tags RFQs
// @Accept json
// @Produce json
// @Param id path string true "RFQ ID"
// @Param request body domain.UpdateRFQRequest true "Fields to update"
// @Success 200 {object} domain.RFQDTO
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /rfqs/{id} [patch]
func (h *RFQHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid RFQ ID: must be a valid UUID")
		return
	}

	var req domain.UpdateRFQRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	rfq, err := h.rfqService.Update(r.Context(), user, id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToRFQDTO(rfq))
}

// @Summary Quote RFQ
// @Description Sends a sales quote to the customer. Re-quoting replaces the existing quote.
// @Tags RFQs
// @Accept json
// @Produce json
// @Param id path string true "RFQ ID"
// @Param request body domain.CreateSalesQuoteRequest true "Quote data"
// @Success 201 {object} domain.SalesQuoteDTO
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /rfqs/{id}/quote [post]
func (h *RFQHandler) CreateSalesQuote(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid RFQ ID: must be a valid UUID")
		return
	}

	var req domain.CreateSalesQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.rfqService.CreateSalesQuote(r.Context(), user, id, &req)
	if err != nil {
		h.logger.Error("failed to create sales quote", zap.Error(err), zap.String("rfq_id", id.String()))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, mapper.ToSalesQuoteDTO(quote))
}

// @Summary Decide on a quoted RFQ
// @Description Accepts or declines the sales quote. Accepting creates the order.
// @Tags RFQs
// @Accept json
// @Produce json
// @Param id path string true "RFQ ID"
// @Param request body domain.RFQDecisionRequest true "Decision"
// @Success 200 {object} domain.RFQDecisionResponse
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /rfqs/{id}/decision [post]
func (h *RFQHandler) Decide(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid RFQ ID: must be a valid UUID")
		return
	}

	var req domain.RFQDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	rfq, order, err := h.rfqService.Decide(r.Context(), user, id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	resp := domain.RFQDecisionResponse{RFQ: mapper.ToRFQDTO(rfq)}
	if order != nil {
		dto := mapper.ToOrderDTO(order)
		resp.Order = &dto
	}
	respondJSON(w, http.StatusOK, resp)
}

// @Summary Dispatch RFQ to suppliers
// @Description Forwards an admin-origin RFQ to the selected suppliers for bidding.
// @Tags RFQs
// @Accept json
// @Produce json
// @Param id path string true "RFQ ID"
// @Param request body domain.DispatchRFQRequest true "Supplier selection"
// @Success 200 {object} domain.RFQDTO
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /rfqs/{id}/dispatch [post]
func (h *RFQHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid RFQ ID: must be a valid UUID")
		return
	}

	var req domain.DispatchRFQRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	rfq, err := h.rfqService.Dispatch(r.Context(), user, id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToRFQDTO(rfq))
}

// @Summary Submit supplier quote
// @Description Places the calling supplier's bid on a dispatched RFQ.
// @Tags Supplier Quotes
// @Accept json
// @Produce json
// @Param id path string true "RFQ ID"
// @Param request body domain.CreateSupplierQuoteRequest true "Bid data"
// @Success 201 {object} domain.SupplierQuoteDTO
// @Failure 409 {object} domain.ErrorResponse "Supplier already has a pending bid"
// @Security BearerAuth
// @Router /rfqs/{id}/supplier-quotes [post]
func (h *RFQHandler) SubmitSupplierQuote(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid RFQ ID: must be a valid UUID")
		return
	}

	var req domain.CreateSupplierQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.quoteService.Submit(r.Context(), user, id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, mapper.ToSupplierQuoteDTO(quote, false))
}

// @Summary List supplier quotes on an RFQ
// @Tags Supplier Quotes
// @Produce json
// @Param id path string true "RFQ ID"
// @Success 200 {array} domain.SupplierQuoteDTO
// @Security BearerAuth
// @Router /rfqs/{id}/supplier-quotes [get]
func (h *RFQHandler) ListSupplierQuotes(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid RFQ ID: must be a valid UUID")
		return
	}

	quotes, err := h.quoteService.ListByRFQ(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to list supplier quotes", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	dtos := make([]domain.SupplierQuoteDTO, len(quotes))
	for i := range quotes {
		hasPO, _ := h.quoteService.HasPurchaseOrder(r.Context(), quotes[i].ID)
		dtos[i] = mapper.ToSupplierQuoteDTO(&quotes[i], hasPO)
	}
	respondJSON(w, http.StatusOK, dtos)
}

// @Summary Compare supplier quotes
// @Description Groups an RFQ's bids by company, cheapest representative first.
// @Tags Supplier Quotes
// @Produce json
// @Param id path string true "RFQ ID"
// @Success 200 {array} domain.QuoteGroupDTO
// @Security BearerAuth
// @Router /rfqs/{id}/supplier-quotes/compare [get]
func (h *RFQHandler) CompareSupplierQuotes(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid RFQ ID: must be a valid UUID")
		return
	}

	groups, err := h.quoteService.CompareByRFQ(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to compare supplier quotes", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	dtos := make([]domain.QuoteGroupDTO, len(groups))
	for i := range groups {
		dtos[i] = mapper.ToQuoteGroupDTO(groups[i])
	}
	respondJSON(w, http.StatusOK, dtos)
}

// @Summary RFQ pipeline counts
// @Description Per-status RFQ counts for the admin dashboard.
// @Tags RFQs
// @Produce json
// @Success 200 {object} map[string]int64
// @Security BearerAuth
// @Router /rfqs/pipeline [get]
func (h *RFQHandler) Pipeline(w http.ResponseWriter, r *http.Request) {
	counts, err := h.rfqService.Pipeline(r.Context())
	if err != nil {
		h.logger.Error("failed to load rfq pipeline", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, counts)
}
