package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/partbridge/marketplace-api/internal/auth"
	"github.com/partbridge/marketplace-api/internal/domain"
	"github.com/partbridge/marketplace-api/internal/mapper"
	"github.com/partbridge/marketplace-api/internal/service"
	"go.uber.org/zap"
)

// SupplierHandler handles HTTP requests for the supplier directory
type SupplierHandler struct {
	supplierService *service.SupplierService
	logger          *zap.Logger
}

// NewSupplierHandler creates a new supplier handler instance
func NewSupplierHandler(supplierService *service.SupplierService, logger *zap.Logger) *SupplierHandler {
	return &SupplierHandler{
		supplierService: supplierService,
		logger:          logger,
	}
}

// List godoc
// @Summary List suppliers
// @Description Get the active supplier directory filtered by capability, certification, location and capacity criteria. Multi-value filters match any of the given values.
// @Tags Suppliers
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by name, company or description"
// @Param capabilities query string false "Comma-separated capability filter"
// @Param certifications query string false "Comma-separated certification filter"
// @Param industries query string false "Comma-separated industry filter"
// @Param countries query string false "Comma-separated country filter"
// @Param cities query string false "Comma-separated city filter"
// @Param minEmployees query int false "Minimum employee count"
// @Param maxEmployees query int false "Maximum employee count"
// @Param minYearEstablished query int false "Established in or after this year"
// @Param emergencyCapability query bool false "Offers emergency capacity"
// @Param internationalShipping query bool false "Ships internationally"
// @Param sortBy query string false "Sort field" Enums(createdAt, updatedAt, name, companyName, city, country, employeeCount, yearEstablished)
// @Param sortOrder query string false "Sort order" Enums(asc, desc) default(desc)
// @Success 200 {object} domain.PaginatedResponse{items=[]domain.SupplierDTO}
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /suppliers [get]
func (h *SupplierHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	criteria := parseSupplierCriteria(r)

	suppliers, total, err := h.supplierService.List(r.Context(), page, pageSize, criteria, parseSort(r))
	if err != nil {
		h.logger.Error("failed to list suppliers", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	dtos := make([]domain.SupplierDTO, len(suppliers))
	for i := range suppliers {
		dtos[i] = mapper.ToSupplierDTO(&suppliers[i])
	}
	respondJSON(w, http.StatusOK, paginatedResponse(dtos, total, page, pageSize))
}

// Create godoc
// @Summary Register supplier
// @Tags Suppliers
// @Accept json
// @Produce json
// @Param request body domain.CreateSupplierRequest true "Supplier profile"
// @Success 201 {object} domain.SupplierDTO
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /suppliers [post]
func (h *SupplierHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateSupplierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	supplier, err := h.supplierService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create supplier", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/suppliers/"+supplier.ID.String())
	respondJSON(w, http.StatusCreated, mapper.ToSupplierDTO(supplier))
}

// GetByID godoc
// @Summary Get supplier
// @Tags Suppliers
// @Produce json
// @Param id path string true "Supplier ID"
// @Success 200 {object} domain.SupplierDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /suppliers/{id} [get]
func (h *SupplierHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid supplier ID: must be a valid UUID")
		return
	}

	supplier, err := h.supplierService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToSupplierDTO(supplier))
}

// GetOwn godoc
// @Summary Get own supplier profile
// @Tags Suppliers
// @Produce json
// @Success 200 {object} domain.SupplierDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /suppliers/me [get]
func (h *SupplierHandler) GetOwn(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())

	supplier, err := h.supplierService.GetOwn(r.Context(), user)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToSupplierDTO(supplier))
}

// Update godoc
// @Summary Update supplier profile
// @Description Edits a supplier profile. Suppliers may only edit their own.
// @Tags Suppliers
// @Accept json
// @Produce json
// @Param id path string true "Supplier ID"
// @Param request body domain.UpdateSupplierRequest true "Fields to update"
// @Success 200 {object} domain.SupplierDTO
// @Failure 403 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /suppliers/{id} [patch]
func (h *SupplierHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid supplier ID: must be a valid UUID")
		return
	}

	var req domain.UpdateSupplierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	supplier, err := h.supplierService.Update(r.Context(), user, id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToSupplierDTO(supplier))
}

// Deactivate godoc
// @Summary Deactivate supplier
// @Description Removes a supplier from the active directory. Existing quotes and purchase orders are unaffected.
// @Tags Suppliers
// @Param id path string true "Supplier ID"
// @Success 204
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /suppliers/{id} [delete]
func (h *SupplierHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid supplier ID: must be a valid UUID")
		return
	}

	if err := h.supplierService.Deactivate(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stats godoc
// @Summary Supplier performance stats
// @Description Quote counts, win rate and open purchase orders for a supplier.
// @Tags Suppliers
// @Produce json
// @Param id path string true "Supplier ID"
// @Success 200 {object} domain.SupplierStatsDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /suppliers/{id}/stats [get]
func (h *SupplierHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid supplier ID: must be a valid UUID")
		return
	}

	stats, err := h.supplierService.Stats(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// parseSupplierCriteria reads the directory filter query parameters
func parseSupplierCriteria(r *http.Request) domain.SupplierCriteria {
	q := r.URL.Query()
	criteria := domain.SupplierCriteria{
		Search:         q.Get("search"),
		Capabilities:   splitCSV(q.Get("capabilities")),
		Certifications: splitCSV(q.Get("certifications")),
		Industries:     splitCSV(q.Get("industries")),
		Countries:      splitCSV(q.Get("countries")),
		Cities:         splitCSV(q.Get("cities")),
	}
	if v := q.Get("minEmployees"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			criteria.MinEmployees = &n
		}
	}
	if v := q.Get("maxEmployees"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			criteria.MaxEmployees = &n
		}
	}
	if v := q.Get("minYearEstablished"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			criteria.MinYearEstablished = &n
		}
	}
	if v := q.Get("emergencyCapability"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			criteria.EmergencyCapability = &b
		}
	}
	if v := q.Get("internationalShipping"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			criteria.InternationalShipping = &b
		}
	}
	return criteria
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
