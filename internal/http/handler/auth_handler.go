package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/partbridge/marketplace-api/internal/auth"
	"github.com/partbridge/marketplace-api/internal/domain"
	"github.com/partbridge/marketplace-api/internal/mapper"
	"github.com/partbridge/marketplace-api/internal/service"
	"go.uber.org/zap"
)

type AuthHandler struct {
	userService *service.UserService
	logger      *zap.Logger
}

func NewAuthHandler(userService *service.UserService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		logger:      logger,
	}
}

// Me godoc
// @Summary Get current authenticated user
// @Description Returns the calling user, provisioning the local record on first sight.
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.UserDTO
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.userService.EnsureUser(r.Context(), userCtx)
	if err != nil {
		h.logger.Error("failed to resolve user", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToUserDTO(user))
}

// ListUsers godoc
// @Summary List users
// @Description Returns users, optionally filtered by role. Admin only.
// @Tags Users
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param role query string false "Filter by role" Enums(admin, customer, supplier)
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Router /users [get]
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	var role *domain.UserRole
	if v := r.URL.Query().Get("role"); v != "" {
		parsed := domain.UserRole(v)
		role = &parsed
	}

	users, total, err := h.userService.List(r.Context(), page, pageSize, role)
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	dtos := make([]domain.UserDTO, len(users))
	for i := range users {
		dtos[i] = mapper.ToUserDTO(&users[i])
	}
	respondJSON(w, http.StatusOK, paginatedResponse(dtos, total, page, pageSize))
}

// SetUserActive godoc
// @Summary Enable or disable a user
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Param active query bool true "New active state"
// @Success 200 {object} domain.UserDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /users/{id}/active [post]
func (h *AuthHandler) SetUserActive(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid user ID: must be a valid UUID")
		return
	}

	active, err := strconv.ParseBool(r.URL.Query().Get("active"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid active parameter: must be true or false")
		return
	}

	user, err := h.userService.SetActive(r.Context(), id, active)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToUserDTO(user))
}
