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

// NotificationHandler handles HTTP requests for the notification feed
type NotificationHandler struct {
	notificationService *service.NotificationService
	logger              *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler instance
func NewNotificationHandler(notificationService *service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		logger:              logger,
	}
}

// @Summary List notifications
// @Tags Notifications
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param unreadOnly query bool false "Only unread notifications" default(false)
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Router /notifications [get]
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	page, pageSize := parsePagination(r)
	unreadOnly, _ := strconv.ParseBool(r.URL.Query().Get("unreadOnly"))

	notifications, total, err := h.notificationService.List(r.Context(), user, page, pageSize, unreadOnly)
	if err != nil {
		h.logger.Error("failed to list notifications", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	dtos := make([]domain.NotificationDTO, len(notifications))
	for i := range notifications {
		dtos[i] = mapper.ToNotificationDTO(&notifications[i])
	}
	respondJSON(w, http.StatusOK, paginatedResponse(dtos, total, page, pageSize))
}

// @Summary Mark notification read
// @Tags Notifications
// @Param id path string true "Notification ID"
// @Success 204
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid notification ID: must be a valid UUID")
		return
	}

	if err := h.notificationService.MarkRead(r.Context(), user, id); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary Mark all notifications read
// @Tags Notifications
// @Success 204
// @Security BearerAuth
// @Router /notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())

	if err := h.notificationService.MarkAllRead(r.Context(), user); err != nil {
		h.logger.Error("failed to mark notifications read", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary Unread notification count
// @Tags Notifications
// @Produce json
// @Success 200 {object} map[string]int64
// @Security BearerAuth
// @Router /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())

	count, err := h.notificationService.UnreadCount(r.Context(), user)
	if err != nil {
		h.logger.Error("failed to count unread notifications", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"count": count})
}
