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

type MessageHandler struct {
	messageService *service.MessageService
	logger         *zap.Logger
}

func NewMessageHandler(messageService *service.MessageService, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{messageService: messageService, logger: logger}
}

// @Summary Send message
// @Description Posts a message. Omitting threadId starts a new conversation.
// @Tags Messages
// @Accept json
// @Produce json
// @Param request body domain.SendMessageRequest true "Message"
// @Success 201 {object} domain.MessageDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /messages [post]
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())

	var req domain.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	message, err := h.messageService.Send(r.Context(), user, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, mapper.ToMessageDTO(message))
}

// @Summary List conversations
// @Description Summarizes the caller's threads, most recently active first.
// @Tags Messages
// @Produce json
// @Success 200 {array} domain.ThreadSummaryDTO
// @Security BearerAuth
// @Router /messages/threads [get]
func (h *MessageHandler) Threads(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())

	threads, err := h.messageService.Threads(r.Context(), user)
	if err != nil {
		h.logger.Error("failed to list threads", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, threads)
}

// @Summary Read a conversation
// @Description Returns a thread's messages oldest first and marks the caller's unread ones read.
// @Tags Messages
// @Produce json
// @Param threadId path string true "Thread ID"
// @Success 200 {array} domain.MessageDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /messages/threads/{threadId} [get]
func (h *MessageHandler) Thread(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	threadID, err := uuid.Parse(chi.URLParam(r, "threadId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid thread ID: must be a valid UUID")
		return
	}

	messages, err := h.messageService.Thread(r.Context(), user, threadID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	dtos := make([]domain.MessageDTO, len(messages))
	for i := range messages {
		dtos[i] = mapper.ToMessageDTO(&messages[i])
	}
	respondJSON(w, http.StatusOK, dtos)
}

// @Summary Unread message count
// @Tags Messages
// @Produce json
// @Success 200 {object} map[string]int64
// @Security BearerAuth
// @Router /messages/unread-count [get]
func (h *MessageHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())

	count, err := h.messageService.UnreadTotal(r.Context(), user)
	if err != nil {
		h.logger.Error("failed to count unread messages", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"count": count})
}
