package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/partbridge/marketplace-api/internal/auth"
	"github.com/partbridge/marketplace-api/internal/domain"
	"github.com/partbridge/marketplace-api/internal/mapper"
	"github.com/partbridge/marketplace-api/internal/service"
	"go.uber.org/zap"
)

type FileHandler struct {
	fileService *service.FileService
	logger      *zap.Logger
}

func NewFileHandler(fileService *service.FileService, logger *zap.Logger) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		logger:      logger,
	}
}

// @Summary Upload file
// @Description Uploads a drawing, quote document or invoice. Maximum size 50MB.
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Success 201 {object} domain.FileDTO
// @Failure 413 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /files/upload [post]
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, service.MaxUploadSize)

	if err := r.ParseMultipartForm(service.MaxUploadSize); err != nil {
		respondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large: maximum size is %dMB", service.MaxUploadSize>>20))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid file upload: file field is required")
		return
	}
	defer file.Close()

	uploaded, err := h.fileService.Upload(r.Context(), user, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.logger.Error("failed to upload file", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, mapper.ToFileDTO(uploaded))
}

// @Summary Get file metadata
// @Tags Files
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} domain.FileDTO
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /files/{id} [get]
func (h *FileHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid file ID: must be a valid UUID")
		return
	}

	file, err := h.fileService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mapper.ToFileDTO(file))
}

// @Summary Download file
// @Tags Files
// @Produce octet-stream
// @Param id path string true "File ID"
// @Success 200 {file} binary
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /files/{id}/download [get]
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid file ID: must be a valid UUID")
		return
	}

	reader, filename, contentType, err := h.fileService.Download(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	defer reader.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Warn("failed to stream file", zap.Error(err), zap.String("file_id", id.String()))
	}
}

// @Summary Delete file
// @Description Removes a file. Only the uploader or an admin may delete.
// @Tags Files
// @Param id path string true "File ID"
// @Success 204
// @Failure 403 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /files/{id} [delete]
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid file ID: must be a valid UUID")
		return
	}

	if err := h.fileService.Delete(r.Context(), user, id); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary List own uploads
// @Tags Files
// @Produce json
// @Success 200 {array} domain.FileDTO
// @Security BearerAuth
// @Router /files [get]
func (h *FileHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user := auth.MustFromContext(r.Context())

	files, err := h.fileService.ListMine(r.Context(), user)
	if err != nil {
		h.logger.Error("failed to list files", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	dtos := make([]domain.FileDTO, len(files))
	for i := range files {
		dtos[i] = mapper.ToFileDTO(&files[i])
	}
	respondJSON(w, http.StatusOK, dtos)
}
