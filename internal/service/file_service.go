package service

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
	"github.com/partbridge/marketplace-api/internal/auth"
	"github.com/partbridge/marketplace-api/internal/domain"
	"github.com/partbridge/marketplace-api/internal/repository"
	"github.com/partbridge/marketplace-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MaxUploadSize caps drawings, quotes and invoices at 50 MB
const MaxUploadSize = 50 << 20

// FileService stores uploaded documents and serves them back for
// download.
type FileService struct {
	fileRepo *repository.FileRepository
	storage  storage.Storage
	logger   *zap.Logger
}

func NewFileService(fileRepo *repository.FileRepository, storage storage.Storage, logger *zap.Logger) *FileService {
	return &FileService{fileRepo: fileRepo, storage: storage, logger: logger}
}

// Upload stores a document and records its metadata. The reader is
// capped at MaxUploadSize.
func (s *FileService) Upload(ctx context.Context, user *auth.UserContext, filename, contentType string, data io.Reader) (*domain.File, error) {
	limited := &limitedReader{r: data, remaining: MaxUploadSize}

	storagePath, size, err := s.storage.Upload(ctx, filename, contentType, limited)
	if err != nil {
		if errors.Is(err, errUploadTooLarge) {
			return nil, ErrFileTooLarge
		}
		return nil, err
	}

	file := &domain.File{
		Filename:     filename,
		ContentType:  contentType,
		Size:         size,
		StoragePath:  storagePath,
		UploadedByID: user.UserID,
	}
	if err := s.fileRepo.Create(ctx, file); err != nil {
		if delErr := s.storage.Delete(ctx, storagePath); delErr != nil {
			s.logger.Warn("failed to clean up blob after db error",
				zap.Error(delErr),
				zap.String("storage_path", storagePath),
			)
		}
		return nil, err
	}

	s.logger.Info("file uploaded",
		zap.String("file_id", file.ID.String()),
		zap.String("filename", filename),
		zap.Int64("size", size),
	)
	return file, nil
}

// Get returns a file's metadata
func (s *FileService) Get(ctx context.Context, id uuid.UUID) (*domain.File, error) {
	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return file, nil
}

// Download returns the file content together with its filename and
// content type
func (s *FileService) Download(ctx context.Context, id uuid.UUID) (io.ReadCloser, string, string, error) {
	file, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", "", err
	}
	reader, err := s.storage.Download(ctx, file.StoragePath)
	if err != nil {
		return nil, "", "", err
	}
	return reader, file.Filename, file.ContentType, nil
}

// Delete removes the file from storage and the database. Only the
// uploader or an admin may delete.
func (s *FileService) Delete(ctx context.Context, user *auth.UserContext, id uuid.UUID) error {
	file, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !user.IsAdmin() && file.UploadedByID != user.UserID {
		return ErrPermissionDenied
	}

	if err := s.storage.Delete(ctx, file.StoragePath); err != nil {
		s.logger.Warn("failed to delete blob",
			zap.Error(err),
			zap.String("storage_path", file.StoragePath),
		)
	}
	return s.fileRepo.Delete(ctx, id)
}

// ListMine returns the caller's uploads
func (s *FileService) ListMine(ctx context.Context, user *auth.UserContext) ([]domain.File, error) {
	return s.fileRepo.ListByUploader(ctx, user.UserID)
}

var errUploadTooLarge = errors.New("upload exceeds size limit")

// limitedReader fails once more than remaining bytes are read, so
// oversized uploads abort instead of truncating silently.
type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, errUploadTooLarge
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, errUploadTooLarge
	}
	return n, err
}
