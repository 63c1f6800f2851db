package services

import (
	"context"
	"time"

	"chatwave/internal/domain/content"
	"chatwave/internal/repository"
	"chatwave/internal/storage"
	chatwave_errors "chatwave/pkg/errors"
	"chatwave/pkg/logger"

	"github.com/google/uuid"
)

// ContentService registers binary content and hands the bytes to the async
// uploader. The caller gets the WAITING record back immediately; the status
// transition arrives later as a push event.
type ContentService struct {
	contents repository.BinaryContentRepository
	uploader *storage.Uploader
	store    *storage.Client
	log      *logger.Logger
}

func NewContentService(contents repository.BinaryContentRepository, uploader *storage.Uploader, store *storage.Client, log *logger.Logger) *ContentService {
	return &ContentService{contents: contents, uploader: uploader, store: store, log: log}
}

func (s *ContentService) Upload(ctx context.Context, fileName, contentType string, data []byte) (content.BinaryContent, error) {
	if fileName == "" || len(data) == 0 {
		return content.BinaryContent{}, chatwave_errors.ErrInvalidInput
	}

	meta := content.BinaryContent{
		ID:           uuid.New(),
		CreatedAt:    time.Now(),
		FileName:     fileName,
		ContentType:  contentType,
		Size:         int64(len(data)),
		UploadStatus: content.StatusWaiting,
	}
	if err := s.contents.Create(ctx, &meta); err != nil {
		return content.BinaryContent{}, err
	}

	s.uploader.PutAsync(ctx, meta, data)
	return meta, nil
}

func (s *ContentService) GetByID(ctx context.Context, id uuid.UUID) (content.BinaryContent, error) {
	return s.contents.GetByID(ctx, id)
}

// DownloadURL returns a presigned URL for a successfully uploaded object.
func (s *ContentService) DownloadURL(ctx context.Context, id uuid.UUID) (string, error) {
	meta, err := s.contents.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if meta.UploadStatus != content.StatusSuccess {
		return "", chatwave_errors.ErrNotFound
	}
	return s.store.PresignGet(ctx, storage.ObjectKey(meta.ID))
}
