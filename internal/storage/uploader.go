package storage

import (
	"context"
	"fmt"

	"chatwave/internal/async"
	"chatwave/internal/domain/content"
	"chatwave/internal/events"
	"chatwave/internal/repository"
	"chatwave/pkg/logger"
	"chatwave/pkg/retry"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const uploadTaskName = "binary_content_upload"

// ObjectStore is the blob backend the uploader writes through.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) error
}

// failureRecorder captures an upload that exhausted its retries.
type failureRecorder interface {
	Capture(ctx context.Context, taskName, reason string)
}

// Uploader pushes objects to storage on the upload pool. Each task retries
// with backoff; success and failure both land as a status transition plus a
// status event, and exhaustion additionally produces one failure record.
type Uploader struct {
	store    ObjectStore
	contents repository.BinaryContentRepository
	pool     *async.Pool
	policy   retry.Policy
	failures failureRecorder
	bus      *events.Bus
	log      *logger.Logger
}

func NewUploader(store ObjectStore, contents repository.BinaryContentRepository, pool *async.Pool, failures failureRecorder, bus *events.Bus, log *logger.Logger) *Uploader {
	return &Uploader{
		store:    store,
		contents: contents,
		pool:     pool,
		policy:   retry.DefaultPolicy(),
		failures: failures,
		bus:      bus,
		log:      log,
	}
}

// PutAsync schedules the upload and returns immediately. The ambient request
// identity travels with the task, so an eventual failure record carries the
// originating request id and actor.
func (u *Uploader) PutAsync(ctx context.Context, meta content.BinaryContent, data []byte) {
	u.pool.Submit(ctx, func(taskCtx context.Context) {
		err := u.policy.DoWithState(taskCtx, func(attemptCtx context.Context) error {
			return u.store.Put(attemptCtx, ObjectKey(meta.ID), meta.ContentType, data)
		}, func(state retry.State, attempt int) {
			if state == retry.StateRetrying {
				u.log.WithContext(taskCtx).Warn("upload attempt failed, retrying",
					zap.String("content_id", meta.ID.String()),
					zap.Int("attempt", attempt),
				)
			}
		})
		if err != nil {
			u.log.WithContext(taskCtx).Error("upload exhausted retries",
				zap.String("content_id", meta.ID.String()),
				zap.Error(err),
			)
			u.setStatus(taskCtx, meta.ID, content.StatusFailed)
			u.failures.Capture(taskCtx, uploadTaskName, err.Error())
			return
		}
		u.setStatus(taskCtx, meta.ID, content.StatusSuccess)
	})
}

func (u *Uploader) setStatus(ctx context.Context, contentID uuid.UUID, status content.UploadStatus) {
	if err := u.contents.UpdateStatus(ctx, contentID, status); err != nil {
		u.log.WithContext(ctx).Error("failed to update upload status",
			zap.String("content_id", contentID.String()),
			zap.Error(err),
		)
	}
	u.bus.Publish(ctx, events.NewBinaryContentStatusUpdatedEvent(contentID, status))
}

// ObjectKey is the storage key for a stored object.
func ObjectKey(contentID uuid.UUID) string {
	return fmt.Sprintf("binary-contents/%s", contentID)
}
