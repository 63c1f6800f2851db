package services

import (
	"context"
	"database/sql"

	"chatwave/internal/auth"
	"chatwave/internal/domain/notification"
	"chatwave/internal/events"
	"chatwave/internal/redis"
	"chatwave/internal/repository"
	chatwave_errors "chatwave/pkg/errors"
	"chatwave/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ListCache is the per-user view cache fan-out invalidates.
type ListCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, val interface{}) error
	Delete(ctx context.Context, keys ...string) error
}

// NotificationService persists fan-out records and hands list/delete access
// to recipients. Reads and deletes are owner-scoped: the caller's principal
// must match the receiver.
type NotificationService struct {
	db    *sql.DB
	repo  repository.NotificationRepository
	bus   *events.Bus
	cache ListCache
	log   *logger.Logger
}

func NewNotificationService(db *sql.DB, repo repository.NotificationRepository, bus *events.Bus, cache ListCache, log *logger.Logger) *NotificationService {
	return &NotificationService{db: db, repo: repo, bus: bus, cache: cache, log: log}
}

func (s *NotificationService) Create(ctx context.Context, receiverID uuid.UUID, title, content string, typ notification.Type, targetID *uuid.UUID) (notification.Notification, error) {
	n := notification.New(receiverID, title, content, typ, targetID)

	uowCtx, uow := s.bus.Begin(ctx)
	err := repository.WithTx(uowCtx, s.db, func(tx repository.DBTX) error {
		if err := s.repo.Create(uowCtx, tx, &n); err != nil {
			return err
		}
		s.bus.PublishAfterCommit(uowCtx, events.NewNotificationCreatedEvent(n))
		return nil
	})
	if err != nil {
		uow.Rollback()
		return notification.Notification{}, err
	}
	uow.Commit()

	s.evict(ctx, receiverID)
	return n, nil
}

// CreateAll persists the batch in one transaction and announces it as a
// single event, so push delivery stays one frame per recipient set.
func (s *NotificationService) CreateAll(ctx context.Context, notifications []notification.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	uowCtx, uow := s.bus.Begin(ctx)
	err := repository.WithTx(uowCtx, s.db, func(tx repository.DBTX) error {
		if err := s.repo.CreateAll(uowCtx, tx, notifications); err != nil {
			return err
		}
		s.bus.PublishAfterCommit(uowCtx, events.NewMultipleNotificationCreatedEvent(notifications))
		return nil
	})
	if err != nil {
		uow.Rollback()
		return err
	}
	uow.Commit()

	seen := make(map[uuid.UUID]struct{}, len(notifications))
	for _, n := range notifications {
		if _, ok := seen[n.ReceiverID]; ok {
			continue
		}
		seen[n.ReceiverID] = struct{}{}
		s.evict(ctx, n.ReceiverID)
	}
	return nil
}

func (s *NotificationService) FindAllByReceiver(ctx context.Context, receiverID uuid.UUID) ([]notification.Notification, error) {
	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return nil, chatwave_errors.ErrUnauthorized
	}
	if principal.UserID != receiverID {
		return nil, chatwave_errors.ErrForbidden
	}

	key := redis.NotificationsKey(receiverID)
	var cached []notification.Notification
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.WithContext(ctx).Warn("notification cache read failed", zap.Error(err))
	}
	if hit {
		return cached, nil
	}

	notifications, err := s.repo.FindAllByReceiverID(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, notifications); err != nil {
		s.log.WithContext(ctx).Warn("notification cache write failed", zap.Error(err))
	}
	return notifications, nil
}

// Delete removes one notification owned by the caller. A row that does not
// exist and a row owned by someone else are both reported as not found.
func (s *NotificationService) Delete(ctx context.Context, notificationID uuid.UUID) error {
	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return chatwave_errors.ErrUnauthorized
	}

	affected, err := s.repo.DeleteByIDAndReceiverID(ctx, notificationID, principal.UserID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return chatwave_errors.ErrNotFound
	}

	s.evict(ctx, principal.UserID)
	return nil
}

func (s *NotificationService) evict(ctx context.Context, receiverID uuid.UUID) {
	if err := s.cache.Delete(ctx, redis.NotificationsKey(receiverID)); err != nil {
		s.log.WithContext(ctx).Warn("notification cache evict failed",
			zap.String("receiver_id", receiverID.String()),
			zap.Error(err),
		)
	}
}
