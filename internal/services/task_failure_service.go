package services

import (
	"context"

	"chatwave/internal/auth"
	"chatwave/internal/domain/taskfailure"
	"chatwave/internal/events"
	"chatwave/internal/repository"
	"chatwave/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskFailureService is the terminal recovery step for async work that
// exhausted its retries. It writes a durable failure record and publishes
// the failure event so the request owner can be notified. The record is
// written even when no actor is resolvable from the context.
type TaskFailureService struct {
	repo repository.TaskFailureRepository
	bus  *events.Bus
	log  *logger.Logger
}

func NewTaskFailureService(repo repository.TaskFailureRepository, bus *events.Bus, log *logger.Logger) *TaskFailureService {
	return &TaskFailureService{repo: repo, bus: bus, log: log}
}

// Capture records the failure and publishes it immediately; there is no
// surrounding transaction to gate on once a task has already failed.
func (s *TaskFailureService) Capture(ctx context.Context, taskName, reason string) {
	requestID, _ := ctx.Value(logger.RequestIdKey).(string)
	failure := taskfailure.New(taskName, requestID, reason)

	if err := s.repo.Create(ctx, &failure); err != nil {
		s.log.WithContext(ctx).Error("failed to persist async task failure",
			zap.String("task_name", taskName),
			zap.Error(err),
		)
	}

	var actorID *uuid.UUID
	if principal, ok := auth.PrincipalFromContext(ctx); ok {
		id := principal.UserID
		actorID = &id
	}

	s.bus.Publish(ctx, events.NewAsyncTaskFailedEvent(failure, actorID))
}

func (s *TaskFailureService) FindAll(ctx context.Context, limit int) ([]taskfailure.AsyncTaskFailure, error) {
	return s.repo.FindAll(ctx, limit)
}
