package services

import (
	"context"
	"database/sql"

	"chatwave/internal/auth"
	"chatwave/internal/domain/chatuser"
	"chatwave/internal/events"
	"chatwave/internal/repository"
	chatwave_errors "chatwave/pkg/errors"
	"chatwave/pkg/logger"

	"github.com/google/uuid"
)

// UserService drives the role mutation. Only an admin may change roles; the
// change is announced after commit so downstream views refresh against
// committed state.
type UserService struct {
	db    *sql.DB
	users repository.UserRepository
	bus   *events.Bus
	log   *logger.Logger
}

func NewUserService(db *sql.DB, users repository.UserRepository, bus *events.Bus, log *logger.Logger) *UserService {
	return &UserService{db: db, users: users, bus: bus, log: log}
}

func (s *UserService) ChangeRole(ctx context.Context, userID uuid.UUID, newRole chatuser.Role) (chatuser.User, error) {
	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return chatuser.User{}, chatwave_errors.ErrUnauthorized
	}
	if principal.Role != chatuser.RoleAdmin {
		return chatuser.User{}, chatwave_errors.ErrForbidden
	}

	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return chatuser.User{}, err
	}
	previous := target.Role

	uowCtx, uow := s.bus.Begin(ctx)
	err = repository.WithTx(uowCtx, s.db, func(tx repository.DBTX) error {
		if err := s.users.UpdateRole(uowCtx, tx, userID, newRole); err != nil {
			return err
		}
		s.bus.PublishAfterCommit(uowCtx, events.NewRoleChangedEvent(userID, previous, newRole))
		s.bus.PublishAfterCommit(uowCtx, events.NewUserMutationEvent(userID))
		return nil
	})
	if err != nil {
		uow.Rollback()
		return chatuser.User{}, err
	}
	uow.Commit()

	target.Role = newRole
	return target, nil
}

func (s *UserService) GetByID(ctx context.Context, userID uuid.UUID) (chatuser.User, error) {
	return s.users.GetByID(ctx, userID)
}
