package repository

import (
	"context"
	"database/sql"
	"errors"

	"chatwave/internal/domain/chatuser"
	chatwave_errors "chatwave/pkg/errors"

	"github.com/google/uuid"
)

type userRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (chatuser.User, error) {
	var u chatuser.User
	err := r.db.QueryRowContext(ctx, `
        SELECT id, created_at, username, email, role
        FROM users
        WHERE id = $1
    `, id).Scan(&u.ID, &u.CreatedAt, &u.Username, &u.Email, &u.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return chatuser.User{}, chatwave_errors.ErrNotFound
		}
		return chatuser.User{}, err
	}
	return u, nil
}

func (r *userRepository) UpdateRole(ctx context.Context, tx DBTX, userID uuid.UUID, role chatuser.Role) error {
	execDB := tx
	if execDB == nil {
		execDB = r.db
	}
	res, err := execDB.ExecContext(ctx, `
        UPDATE users
        SET role = $1
        WHERE id = $2
    `, role, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return chatwave_errors.ErrNotFound
	}
	return nil
}
