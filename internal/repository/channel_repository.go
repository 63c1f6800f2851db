package repository

import (
	"context"
	"database/sql"
	"errors"

	"chatwave/internal/domain/channel"
	chatwave_errors "chatwave/pkg/errors"

	"github.com/google/uuid"
)

type channelRepository struct {
	db DBTX
}

func NewChannelRepository(db DBTX) ChannelRepository {
	return &channelRepository{db: db}
}

func (r *channelRepository) Create(ctx context.Context, tx DBTX, ch *channel.Channel) error {
	execDB := tx
	if execDB == nil {
		execDB = r.db
	}
	_, err := execDB.ExecContext(ctx, `
        INSERT INTO channels (id, created_at, name, type)
        VALUES ($1,$2,$3,$4)
    `, ch.ID, ch.CreatedAt, ch.Name, ch.Type)
	if err != nil {
		if isUniqueViolation(err) {
			return chatwave_errors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *channelRepository) GetByID(ctx context.Context, id uuid.UUID) (channel.Channel, error) {
	var ch channel.Channel
	err := r.db.QueryRowContext(ctx, `
        SELECT id, created_at, name, type
        FROM channels
        WHERE id = $1
    `, id).Scan(&ch.ID, &ch.CreatedAt, &ch.Name, &ch.Type)
	if errors.Is(err, sql.ErrNoRows) {
		return channel.Channel{}, chatwave_errors.ErrNotFound
	}
	if err != nil {
		return channel.Channel{}, err
	}
	return ch, nil
}
