package repository

import (
	"context"

	"chatwave/internal/domain/channel"
	chatwave_errors "chatwave/pkg/errors"
)

type messageRepository struct {
	db DBTX
}

func NewMessageRepository(db DBTX) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, tx DBTX, m *channel.Message) error {
	execDB := tx
	if execDB == nil {
		execDB = r.db
	}
	_, err := execDB.ExecContext(ctx, `
        INSERT INTO messages (id, created_at, channel_id, author_id, content)
        VALUES ($1,$2,$3,$4,$5)
    `,
		m.ID,
		m.CreatedAt,
		m.ChannelID,
		m.AuthorID,
		m.Content,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return chatwave_errors.ErrAlreadyExists
		}
		return err
	}
	return nil
}
