package repository

import (
	"context"

	"github.com/google/uuid"
)

type readStatusRepository struct {
	db DBTX
}

func NewReadStatusRepository(db DBTX) ReadStatusRepository {
	return &readStatusRepository{db: db}
}

func (r *readStatusRepository) FindNotifiableUserIDsByChannel(ctx context.Context, channelID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT user_id
        FROM read_statuses
        WHERE channel_id = $1 AND notification_enabled = TRUE
    `, channelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var userIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		userIDs = append(userIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return userIDs, nil
}

func (r *readStatusRepository) IsMember(ctx context.Context, userID, channelID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM read_statuses
            WHERE user_id = $1 AND channel_id = $2
        )
    `, userID, channelID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
