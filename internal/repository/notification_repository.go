package repository

import (
	"context"
	"fmt"
	"strings"

	"chatwave/internal/domain/notification"
	chatwave_errors "chatwave/pkg/errors"

	"github.com/google/uuid"
)

type notificationRepository struct {
	db DBTX
}

func NewNotificationRepository(db DBTX) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, tx DBTX, n *notification.Notification) error {
	execDB := tx
	if execDB == nil {
		execDB = r.db
	}
	_, err := execDB.ExecContext(ctx, `
        INSERT INTO notifications (id, created_at, receiver_id, title, content, type, target_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
    `,
		n.ID,
		n.CreatedAt,
		n.ReceiverID,
		n.Title,
		n.Content,
		n.Type,
		n.TargetID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return chatwave_errors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *notificationRepository) CreateAll(ctx context.Context, tx DBTX, notifications []notification.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	execDB := tx
	if execDB == nil {
		execDB = r.db
	}

	const cols = 7
	args := make([]interface{}, 0, len(notifications)*cols)
	values := make([]string, 0, len(notifications))
	for i, n := range notifications {
		values = append(values, "("+placeholders(i*cols+1, cols)+")")
		args = append(args, n.ID, n.CreatedAt, n.ReceiverID, n.Title, n.Content, n.Type, n.TargetID)
	}

	query := fmt.Sprintf(`
        INSERT INTO notifications (id, created_at, receiver_id, title, content, type, target_id)
        VALUES %s
    `, strings.Join(values, ","))

	_, err := execDB.ExecContext(ctx, query, args...)
	return err
}

func (r *notificationRepository) FindAllByReceiverID(ctx context.Context, receiverID uuid.UUID) ([]notification.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, created_at, receiver_id, title, content, type, target_id
        FROM notifications
        WHERE receiver_id = $1
        ORDER BY created_at DESC
    `, receiverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []notification.Notification
	for rows.Next() {
		var n notification.Notification
		if err := rows.Scan(
			&n.ID,
			&n.CreatedAt,
			&n.ReceiverID,
			&n.Title,
			&n.Content,
			&n.Type,
			&n.TargetID,
		); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notifications, nil
}

// DeleteByIDAndReceiverID deletes only the row owned by receiverID and
// reports how many rows were affected. Wrong owner and missing id are
// indistinguishable here; both come back as zero.
func (r *notificationRepository) DeleteByIDAndReceiverID(ctx context.Context, notificationID, receiverID uuid.UUID) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
        DELETE FROM notifications
        WHERE id = $1 AND receiver_id = $2
    `, notificationID, receiverID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
