package repository

import (
	"context"

	"chatwave/internal/domain/channel"
	"chatwave/internal/domain/chatuser"
	"chatwave/internal/domain/content"
	"chatwave/internal/domain/notification"
	"chatwave/internal/domain/taskfailure"

	"github.com/google/uuid"
)

type NotificationRepository interface {
	Create(ctx context.Context, tx DBTX, n *notification.Notification) error
	CreateAll(ctx context.Context, tx DBTX, notifications []notification.Notification) error
	FindAllByReceiverID(ctx context.Context, receiverID uuid.UUID) ([]notification.Notification, error)
	DeleteByIDAndReceiverID(ctx context.Context, notificationID, receiverID uuid.UUID) (int64, error)
}

type TaskFailureRepository interface {
	Create(ctx context.Context, f *taskfailure.AsyncTaskFailure) error
	FindAll(ctx context.Context, limit int) ([]taskfailure.AsyncTaskFailure, error)
}

type ReadStatusRepository interface {
	FindNotifiableUserIDsByChannel(ctx context.Context, channelID uuid.UUID) ([]uuid.UUID, error)
	IsMember(ctx context.Context, userID, channelID uuid.UUID) (bool, error)
}

type BinaryContentRepository interface {
	Create(ctx context.Context, c *content.BinaryContent) error
	GetByID(ctx context.Context, id uuid.UUID) (content.BinaryContent, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status content.UploadStatus) error
}

type ChannelRepository interface {
	Create(ctx context.Context, tx DBTX, ch *channel.Channel) error
	GetByID(ctx context.Context, id uuid.UUID) (channel.Channel, error)
}

type MessageRepository interface {
	Create(ctx context.Context, tx DBTX, m *channel.Message) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (chatuser.User, error)
	UpdateRole(ctx context.Context, tx DBTX, userID uuid.UUID, role chatuser.Role) error
}
