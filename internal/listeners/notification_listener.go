package listeners

import (
	"context"
	"encoding/json"
	"fmt"

	"chatwave/internal/domain/channel"
	"chatwave/internal/domain/notification"
	"chatwave/internal/events"
	"chatwave/internal/relay"
	"chatwave/internal/repository"
	"chatwave/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationWriter is the persistence surface fan-out writes through.
type NotificationWriter interface {
	Create(ctx context.Context, receiverID uuid.UUID, title, content string, typ notification.Type, targetID *uuid.UUID) (notification.Notification, error)
	CreateAll(ctx context.Context, notifications []notification.Notification) error
}

// NotificationListener consumes relayed events and materializes per-receiver
// notification rows. Handlers tolerate redelivery: a redelivered message may
// produce duplicate notifications, never a wedged partition.
type NotificationListener struct {
	notifications NotificationWriter
	readStatuses  repository.ReadStatusRepository
	log           *logger.Logger
}

func NewNotificationListener(notifications NotificationWriter, readStatuses repository.ReadStatusRepository, log *logger.Logger) *NotificationListener {
	return &NotificationListener{notifications: notifications, readStatuses: readStatuses, log: log}
}

func (l *NotificationListener) Register(consumer *relay.Consumer) {
	consumer.Handle(events.EventNewMessage, l.onNewMessage)
	consumer.Handle(events.EventRoleChanged, l.onRoleChanged)
	consumer.Handle(events.EventAsyncTaskFailed, l.onTaskFailed)
}

func (l *NotificationListener) onNewMessage(ctx context.Context, payload []byte) error {
	var e events.NewMessageEvent
	if err := decodeEnvelope(payload, &e); err != nil {
		return err
	}
	m := e.Message

	receiverIDs, err := l.readStatuses.FindNotifiableUserIDsByChannel(ctx, m.ChannelID)
	if err != nil {
		return err
	}

	title := messageTitle(m)
	targetID := m.ChannelID
	notifications := make([]notification.Notification, 0, len(receiverIDs))
	for _, receiverID := range receiverIDs {
		if receiverID == m.AuthorID {
			continue
		}
		notifications = append(notifications, notification.New(receiverID, title, m.Content, notification.TypeNewMessage, &targetID))
	}
	if len(notifications) == 0 {
		return nil
	}
	return l.notifications.CreateAll(ctx, notifications)
}

func (l *NotificationListener) onRoleChanged(ctx context.Context, payload []byte) error {
	var e events.RoleChangedEvent
	if err := decodeEnvelope(payload, &e); err != nil {
		return err
	}

	content := fmt.Sprintf("Your role changed from %s to %s", e.PreviousRole, e.NewRole)
	_, err := l.notifications.Create(ctx, e.UserID, "Role changed", content, notification.TypeRoleChanged, nil)
	return err
}

func (l *NotificationListener) onTaskFailed(ctx context.Context, payload []byte) error {
	var e events.AsyncTaskFailedEvent
	if err := decodeEnvelope(payload, &e); err != nil {
		return err
	}
	if e.ActorID == nil {
		l.log.WithContext(ctx).Info("task failure has no actor, skipping notification",
			zap.String("task_name", e.Failure.TaskName),
			zap.String("request_id", e.Failure.RequestID),
		)
		return nil
	}

	title := fmt.Sprintf("Task failed: %s", e.Failure.TaskName)
	_, err := l.notifications.Create(ctx, *e.ActorID, title, e.Failure.FailureReason, notification.TypeAsyncFailed, nil)
	return err
}

// messageTitle names the sender, qualified by the channel when it is public.
func messageTitle(m events.MessageView) string {
	if m.ChannelType == channel.TypePublic {
		return fmt.Sprintf("%s (# %s)", m.AuthorName, m.ChannelName)
	}
	return m.AuthorName
}

func decodeEnvelope(payload []byte, dest interface{}) error {
	var envelope relay.Envelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return fmt.Errorf("malformed relay envelope: %w", err)
	}
	if err := json.Unmarshal(envelope.Payload, dest); err != nil {
		return fmt.Errorf("malformed relay payload for %s: %w", envelope.EventType, err)
	}
	return nil
}
