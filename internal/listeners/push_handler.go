package listeners

import (
	"context"

	"chatwave/internal/auth"
	"chatwave/internal/events"
	"chatwave/internal/sse"
)

// Push event names on the client stream.
const (
	PushNotifications = "notifications"
	PushChannels      = "channels.refresh"
	PushUsers         = "users.refresh"
	PushUploadStatus  = "binaryContents.status"
)

// RegisterPush turns committed domain events into stream frames. Handlers
// run on the event pool after commit, so a frame never precedes the state
// it announces.
func RegisterPush(bus *events.Bus, push *sse.Service) {
	bus.Subscribe(events.EventNotificationCreated, func(ctx context.Context, e events.Event) {
		ev, ok := e.(events.NotificationCreatedEvent)
		if !ok {
			return
		}
		push.Send(ctx, ev.Notification.ReceiverID, PushNotifications, []any{ev.Notification})
	})

	bus.Subscribe(events.EventMultipleNotificationCreated, func(ctx context.Context, e events.Event) {
		ev, ok := e.(events.MultipleNotificationCreatedEvent)
		if !ok {
			return
		}
		push.SendMulti(ctx, ev.ReceiverIDs(), PushNotifications, ev.Notifications)
	})

	bus.Subscribe(events.EventPrivateChannelCreated, func(ctx context.Context, e events.Event) {
		ev, ok := e.(events.PrivateChannelCreatedEvent)
		if !ok {
			return
		}
		push.SendMulti(ctx, ev.ParticipantIDs, PushChannels, map[string]any{"channel_id": ev.Channel.ID})
	})

	bus.Subscribe(events.EventPublicChannelMutation, func(ctx context.Context, e events.Event) {
		ev, ok := e.(events.PublicChannelMutationEvent)
		if !ok {
			return
		}
		push.Broadcast(ctx, PushChannels, map[string]any{"channel_id": ev.ChannelID})
	})

	bus.Subscribe(events.EventUserMutation, func(ctx context.Context, e events.Event) {
		ev, ok := e.(events.UserMutationEvent)
		if !ok {
			return
		}
		push.Broadcast(ctx, PushUsers, map[string]any{"user_id": ev.UserID})
	})

	bus.Subscribe(events.EventBinaryContentStatusUpdated, func(ctx context.Context, e events.Event) {
		ev, ok := e.(events.BinaryContentStatusUpdatedEvent)
		if !ok {
			return
		}
		payload := map[string]any{"content_id": ev.ContentID, "status": ev.Status}
		if principal, ok := auth.PrincipalFromContext(ctx); ok {
			push.Send(ctx, principal.UserID, PushUploadStatus, payload)
			return
		}
		push.Broadcast(ctx, PushUploadStatus, payload)
	})
}
