package events

import (
	"time"

	"chatwave/internal/domain/channel"
	"chatwave/internal/domain/chatuser"
	"chatwave/internal/domain/content"
	"chatwave/internal/domain/notification"
	"chatwave/internal/domain/taskfailure"

	"github.com/google/uuid"
)

// Event type names. Relayed events share their name with the Kafka topic
// they are bridged to.
const (
	EventNewMessage                  = "new_message"
	EventRoleChanged                 = "role_changed"
	EventAsyncTaskFailed             = "async_task_failed"
	EventPrivateChannelCreated       = "private_channel_created"
	EventPublicChannelMutation       = "public_channel_mutation"
	EventUserMutation                = "user_mutation"
	EventNotificationCreated         = "notification_created"
	EventMultipleNotificationCreated = "multiple_notification_created"
	EventBinaryContentStatusUpdated  = "binary_content_status_updated"
)

// Event is the closed set of domain events. Every variant is an immutable
// value carrying its creation time and a variant-specific payload; dispatch
// is by event type name, never by subclassing.
type Event interface {
	EventType() string
	OccurredAt() time.Time
}

// Keyer is implemented by events that cross the relay. The partition key is
// the string form of the event's natural subject id, so all events about one
// subject land in one consumer lane.
type Keyer interface {
	PartitionKey() string
}

type BaseEvent struct {
	CreatedAt time.Time `json:"created_at"`
}

func (e BaseEvent) OccurredAt() time.Time { return e.CreatedAt }

func newBase() BaseEvent { return BaseEvent{CreatedAt: time.Now()} }

// MessageView is the committed state of a new message, denormalized with
// its channel and author so relay consumers need no extra lookups.
type MessageView struct {
	ID          uuid.UUID    `json:"id"`
	CreatedAt   time.Time    `json:"created_at"`
	ChannelID   uuid.UUID    `json:"channel_id"`
	ChannelName string       `json:"channel_name"`
	ChannelType channel.Type `json:"channel_type"`
	AuthorID    uuid.UUID    `json:"author_id"`
	AuthorName  string       `json:"author_name"`
	Content     string       `json:"content"`
}

type NewMessageEvent struct {
	BaseEvent
	Message MessageView `json:"message"`
}

func NewNewMessageEvent(m MessageView) NewMessageEvent {
	return NewMessageEvent{BaseEvent: newBase(), Message: m}
}

func (e NewMessageEvent) EventType() string    { return EventNewMessage }
func (e NewMessageEvent) PartitionKey() string { return e.Message.ID.String() }

type RoleChangedEvent struct {
	BaseEvent
	UserID       uuid.UUID     `json:"user_id"`
	PreviousRole chatuser.Role `json:"previous_role"`
	NewRole      chatuser.Role `json:"new_role"`
}

func NewRoleChangedEvent(userID uuid.UUID, previous, next chatuser.Role) RoleChangedEvent {
	return RoleChangedEvent{BaseEvent: newBase(), UserID: userID, PreviousRole: previous, NewRole: next}
}

func (e RoleChangedEvent) EventType() string    { return EventRoleChanged }
func (e RoleChangedEvent) PartitionKey() string { return e.UserID.String() }

type PrivateChannelCreatedEvent struct {
	BaseEvent
	Channel        channel.Channel `json:"channel"`
	ParticipantIDs []uuid.UUID     `json:"participant_ids"`
}

func NewPrivateChannelCreatedEvent(ch channel.Channel, participantIDs []uuid.UUID) PrivateChannelCreatedEvent {
	return PrivateChannelCreatedEvent{BaseEvent: newBase(), Channel: ch, ParticipantIDs: participantIDs}
}

func (e PrivateChannelCreatedEvent) EventType() string { return EventPrivateChannelCreated }

type PublicChannelMutationEvent struct {
	BaseEvent
	ChannelID uuid.UUID `json:"channel_id"`
}

func NewPublicChannelMutationEvent(channelID uuid.UUID) PublicChannelMutationEvent {
	return PublicChannelMutationEvent{BaseEvent: newBase(), ChannelID: channelID}
}

func (e PublicChannelMutationEvent) EventType() string { return EventPublicChannelMutation }

type UserMutationEvent struct {
	BaseEvent
	UserID uuid.UUID `json:"user_id"`
}

func NewUserMutationEvent(userID uuid.UUID) UserMutationEvent {
	return UserMutationEvent{BaseEvent: newBase(), UserID: userID}
}

func (e UserMutationEvent) EventType() string { return EventUserMutation }

type NotificationCreatedEvent struct {
	BaseEvent
	Notification notification.Notification `json:"notification"`
}

func NewNotificationCreatedEvent(n notification.Notification) NotificationCreatedEvent {
	return NotificationCreatedEvent{BaseEvent: newBase(), Notification: n}
}

func (e NotificationCreatedEvent) EventType() string { return EventNotificationCreated }

type MultipleNotificationCreatedEvent struct {
	BaseEvent
	Notifications []notification.Notification `json:"notifications"`
}

func NewMultipleNotificationCreatedEvent(notifications []notification.Notification) MultipleNotificationCreatedEvent {
	return MultipleNotificationCreatedEvent{BaseEvent: newBase(), Notifications: notifications}
}

func (e MultipleNotificationCreatedEvent) EventType() string { return EventMultipleNotificationCreated }

// ReceiverIDs returns the distinct receiver set of the batch.
func (e MultipleNotificationCreatedEvent) ReceiverIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(e.Notifications))
	ids := make([]uuid.UUID, 0, len(e.Notifications))
	for _, n := range e.Notifications {
		if _, ok := seen[n.ReceiverID]; ok {
			continue
		}
		seen[n.ReceiverID] = struct{}{}
		ids = append(ids, n.ReceiverID)
	}
	return ids
}

type BinaryContentStatusUpdatedEvent struct {
	BaseEvent
	ContentID uuid.UUID            `json:"content_id"`
	Status    content.UploadStatus `json:"status"`
}

func NewBinaryContentStatusUpdatedEvent(contentID uuid.UUID, status content.UploadStatus) BinaryContentStatusUpdatedEvent {
	return BinaryContentStatusUpdatedEvent{BaseEvent: newBase(), ContentID: contentID, Status: status}
}

func (e BinaryContentStatusUpdatedEvent) EventType() string { return EventBinaryContentStatusUpdated }

// AsyncTaskFailedEvent carries an exhausted-retry failure. ActorID is the
// principal resolved from the ambient identity captured when the failed task
// was submitted; nil when no principal was resolvable.
type AsyncTaskFailedEvent struct {
	BaseEvent
	Failure taskfailure.AsyncTaskFailure `json:"failure"`
	ActorID *uuid.UUID                   `json:"actor_id,omitempty"`
}

func NewAsyncTaskFailedEvent(failure taskfailure.AsyncTaskFailure, actorID *uuid.UUID) AsyncTaskFailedEvent {
	return AsyncTaskFailedEvent{BaseEvent: newBase(), Failure: failure, ActorID: actorID}
}

func (e AsyncTaskFailedEvent) EventType() string    { return EventAsyncTaskFailed }
func (e AsyncTaskFailedEvent) PartitionKey() string { return e.Failure.RequestID }
