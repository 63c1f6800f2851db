package channel

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypePublic  Type = "PUBLIC"
	TypePrivate Type = "PRIVATE"
)

type Channel struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `json:"name"`
	Type      Type      `json:"type"`
}

// ReadStatus links a member to a channel and carries their per-channel
// notification preference. Fan-out resolves recipients from these rows.
type ReadStatus struct {
	ID                  uuid.UUID `json:"id"`
	UserID              uuid.UUID `json:"user_id"`
	ChannelID           uuid.UUID `json:"channel_id"`
	LastReadAt          time.Time `json:"last_read_at"`
	NotificationEnabled bool      `json:"notification_enabled"`
}

type Message struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ChannelID uuid.UUID `json:"channel_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Content   string    `json:"content"`
}
