package notification

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeNewMessage  Type = "NEW_MESSAGE"
	TypeRoleChanged Type = "ROLE_CHANGED"
	TypeAsyncFailed Type = "ASYNC_FAILED"
)

// Notification is one per-recipient record produced by fan-out. Only its
// receiver may read or delete it.
type Notification struct {
	ID         uuid.UUID  `json:"id"`
	CreatedAt  time.Time  `json:"created_at"`
	ReceiverID uuid.UUID  `json:"receiver_id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Type       Type       `json:"type"`
	TargetID   *uuid.UUID `json:"target_id,omitempty"`
}

func New(receiverID uuid.UUID, title, content string, typ Type, targetID *uuid.UUID) Notification {
	return Notification{
		ID:         uuid.New(),
		CreatedAt:  time.Now(),
		ReceiverID: receiverID,
		Title:      title,
		Content:    content,
		Type:       typ,
		TargetID:   targetID,
	}
}
