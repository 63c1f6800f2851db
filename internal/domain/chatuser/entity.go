package chatuser

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin          Role = "ADMIN"
	RoleChannelManager Role = "CHANNEL_MANAGER"
	RoleUser           Role = "USER"
)

type User struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
}
