package redis

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) Publish(ctx context.Context, channel string, payload []byte) error {
	return p.client.Publish(ctx, channel, payload).Err()
}

// MessageStreamKey is the pub/sub channel carrying new messages of one chat
// channel. Websocket subscribers and cross-instance bridges share it.
func MessageStreamKey(channelID uuid.UUID) string {
	return fmt.Sprintf("channels.%s.messages", channelID)
}

// MessageStreamPattern matches every message stream channel.
const MessageStreamPattern = "channels.*.messages"
