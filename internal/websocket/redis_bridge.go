package websocket

import (
	"context"

	"chatwave/internal/redis"
)

// RedisBridge feeds the per-channel message streams into the local hub, so
// a message committed on any instance reaches subscribers on this one.
type RedisBridge struct {
	subscriber *redis.Subscriber
	hub        *Hub
}

func NewRedisBridge(subscriber *redis.Subscriber, hub *Hub) *RedisBridge {
	return &RedisBridge{subscriber: subscriber, hub: hub}
}

func (b *RedisBridge) Run(ctx context.Context) error {
	return b.subscriber.Subscribe(ctx, []string{redis.MessageStreamPattern}, func(stream string, payload []byte) {
		b.hub.Broadcast(stream, payload)
	})
}
