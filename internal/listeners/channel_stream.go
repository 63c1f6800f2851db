package listeners

import (
	"context"
	"encoding/json"

	"chatwave/internal/events"
	"chatwave/internal/redis"
	"chatwave/pkg/logger"

	"go.uber.org/zap"
)

// RegisterChannelStream forwards committed messages onto the per-channel
// pub/sub stream that live websocket subscribers drain. Fan-out to Kafka
// is independent; a stream failure is logged, never escalated.
func RegisterChannelStream(bus *events.Bus, publisher *redis.Publisher, log *logger.Logger) {
	bus.Subscribe(events.EventNewMessage, func(ctx context.Context, e events.Event) {
		ev, ok := e.(events.NewMessageEvent)
		if !ok {
			return
		}
		payload, err := json.Marshal(ev.Message)
		if err != nil {
			log.WithContext(ctx).Error("failed to marshal stream message", zap.Error(err))
			return
		}
		key := redis.MessageStreamKey(ev.Message.ChannelID)
		if err := publisher.Publish(ctx, key, payload); err != nil {
			log.WithContext(ctx).Warn("channel stream publish failed",
				zap.String("stream", key),
				zap.Error(err),
			)
		}
	})
}
