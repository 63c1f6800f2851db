package listeners

import (
	"context"

	"chatwave/internal/events"
	"chatwave/internal/redis"
	"chatwave/pkg/logger"

	"go.uber.org/zap"
)

// RegisterCacheEvict invalidates cached channel list views when channel
// membership or visibility changes.
func RegisterCacheEvict(bus *events.Bus, cache *redis.Cache, log *logger.Logger) {
	bus.Subscribe(events.EventPrivateChannelCreated, func(ctx context.Context, e events.Event) {
		ev, ok := e.(events.PrivateChannelCreatedEvent)
		if !ok {
			return
		}
		keys := make([]string, 0, len(ev.ParticipantIDs))
		for _, id := range ev.ParticipantIDs {
			keys = append(keys, redis.ChannelsKey(id))
		}
		if err := cache.Delete(ctx, keys...); err != nil {
			log.WithContext(ctx).Warn("channel cache evict failed", zap.Error(err))
		}
	})

	bus.Subscribe(events.EventPublicChannelMutation, func(ctx context.Context, e events.Event) {
		// Public visibility changes for everyone; the whole view space goes.
		if err := cache.DeleteByPrefix(ctx, redis.ChannelsKeyPrefix()); err != nil {
			log.WithContext(ctx).Warn("channel cache evict failed", zap.Error(err))
		}
	})
}
