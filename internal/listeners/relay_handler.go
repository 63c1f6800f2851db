package listeners

import (
	"context"

	"chatwave/internal/events"
	"chatwave/internal/relay"
)

// RegisterRelay bridges the durable event types onto Kafka. New message and
// role change events arrive here only after their transaction committed;
// task failures are published immediately and relayed as-is.
func RegisterRelay(bus *events.Bus, publisher *relay.Publisher) {
	forward := func(ctx context.Context, e events.Event) {
		publisher.Relay(ctx, e)
	}
	bus.Subscribe(events.EventNewMessage, forward)
	bus.Subscribe(events.EventRoleChanged, forward)
	bus.Subscribe(events.EventAsyncTaskFailed, forward)
}
