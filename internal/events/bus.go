package events

import (
	"context"
	"sync"

	"chatwave/internal/async"
	"chatwave/pkg/logger"

	"go.uber.org/zap"
)

// Handler processes one event. A handler's failure is isolated: it is
// recovered, logged, and never reaches sibling handlers or the publisher.
type Handler func(ctx context.Context, e Event)

// Bus is the in-process typed publish/subscribe hub. Immediate publication
// dispatches inline; after-commit publication is gated by the unit of work
// in ctx and runs on the event pool, never on the committing goroutine.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	pool     *async.Pool
	log      *logger.Logger
}

func NewBus(pool *async.Pool, log *logger.Logger) *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
		pool:     pool,
		log:      log,
	}
}

// Subscribe registers handler for eventType. Same-type handlers run in
// registration order. No ordering exists across event types.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish dispatches e inline on the calling goroutine.
func (b *Bus) Publish(ctx context.Context, e Event) {
	b.dispatch(ctx, e)
}

// PublishAfterCommit defers e until the enclosing unit of work commits.
// On rollback the event is discarded with zero handler invocations. Without
// a unit of work in ctx, e is dispatched on the event pool right away.
func (b *Bus) PublishAfterCommit(ctx context.Context, e Event) {
	if pending, ok := pendingFrom(ctx); ok {
		pending.add(e)
		return
	}
	b.pool.Submit(ctx, func(taskCtx context.Context) {
		b.dispatch(taskCtx, e)
	})
}

func (b *Bus) dispatch(ctx context.Context, e Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[e.EventType()]))
	copy(handlers, b.handlers[e.EventType()])
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.invoke(ctx, e, handler)
	}
}

func (b *Bus) invoke(ctx context.Context, e Event, handler Handler) {
	defer func() {
		if r := recover(); r != nil {
			b.log.WithContext(ctx).Error("event handler panicked",
				zap.String("event_type", e.EventType()),
				zap.Any("panic", r),
			)
		}
	}()
	handler(ctx, e)
}
