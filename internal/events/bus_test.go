package events

import (
	"context"
	"testing"
	"time"

	"chatwave/internal/async"
	"chatwave/internal/domain/chatuser"
	"chatwave/internal/domain/notification"
	"chatwave/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus(t *testing.T) *Bus {
	t.Helper()
	log := logger.New(logger.DevelopmentMode)
	pool := async.NewPool("events", 2, 16, log)
	t.Cleanup(pool.Close)
	return NewBus(pool, log)
}

func TestPublishDispatchesInRegistrationOrder(t *testing.T) {
	bus := newTestBus(t)

	var order []string
	bus.Subscribe(EventUserMutation, func(ctx context.Context, e Event) {
		order = append(order, "first")
	})
	bus.Subscribe(EventUserMutation, func(ctx context.Context, e Event) {
		order = append(order, "second")
	})

	bus.Publish(context.Background(), NewUserMutationEvent(uuid.New()))

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestPublishIsolatesHandlerPanic(t *testing.T) {
	bus := newTestBus(t)

	reached := false
	bus.Subscribe(EventUserMutation, func(ctx context.Context, e Event) {
		panic("boom")
	})
	bus.Subscribe(EventUserMutation, func(ctx context.Context, e Event) {
		reached = true
	})

	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), NewUserMutationEvent(uuid.New()))
	})
	assert.True(t, reached)
}

func TestPublishIgnoresUnsubscribedType(t *testing.T) {
	bus := newTestBus(t)
	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), NewUserMutationEvent(uuid.New()))
	})
}

func TestPublishAfterCommitWithoutUnitOfWorkDispatchesAsync(t *testing.T) {
	bus := newTestBus(t)

	received := make(chan Event, 1)
	bus.Subscribe(EventRoleChanged, func(ctx context.Context, e Event) {
		received <- e
	})

	bus.PublishAfterCommit(context.Background(), NewRoleChangedEvent(uuid.New(), chatuser.RoleUser, chatuser.RoleChannelManager))

	select {
	case e := <-received:
		assert.Equal(t, EventRoleChanged, e.EventType())
	case <-time.After(time.Second):
		t.Fatal("event never dispatched")
	}
}

func TestUnitOfWorkCommitFlushesBufferedEvents(t *testing.T) {
	bus := newTestBus(t)

	received := make(chan Event, 2)
	bus.Subscribe(EventUserMutation, func(ctx context.Context, e Event) {
		received <- e
	})

	uowCtx, uow := bus.Begin(context.Background())
	bus.PublishAfterCommit(uowCtx, NewUserMutationEvent(uuid.New()))
	bus.PublishAfterCommit(uowCtx, NewUserMutationEvent(uuid.New()))

	select {
	case <-received:
		t.Fatal("event dispatched before commit")
	case <-time.After(50 * time.Millisecond):
	}

	uow.Commit()

	for i := 0; i < 2; i++ {
		select {
		case <-received:
		case <-time.After(time.Second):
			t.Fatalf("missing event %d after commit", i)
		}
	}
}

func TestUnitOfWorkRollbackDiscardsEvents(t *testing.T) {
	bus := newTestBus(t)

	received := make(chan Event, 1)
	bus.Subscribe(EventUserMutation, func(ctx context.Context, e Event) {
		received <- e
	})

	uowCtx, uow := bus.Begin(context.Background())
	bus.PublishAfterCommit(uowCtx, NewUserMutationEvent(uuid.New()))
	uow.Rollback()

	select {
	case <-received:
		t.Fatal("event dispatched after rollback")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestUnitOfWorkCommitCarriesAmbientContext(t *testing.T) {
	bus := newTestBus(t)

	got := make(chan string, 1)
	bus.Subscribe(EventUserMutation, func(ctx context.Context, e Event) {
		requestID, _ := ctx.Value(logger.RequestIdKey).(string)
		got <- requestID
	})

	ctx := logger.WithRequestID(context.Background(), "req-7")
	uowCtx, uow := bus.Begin(ctx)
	bus.PublishAfterCommit(uowCtx, NewUserMutationEvent(uuid.New()))
	uow.Commit()

	select {
	case requestID := <-got:
		assert.Equal(t, "req-7", requestID)
	case <-time.After(time.Second):
		t.Fatal("event never dispatched")
	}
}

func TestMultipleNotificationReceiverIDsDistinct(t *testing.T) {
	receiver := uuid.New()
	other := uuid.New()
	e := NewMultipleNotificationCreatedEvent([]notification.Notification{
		notification.New(receiver, "t", "c", notification.TypeNewMessage, nil),
		notification.New(receiver, "t", "c", notification.TypeNewMessage, nil),
		notification.New(other, "t", "c", notification.TypeNewMessage, nil),
	})

	ids := e.ReceiverIDs()
	require.Len(t, ids, 2)
	assert.Equal(t, receiver, ids[0])
	assert.Equal(t, other, ids[1])
}
