package sse

import (
	"context"
	"testing"
	"time"

	"chatwave/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(100, time.Minute, logger.New(logger.DevelopmentMode))
}

func drainOne(t *testing.T, conn *Connection) Frame {
	t.Helper()
	select {
	case f := <-conn.Frames():
		return f
	case <-time.After(time.Second):
		t.Fatal("no frame delivered")
		return Frame{}
	}
}

func TestSendDeliversToEveryConnectionOfReceiver(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	receiver := uuid.New()

	conn1 := s.Connect(ctx, receiver, nil)
	conn2 := s.Connect(ctx, receiver, nil)
	other := s.Connect(ctx, uuid.New(), nil)

	s.Send(ctx, receiver, "notifications", map[string]string{"k": "v"})

	f1 := drainOne(t, conn1)
	f2 := drainOne(t, conn2)
	assert.Equal(t, f1.ID, f2.ID)
	assert.Equal(t, "notifications", f1.Event)

	select {
	case <-other.Frames():
		t.Fatal("frame leaked to another receiver")
	default:
	}
}

func TestSendRetainsWhenNoConnectionOpen(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	receiver := uuid.New()

	conn := s.Connect(ctx, receiver, nil)
	s.Send(ctx, receiver, "notifications", 1)
	cursor := drainOne(t, conn)
	conn.Complete()

	// Nothing is open now; the event must still be retained.
	s.Send(ctx, receiver, "notifications", 2)
	assert.Equal(t, 0, s.ConnectionCount())

	replayed := s.Connect(ctx, receiver, &cursor.ID)
	f := drainOne(t, replayed)
	assert.NotEqual(t, cursor.ID, f.ID)
	assert.Equal(t, "notifications", f.Event)
}

func TestConnectWithUnknownCursorReplaysNothing(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	receiver := uuid.New()

	s.Send(ctx, receiver, "notifications", 1)

	evicted := uuid.New()
	conn := s.Connect(ctx, receiver, &evicted)
	select {
	case <-conn.Frames():
		t.Fatal("unexpected replay for unknown cursor")
	default:
	}
}

func TestSendMultiDeliversOneFramePerConnection(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	alice := uuid.New()
	bob := uuid.New()

	aliceConn := s.Connect(ctx, alice, nil)
	bobConn := s.Connect(ctx, bob, nil)

	s.SendMulti(ctx, []uuid.UUID{alice, bob}, "notifications", []int{1, 2})

	fa := drainOne(t, aliceConn)
	fb := drainOne(t, bobConn)
	assert.Equal(t, fa.ID, fb.ID)
}

func TestBroadcastReachesAllReceivers(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	conns := []*Connection{
		s.Connect(ctx, uuid.New(), nil),
		s.Connect(ctx, uuid.New(), nil),
		s.Connect(ctx, uuid.New(), nil),
	}

	s.Broadcast(ctx, "users.refresh", map[string]string{"user_id": "x"})

	for _, conn := range conns {
		f := drainOne(t, conn)
		assert.Equal(t, "users.refresh", f.Event)
	}
}

func TestSaturatedConnectionIsTornDownOthersSurvive(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	receiver := uuid.New()

	stuck := s.Connect(ctx, receiver, nil)
	healthy := s.Connect(ctx, receiver, nil)

	// Drain healthy while never draining stuck until its buffer overflows.
	for i := 0; i <= connectionBufferSize; i++ {
		s.Send(ctx, receiver, "notifications", i)
		select {
		case <-healthy.Frames():
		case <-time.After(time.Second):
			t.Fatal("healthy connection starved")
		}
	}

	select {
	case <-stuck.Done():
	case <-time.After(time.Second):
		t.Fatal("saturated connection not torn down")
	}
	require.Error(t, stuck.Err())

	select {
	case <-healthy.Done():
		t.Fatal("healthy connection torn down")
	default:
	}
	assert.Equal(t, 1, s.ConnectionCount())
}

func TestPingDropsDeadConnections(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	receiver := uuid.New()

	conn := s.Connect(ctx, receiver, nil)
	for i := 0; i < connectionBufferSize; i++ {
		require.NoError(t, conn.push(Frame{Event: "filler"}))
	}

	s.ping(ctx)

	select {
	case <-conn.Done():
	case <-time.After(time.Second):
		t.Fatal("dead connection survived ping")
	}
	assert.Equal(t, 0, s.ConnectionCount())
}

func TestCompleteRemovesFromRegistryOnce(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	conn := s.Connect(ctx, uuid.New(), nil)
	assert.Equal(t, 1, s.ConnectionCount())

	conn.Complete()
	conn.Complete()
	conn.Fail(assert.AnError)

	assert.Equal(t, 0, s.ConnectionCount())
	assert.NoError(t, conn.Err())
}
