package relay

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"chatwave/pkg/logger"
	"chatwave/pkg/retry"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedFailure struct {
	taskName string
	reason   string
}

type recorderSpy struct {
	mu       sync.Mutex
	captured []capturedFailure
}

func (r *recorderSpy) Capture(ctx context.Context, taskName, reason string) {
	r.mu.Lock()
	r.captured = append(r.captured, capturedFailure{taskName: taskName, reason: reason})
	r.mu.Unlock()
}

func newTestConsumer(recorder *recorderSpy) *Consumer {
	c := NewConsumer(nil, "test-group", recorder, logger.New(logger.DevelopmentMode))
	c.policy = retry.Policy{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		Sleep:          func(ctx context.Context, d time.Duration) error { return nil },
	}
	return c
}

func TestProcessSucceedsWithoutCapture(t *testing.T) {
	recorder := &recorderSpy{}
	c := newTestConsumer(recorder)

	calls := 0
	c.process(context.Background(), "new_message", func(ctx context.Context, payload []byte) error {
		calls++
		return nil
	}, []byte(`{}`))

	assert.Equal(t, 1, calls)
	assert.Empty(t, recorder.captured)
}

func TestProcessRetriesTransientFailure(t *testing.T) {
	recorder := &recorderSpy{}
	c := newTestConsumer(recorder)

	calls := 0
	c.process(context.Background(), "new_message", func(ctx context.Context, payload []byte) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, []byte(`{}`))

	assert.Equal(t, 3, calls)
	assert.Empty(t, recorder.captured)
}

func TestProcessCapturesExactlyOnceOnExhaustion(t *testing.T) {
	recorder := &recorderSpy{}
	c := newTestConsumer(recorder)

	calls := 0
	c.process(context.Background(), "role_changed", func(ctx context.Context, payload []byte) error {
		calls++
		return errors.New("broker unavailable")
	}, []byte(`{}`))

	assert.Equal(t, 3, calls)
	require.Len(t, recorder.captured, 1)
	assert.Equal(t, "relay#role_changed", recorder.captured[0].taskName)
	assert.Equal(t, "broker unavailable", recorder.captured[0].reason)
}

func TestProcessSkipsCaptureOnCancelledContext(t *testing.T) {
	recorder := &recorderSpy{}
	c := newTestConsumer(recorder)
	c.policy.Sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }

	ctx, cancel := context.WithCancel(context.Background())
	c.process(ctx, "new_message", func(ctx context.Context, payload []byte) error {
		cancel()
		return errors.New("interrupted")
	}, []byte(`{}`))

	assert.Empty(t, recorder.captured)
}

type readerStub struct {
	msgs      chan kafka.Message
	committed int
}

func (r *readerStub) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m, ok := <-r.msgs:
		if !ok {
			return kafka.Message{}, io.EOF
		}
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *readerStub) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.committed += len(msgs)
	return nil
}

func TestConsumeExitsWhenReaderCloses(t *testing.T) {
	recorder := &recorderSpy{}
	c := newTestConsumer(recorder)

	stub := &readerStub{msgs: make(chan kafka.Message, 1)}
	stub.msgs <- kafka.Message{Value: []byte(`{}`)}
	close(stub.msgs)

	handled := 0
	done := make(chan struct{})
	c.wg.Add(1)
	go func() {
		defer close(done)
		c.consume(context.Background(), stub, "new_message", func(ctx context.Context, payload []byte) error {
			handled++
			return nil
		})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consume kept running after the reader closed")
	}
	c.wg.Wait()
	assert.Equal(t, 1, handled)
	assert.Equal(t, 1, stub.committed)
	assert.Empty(t, recorder.captured)
}
