package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"chatwave/pkg/logger"
	"chatwave/pkg/retry"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// HandlerFunc processes the envelope payload of one relayed message.
// Handlers must tolerate at-least-once redelivery.
type HandlerFunc func(ctx context.Context, payload []byte) error

// FailureRecorder is the terminal recovery action for exhausted retries.
type FailureRecorder interface {
	Capture(ctx context.Context, taskName, reason string)
}

// Consumer reads relay topics and dispatches to registered handlers. Each
// dispatch is wrapped in the bounded retry policy; exhaustion is escalated
// to the failure recorder and the offset committed, so a poison message
// never wedges its partition.
type Consumer struct {
	brokers  []string
	groupID  string
	policy   retry.Policy
	failures FailureRecorder
	log      *logger.Logger

	mu       sync.Mutex
	handlers map[string]HandlerFunc
	readers  []*kafka.Reader
	wg       sync.WaitGroup
}

func NewConsumer(brokers []string, groupID string, failures FailureRecorder, log *logger.Logger) *Consumer {
	return &Consumer{
		brokers:  brokers,
		groupID:  groupID,
		policy:   retry.DefaultPolicy(),
		failures: failures,
		log:      log,
		handlers: make(map[string]HandlerFunc),
	}
}

// messageReader is the reader surface the consume loop needs. *kafka.Reader
// satisfies it.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Handle registers handler for topic. Call before Start.
func (c *Consumer) Handle(topic string, handler HandlerFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = handler
}

// Start launches one reader goroutine per registered topic and returns.
func (c *Consumer) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for topic, handler := range c.handlers {
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers: c.brokers,
			GroupID: c.groupID,
			Topic:   topic,
		})
		c.readers = append(c.readers, reader)
		c.wg.Add(1)
		go c.consume(ctx, reader, topic, handler)
	}
}

func (c *Consumer) consume(ctx context.Context, reader messageReader, topic string, handler HandlerFunc) {
	defer c.wg.Done()
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// A closed reader surfaces as EOF; Stop relies on the loop
			// exiting here.
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
				return
			}
			c.log.Logger.Warn("relay fetch failed",
				zap.String("topic", topic),
				zap.Error(err),
			)
			continue
		}

		c.process(ctx, topic, handler, msg.Value)

		if err := reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.log.Logger.Warn("relay commit failed",
				zap.String("topic", topic),
				zap.Error(err),
			)
		}
	}
}

func (c *Consumer) process(ctx context.Context, topic string, handler HandlerFunc, payload []byte) {
	err := c.policy.DoWithState(ctx, func(attemptCtx context.Context) error {
		return handler(attemptCtx, payload)
	}, func(state retry.State, attempt int) {
		if state == retry.StateRetrying {
			c.log.WithContext(ctx).Warn("relay handler failed, retrying",
				zap.String("topic", topic),
				zap.Int("attempt", attempt),
			)
		}
	})
	if err == nil {
		return
	}
	if ctx.Err() != nil {
		return
	}

	c.log.WithContext(ctx).Error("relay handler exhausted retries",
		zap.String("topic", topic),
		zap.Error(err),
	)
	c.failures.Capture(ctx, fmt.Sprintf("relay#%s", topic), err.Error())
}

// Stop closes all readers and waits for the consume loops to drain.
func (c *Consumer) Stop() {
	c.mu.Lock()
	readers := c.readers
	c.mu.Unlock()
	for _, r := range readers {
		_ = r.Close()
	}
	c.wg.Wait()
}
