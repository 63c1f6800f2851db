package sse

import (
	"sync"
	"time"

	chatwave_errors "chatwave/pkg/errors"

	"github.com/google/uuid"
)

// Frame is one wire frame of the event stream.
type Frame struct {
	ID    uuid.UUID
	Event string
	Data  []byte
}

// Connection is one open client stream, owned exclusively by the push
// service. Frames are buffered between the delivering goroutine and the
// transport goroutine; completion, timeout and write error all converge on
// the single closeWith path.
type Connection struct {
	ID         uuid.UUID
	ReceiverID uuid.UUID
	CreatedAt  time.Time

	frames    chan Frame
	done      chan struct{}
	closeOnce sync.Once

	mu  sync.Mutex
	err error

	idleTimeout time.Duration
	idleTimer   *time.Timer
	onClose     func(*Connection)
}

func newConnection(receiverID uuid.UUID, idleTimeout time.Duration, bufferSize int, onClose func(*Connection)) *Connection {
	c := &Connection{
		ID:          uuid.New(),
		ReceiverID:  receiverID,
		CreatedAt:   time.Now(),
		frames:      make(chan Frame, bufferSize),
		done:        make(chan struct{}),
		idleTimeout: idleTimeout,
		onClose:     onClose,
	}
	c.idleTimer = time.AfterFunc(idleTimeout, func() {
		c.closeWith(chatwave_errors.ErrConnectionClosed)
	})
	return c
}

// Frames is read by the transport goroutine; it drains in FIFO order.
func (c *Connection) Frames() <-chan Frame { return c.frames }

// Done is closed when the connection has terminated for any reason.
func (c *Connection) Done() <-chan struct{} { return c.done }

// Err reports why the connection terminated; nil for normal completion.
func (c *Connection) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Complete terminates the connection normally (client went away).
func (c *Connection) Complete() {
	c.closeWith(nil)
}

// Fail terminates the connection with err (write failure, keep-alive
// failure).
func (c *Connection) Fail(err error) {
	c.closeWith(err)
}

// push enqueues one frame. A closed connection or a full buffer is a write
// failure; the caller tears the connection down.
func (c *Connection) push(f Frame) error {
	select {
	case <-c.done:
		return chatwave_errors.ErrConnectionClosed
	default:
	}
	select {
	case c.frames <- f:
		c.idleTimer.Reset(c.idleTimeout)
		return nil
	case <-c.done:
		return chatwave_errors.ErrConnectionClosed
	default:
		// Buffer full means the client stopped draining.
		return chatwave_errors.ErrQueueFull
	}
}

func (c *Connection) closeWith(err error) {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
		c.idleTimer.Stop()
		close(c.done)
		if c.onClose != nil {
			c.onClose(c)
		}
	})
}
