package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type Client struct {
	ID      string
	UserID  uuid.UUID
	Conn    *websocket.Conn
	Send    chan []byte
	streams map[string]bool
	mu      sync.RWMutex
}

func NewClient(conn *websocket.Conn, userID uuid.UUID) *Client {
	return &Client{
		ID:      uuid.New().String(),
		UserID:  userID,
		Conn:    conn,
		Send:    make(chan []byte, 256),
		streams: make(map[string]bool),
	}
}

func (c *Client) addStream(stream string) {
	c.mu.Lock()
	c.streams[stream] = true
	c.mu.Unlock()
}

func (c *Client) removeStream(stream string) {
	c.mu.Lock()
	delete(c.streams, stream)
	c.mu.Unlock()
}

func (c *Client) IsSubscribed(stream string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.streams[stream]
}

// WriteLoop drains the Send channel onto the wire and pings periodically.
func (c *Client) WriteLoop(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.close()
			return
		case msg, ok := <-c.Send:
			if !ok {
				c.close()
				return
			}
			c.mu.Lock()
			_ = c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			_ = c.Conn.WriteMessage(websocket.TextMessage, msg)
			c.mu.Unlock()
		case <-ticker.C:
			c.mu.Lock()
			_ = c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			_ = c.Conn.WriteMessage(websocket.PingMessage, []byte("ping"))
			c.mu.Unlock()
		}
	}
}

func (c *Client) close() {
	c.mu.Lock()
	_ = c.Conn.Close()
	c.mu.Unlock()
}

// SendMessage enqueues msg without blocking; a full buffer drops it.
func (c *Client) SendMessage(msg []byte) {
	select {
	case c.Send <- msg:
	default:
	}
}
