package websocket

import (
	"context"
	"sync"
)

type subscriptionRequest struct {
	client    *Client
	stream    string
	subscribe bool
}

// Hub tracks live websocket clients and their per-channel stream
// subscriptions. All membership mutation flows through the Run loop.
type Hub struct {
	mu sync.RWMutex

	clients map[string]*Client
	streams map[string]map[*Client]struct{}

	register     chan *Client
	unregister   chan *Client
	subscription chan subscriptionRequest
}

func NewHub() *Hub {
	return &Hub{
		clients:      make(map[string]*Client),
		streams:      make(map[string]map[*Client]struct{}),
		register:     make(chan *Client, 256),
		unregister:   make(chan *Client, 256),
		subscription: make(chan subscriptionRequest, 512),
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case req := <-h.subscription:
			if req.subscribe {
				h.subscribeToStream(req.client, req.stream)
			} else {
				h.unsubscribeFromStream(req.client, req.stream)
			}
		}
	}
}

func (h *Hub) Register(client *Client)   { h.register <- client }
func (h *Hub) Unregister(client *Client) { h.unregister <- client }

func (h *Hub) Subscribe(client *Client, stream string) {
	h.subscription <- subscriptionRequest{client: client, stream: stream, subscribe: true}
}

func (h *Hub) Unsubscribe(client *Client, stream string) {
	h.subscription <- subscriptionRequest{client: client, stream: stream, subscribe: false}
}

// Broadcast fans payload out to every subscriber of stream. A slow client
// drops the frame rather than blocking its siblings.
func (h *Hub) Broadcast(stream string, payload []byte) {
	h.mu.RLock()
	for c := range h.streams[stream] {
		c.SendMessage(payload)
	}
	h.mu.RUnlock()
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) SubscriberCount(stream string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.streams[stream])
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for stream := range client.streams {
		if subscribers, ok := h.streams[stream]; ok {
			delete(subscribers, client)
			if len(subscribers) == 0 {
				delete(h.streams, stream)
			}
		}
	}
	delete(h.clients, client.ID)
	close(client.Send)
}

func (h *Hub) subscribeToStream(client *Client, stream string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.streams[stream]; !ok {
		h.streams[stream] = make(map[*Client]struct{})
	}
	h.streams[stream][client] = struct{}{}
	client.addStream(stream)
}

func (h *Hub) unsubscribeFromStream(client *Client, stream string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subscribers, ok := h.streams[stream]; ok {
		delete(subscribers, client)
		if len(subscribers) == 0 {
			delete(h.streams, stream)
		}
	}
	client.removeStream(stream)
}
