package sse

import (
	"sync"

	"github.com/google/uuid"
)

// Registry maps recipients to their live connections. A recipient may hold
// any number of connections (multi-device). Iteration returns a snapshot,
// so delivery never holds the lock across an I/O call.
type Registry struct {
	mu    sync.RWMutex
	conns map[uuid.UUID]map[*Connection]struct{}
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[uuid.UUID]map[*Connection]struct{})}
}

func (r *Registry) Add(c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.conns[c.ReceiverID]
	if !ok {
		set = make(map[*Connection]struct{})
		r.conns[c.ReceiverID] = set
	}
	set[c] = struct{}{}
}

func (r *Registry) Remove(c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.conns[c.ReceiverID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(r.conns, c.ReceiverID)
	}
}

func (r *Registry) ByReceiver(receiverID uuid.UUID) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.conns[receiverID]
	out := make([]*Connection, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

func (r *Registry) ByReceivers(receiverIDs []uuid.UUID) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Connection
	for _, id := range receiverIDs {
		for c := range r.conns[id] {
			out = append(out, c)
		}
	}
	return out
}

func (r *Registry) All() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Connection
	for _, set := range r.conns {
		for c := range set {
			out = append(out, c)
		}
	}
	return out
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, set := range r.conns {
		n += len(set)
	}
	return n
}
