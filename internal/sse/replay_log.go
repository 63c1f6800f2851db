package sse

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Message is one pushed event retained for reconnect catch-up.
type Message struct {
	EventID    uuid.UUID
	EventName  string
	Payload    json.RawMessage
	Broadcast  bool
	Receivers  map[uuid.UUID]struct{}
	EnqueuedAt time.Time
}

// Receivable reports whether receiverID is addressed by the message.
func (m Message) Receivable(receiverID uuid.UUID) bool {
	if m.Broadcast {
		return true
	}
	_, ok := m.Receivers[receiverID]
	return ok
}

func (m Message) frame() Frame {
	return Frame{ID: m.EventID, Event: m.EventName, Data: m.Payload}
}

// ReplayLog is a bounded FIFO of recently pushed events, shared across all
// recipients. When full, the oldest entry is evicted before the new one is
// appended.
type ReplayLog struct {
	mu       sync.Mutex
	capacity int
	order    []uuid.UUID
	messages map[uuid.UUID]Message
}

func NewReplayLog(capacity int) *ReplayLog {
	return &ReplayLog{
		capacity: capacity,
		messages: make(map[uuid.UUID]Message, capacity),
	}
}

func (l *ReplayLog) Append(m Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for len(l.order) >= l.capacity {
		oldest := l.order[0]
		l.order = l.order[1:]
		delete(l.messages, oldest)
	}
	l.order = append(l.order, m.EventID)
	l.messages[m.EventID] = m
}

// After returns, in insertion order, the retained messages strictly newer
// than lastEventID that address receiverID. An unknown or already evicted
// lastEventID yields nothing; the client's cursor predates the window and
// no partial replay is attempted.
func (l *ReplayLog) After(lastEventID, receiverID uuid.UUID) []Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx := -1
	for i, id := range l.order {
		if id == lastEventID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	var out []Message
	for _, id := range l.order[idx+1:] {
		m := l.messages[id]
		if m.Receivable(receiverID) {
			out = append(out, m)
		}
	}
	return out
}

func (l *ReplayLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.order)
}
