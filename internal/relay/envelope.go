package relay

import (
	"encoding/json"
	"time"
)

// Envelope is the wire format of one relayed event. The payload is the full
// serialized domain event; the topic carries the event type, the message
// key carries the partition key.
type Envelope struct {
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}
