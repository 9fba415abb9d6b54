package outbox

import (
	"encoding/json"
	"time"
)

// ActorRef identifies who produced the event. There is no caller identity in
// this service, so the actor is the emitting process plus the request it was
// handling.
type ActorRef struct {
	Service   string `json:"service"`
	RequestID string `json:"requestId,omitempty"`
}

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}
