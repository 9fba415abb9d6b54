package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stockroomhq/stockroom-backend/pkg/config"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	"github.com/stockroomhq/stockroom-backend/pkg/outbox"
	"github.com/stockroomhq/stockroom-backend/pkg/outbox/payloads"
)

// EventDescriptor links an event type to its aggregates/topic/payload schema.
// Most events belong to exactly one aggregate; stock_audit_flagged may point
// at a stock entry or a reservation depending on the finding.
type EventDescriptor struct {
	EventType      enums.OutboxEventType
	AggregateTypes []enums.OutboxAggregateType
	Topic          string
	PayloadFactory func() interface{}
}

func (d EventDescriptor) allowsAggregate(aggregate enums.OutboxAggregateType) bool {
	for _, candidate := range d.AggregateTypes {
		if candidate == aggregate {
			return true
		}
	}
	return false
}

// ResolvedEvent is the result of decoding an outbox row.
type ResolvedEvent struct {
	Descriptor EventDescriptor
	Envelope   outbox.PayloadEnvelope
	Payload    interface{}
}

// EventRegistry maps each supported event type to its descriptor.
type EventRegistry struct {
	entries map[enums.OutboxEventType]EventDescriptor
}

// NonRetryableError signals the dispatcher should stop retrying a row.
type NonRetryableError struct {
	Err error
}

// Error implements error.
func (e NonRetryableError) Error() string {
	if e.Err == nil {
		return "non-retryable error"
	}
	return e.Err.Error()
}

// Unwrap exposes the wrapped error.
func (e NonRetryableError) Unwrap() error {
	return e.Err
}

// NewEventRegistry builds the registry with the configured topic names.
func NewEventRegistry(cfg config.PubSubConfig) (*EventRegistry, error) {
	if cfg.ReservationTopic == "" {
		return nil, fmt.Errorf("reservation topic is required")
	}
	if cfg.StockTopic == "" {
		return nil, fmt.Errorf("stock topic is required")
	}
	if cfg.OrderTopic == "" {
		return nil, fmt.Errorf("order topic is required")
	}

	reg := &EventRegistry{entries: make(map[enums.OutboxEventType]EventDescriptor)}
	reservationTopic := cfg.ReservationTopic
	stockTopic := cfg.StockTopic
	orderTopic := cfg.OrderTopic

	reservationOnly := []enums.OutboxAggregateType{enums.AggregateReservation}
	for _, desc := range []EventDescriptor{
		{
			EventType:      enums.EventReservationCreated,
			AggregateTypes: reservationOnly,
			Topic:          reservationTopic,
			PayloadFactory: func() interface{} { return &payloads.ReservationCreatedEvent{} },
		},
		{
			EventType:      enums.EventReservationReleased,
			AggregateTypes: reservationOnly,
			Topic:          reservationTopic,
			PayloadFactory: func() interface{} { return &payloads.ReservationReleasedEvent{} },
		},
		{
			EventType:      enums.EventReservationCommitted,
			AggregateTypes: reservationOnly,
			Topic:          reservationTopic,
			PayloadFactory: func() interface{} { return &payloads.ReservationCommittedEvent{} },
		},
		{
			EventType:      enums.EventReservationUpdated,
			AggregateTypes: reservationOnly,
			Topic:          reservationTopic,
			PayloadFactory: func() interface{} { return &payloads.ReservationUpdatedEvent{} },
		},
		{
			EventType:      enums.EventReservationDeleted,
			AggregateTypes: reservationOnly,
			Topic:          reservationTopic,
			PayloadFactory: func() interface{} { return &payloads.ReservationDeletedEvent{} },
		},
	} {
		reg.register(desc)
	}
	for _, desc := range []EventDescriptor{
		{
			EventType:      enums.EventStockAdjusted,
			AggregateTypes: []enums.OutboxAggregateType{enums.AggregateStockEntry},
			Topic:          stockTopic,
			PayloadFactory: func() interface{} { return &payloads.StockAdjustedEvent{} },
		},
		{
			// Audit findings flag whichever aggregate is inconsistent.
			EventType:      enums.EventStockAuditFlagged,
			AggregateTypes: []enums.OutboxAggregateType{enums.AggregateStockEntry, enums.AggregateReservation},
			Topic:          stockTopic,
			PayloadFactory: func() interface{} { return &payloads.StockAuditFlaggedEvent{} },
		},
	} {
		reg.register(desc)
	}
	reg.register(EventDescriptor{
		EventType:      enums.EventOrderCreated,
		AggregateTypes: []enums.OutboxAggregateType{enums.AggregateOrder},
		Topic:          orderTopic,
		PayloadFactory: func() interface{} { return &payloads.OrderCreatedEvent{} },
	})

	return reg, nil
}

func (r *EventRegistry) register(desc EventDescriptor) {
	if desc.PayloadFactory == nil {
		return
	}
	r.entries[desc.EventType] = desc
}

// Resolve validates the row and decodes its typed payload.
func (r *EventRegistry) Resolve(event models.OutboxEvent) (*ResolvedEvent, error) {
	desc, ok := r.entries[event.EventType]
	if !ok {
		return nil, NewNonRetryableError(fmt.Errorf("unsupported event type %s", event.EventType))
	}
	if !desc.allowsAggregate(event.AggregateType) {
		return nil, NewNonRetryableError(fmt.Errorf("aggregate mismatch: %s not valid for %s", event.AggregateType, event.EventType))
	}
	if strings.TrimSpace(event.AggregateID) == "" {
		return nil, NewNonRetryableError(fmt.Errorf("missing aggregate_id"))
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode envelope: %w", err))
	}

	trimmed := bytes.TrimSpace(envelope.Data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, NewNonRetryableError(fmt.Errorf("payload missing for %s", event.EventType))
	}

	payload := desc.PayloadFactory()
	if payload == nil {
		return nil, NewNonRetryableError(fmt.Errorf("payload factory not configured for %s", event.EventType))
	}
	if err := json.Unmarshal(envelope.Data, payload); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode %s payload: %w", event.EventType, err))
	}

	return &ResolvedEvent{
		Descriptor: desc,
		Envelope:   envelope,
		Payload:    payload,
	}, nil
}

// NewNonRetryableError wraps an error to signal no retries.
func NewNonRetryableError(err error) NonRetryableError {
	return NonRetryableError{Err: err}
}
