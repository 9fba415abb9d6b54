package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateReservation OutboxAggregateType = "reservation"
	AggregateStockEntry  OutboxAggregateType = "stock_entry"
	AggregateOrder       OutboxAggregateType = "order"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateReservation,
	AggregateStockEntry,
	AggregateOrder,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventReservationCreated   OutboxEventType = "reservation_created"
	EventReservationReleased  OutboxEventType = "reservation_released"
	EventReservationCommitted OutboxEventType = "reservation_committed"
	EventReservationUpdated   OutboxEventType = "reservation_updated"
	EventReservationDeleted   OutboxEventType = "reservation_deleted"
	EventStockAdjusted        OutboxEventType = "stock_adjusted"
	EventStockAuditFlagged    OutboxEventType = "stock_audit_flagged"
	EventOrderCreated         OutboxEventType = "order_created"
)

var validOutboxEventTypes = []OutboxEventType{
	EventReservationCreated,
	EventReservationReleased,
	EventReservationCommitted,
	EventReservationUpdated,
	EventReservationDeleted,
	EventStockAdjusted,
	EventStockAuditFlagged,
	EventOrderCreated,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
