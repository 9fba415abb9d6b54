package payloads

import (
	"github.com/shopspring/decimal"

	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	"github.com/stockroomhq/stockroom-backend/pkg/types"
)

// ReservationCreatedEvent signals stock was decremented and held for an order.
type ReservationCreatedEvent struct {
	ReservationID string                 `json:"reservation_id"`
	OrderID       string                 `json:"order_id"`
	Items         types.ReservationLines `json:"items"`
}

// ReservationReleasedEvent is emitted when a hold is returned to stock. Items
// lists the lines that were restored.
type ReservationReleasedEvent struct {
	ReservationID string                 `json:"reservation_id"`
	OrderID       string                 `json:"order_id"`
	Items         types.ReservationLines `json:"items"`
}

// ReservationCommittedEvent marks a hold as permanently consumed.
type ReservationCommittedEvent struct {
	ReservationID string                 `json:"reservation_id"`
	OrderID       string                 `json:"order_id"`
	Items         types.ReservationLines `json:"items"`
}

// ReservationUpdatedEvent reports a metadata overwrite that kept the status.
type ReservationUpdatedEvent struct {
	ReservationID string                  `json:"reservation_id"`
	OrderID       string                  `json:"order_id"`
	Status        enums.ReservationStatus `json:"status"`
	Items         types.ReservationLines  `json:"items"`
}

// ReservationDeletedEvent is emitted when a reservation row is removed.
// Restored reports whether stock was returned (only reserved holds restore).
type ReservationDeletedEvent struct {
	ReservationID string `json:"reservation_id"`
	OrderID       string `json:"order_id"`
	Restored      bool   `json:"restored"`
}

// StockAdjustedEvent reports a direct quantity change on one SKU. Quantity is
// the value after the change.
type StockAdjustedEvent struct {
	SKU      string               `json:"sku"`
	Delta    int                  `json:"delta"`
	Quantity int                  `json:"quantity"`
	Reason   enums.MovementReason `json:"reason"`
}

// StockAuditFlaggedEvent surfaces a ledger inconsistency found by the audit
// sweep. ReservationID is set only for findings tied to a reservation.
type StockAuditFlaggedEvent struct {
	SKU           string `json:"sku"`
	Quantity      int    `json:"quantity"`
	Finding       string `json:"finding"`
	ReservationID string `json:"reservation_id,omitempty"`
}

// OrderCreatedEvent signals a new commerce record was stored.
type OrderCreatedEvent struct {
	OrderID  string          `json:"order_id"`
	UserID   *string         `json:"user_id,omitempty"`
	Total    decimal.Decimal `json:"total"`
	Currency string          `json:"currency"`
	Status   string          `json:"status"`
}
