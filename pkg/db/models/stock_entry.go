package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

// StockEntry is the authoritative available quantity for one SKU. The
// quantity is only ever mutated through locked, in-transaction adjustments,
// so no committed row is negative.
type StockEntry struct {
	SKU       string    `gorm:"column:sku;type:text;primaryKey"`
	Quantity  int       `gorm:"column:quantity;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the gorm pluralization.
func (StockEntry) TableName() string {
	return "inventory"
}

// StockMovement journals one committed quantity change, written in the same
// transaction as the change itself.
type StockMovement struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	SKU           string               `gorm:"column:sku;type:text;not null;index"`
	Delta         int                  `gorm:"column:delta;not null"`
	Reason        enums.MovementReason `gorm:"column:reason;type:text;not null"`
	ReservationID *string              `gorm:"column:reservation_id;type:text"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
}
