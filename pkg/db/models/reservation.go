package models

import (
	"time"

	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	"github.com/stockroomhq/stockroom-backend/pkg/types"
)

// Reservation provisionally claims stock for an order. While the status is
// reserved, every line's qty has already been subtracted from the matching
// StockEntry and belongs to this record until it is released or committed.
type Reservation struct {
	ID        string                  `gorm:"column:id;type:text;primaryKey"`
	OrderID   string                  `gorm:"column:order_id;type:text;not null;index"`
	Items     types.ReservationLines  `gorm:"column:items;type:jsonb;serializer:json;not null"`
	Status    enums.ReservationStatus `gorm:"column:status;type:text;not null"`
	CreatedAt time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the gorm pluralization.
func (Reservation) TableName() string {
	return "inventory_reservations"
}
