package models

import (
	"time"

	"github.com/stockroomhq/stockroom-backend/pkg/types"
)

// Shipment is a flat record of goods dispatched for an order.
type Shipment struct {
	ID        string         `gorm:"column:id;type:text;primaryKey"`
	OrderID   string         `gorm:"column:order_id;type:text;not null;index"`
	Address   types.JSONMap  `gorm:"column:address;type:jsonb;serializer:json;not null"`
	Items     types.JSONList `gorm:"column:items;type:jsonb;serializer:json;not null"`
	Status    string         `gorm:"column:status;type:text;not null"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
