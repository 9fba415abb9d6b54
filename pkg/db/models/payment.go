package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is a flat record of a payment attempt against an order.
type Payment struct {
	ID        string          `gorm:"column:id;type:text;primaryKey"`
	OrderID   string          `gorm:"column:order_id;type:text;not null;index"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	Status    string          `gorm:"column:status;type:text;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
