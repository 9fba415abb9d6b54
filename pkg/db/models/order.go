package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/stockroomhq/stockroom-backend/pkg/types"
)

// Order is a flat commerce record. The id is supplied by the caller; the
// reservation/payment/shipment references to it are logical only and may
// dangle.
type Order struct {
	ID                  string          `gorm:"column:id;type:text;primaryKey"`
	UserID              *string         `gorm:"column:user_id;type:text"`
	Address             types.JSONMap   `gorm:"column:address;type:jsonb;serializer:json"`
	Items               types.JSONList  `gorm:"column:items;type:jsonb;serializer:json;not null"`
	Total               decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null"`
	Currency            string          `gorm:"column:currency;type:text;not null;default:'INR'"`
	Status              string          `gorm:"column:status;type:text;not null"`
	RefundAttempt       types.JSONMap   `gorm:"column:refund_attempt;type:jsonb;serializer:json"`
	PaymentRefundStatus *string         `gorm:"column:payment_refund_status;type:text"`
	CreatedAt           time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
