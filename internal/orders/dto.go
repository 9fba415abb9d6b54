package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/types"
)

// CreateOrderInput carries a full order record. The id comes from the caller.
type CreateOrderInput struct {
	ID                  string
	UserID              *string
	Address             types.JSONMap
	Items               types.JSONList
	Total               decimal.Decimal
	Currency            string
	Status              string
	RefundAttempt       types.JSONMap
	PaymentRefundStatus *string
}

// UpdateOrderInput is the shallow-merge payload. A nil field was omitted from
// the request and keeps its stored value; refund metadata written earlier
// survives an update that does not mention it.
type UpdateOrderInput struct {
	UserID              *string
	Address             *types.JSONMap
	Items               *types.JSONList
	Total               *decimal.Decimal
	Currency            *string
	Status              *string
	RefundAttempt       *types.JSONMap
	PaymentRefundStatus *string
}

// RefundMetadataResult reports which allow-listed columns a refund patch
// touched.
type RefundMetadataResult struct {
	Updated     bool     `json:"updated"`
	UpdatedKeys []string `json:"updated_keys,omitempty"`
	Reason      string   `json:"reason,omitempty"`
}

// OrderDTO exposes the order record in API responses.
type OrderDTO struct {
	ID                  string          `json:"id"`
	UserID              *string         `json:"user_id,omitempty"`
	Address             types.JSONMap   `json:"address"`
	Items               types.JSONList  `json:"items"`
	Total               decimal.Decimal `json:"total"`
	Currency            string          `json:"currency"`
	Status              string          `json:"status"`
	RefundAttempt       types.JSONMap   `json:"refund_attempt,omitempty"`
	PaymentRefundStatus *string         `json:"payment_refund_status,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// FromModel maps the persisted order into a DTO.
func FromModel(m *models.Order) *OrderDTO {
	if m == nil {
		return nil
	}
	return &OrderDTO{
		ID:                  m.ID,
		UserID:              m.UserID,
		Address:             m.Address,
		Items:               m.Items,
		Total:               m.Total,
		Currency:            m.Currency,
		Status:              m.Status,
		RefundAttempt:       m.RefundAttempt,
		PaymentRefundStatus: m.PaymentRefundStatus,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

// FromModels maps a result set into response DTOs.
func FromModels(list []models.Order) []OrderDTO {
	dtos := make([]OrderDTO, 0, len(list))
	for i := range list {
		dtos = append(dtos, *FromModel(&list[i]))
	}
	return dtos
}
