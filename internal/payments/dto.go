package payments

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
)

// PaymentInput carries the full payment record for create and replace. A
// replace keyed by path id ignores the payload id.
type PaymentInput struct {
	ID      string
	OrderID string
	Amount  decimal.Decimal
	Status  string
}

// PaymentDTO exposes the payment record in API responses.
type PaymentDTO struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// FromModel maps the persisted payment into a DTO.
func FromModel(m *models.Payment) *PaymentDTO {
	if m == nil {
		return nil
	}
	return &PaymentDTO{
		ID:        m.ID,
		OrderID:   m.OrderID,
		Amount:    m.Amount,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromModels maps a result set into response DTOs.
func FromModels(list []models.Payment) []PaymentDTO {
	dtos := make([]PaymentDTO, 0, len(list))
	for i := range list {
		dtos = append(dtos, *FromModel(&list[i]))
	}
	return dtos
}
