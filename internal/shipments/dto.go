package shipments

import (
	"time"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/types"
)

// ShipmentInput carries the full shipment record for create and replace. A
// replace keyed by path id ignores the payload id.
type ShipmentInput struct {
	ID      string
	OrderID string
	Address types.JSONMap
	Items   types.JSONList
	Status  string
}

// ShipmentDTO exposes the shipment record in API responses.
type ShipmentDTO struct {
	ID        string         `json:"id"`
	OrderID   string         `json:"order_id"`
	Address   types.JSONMap  `json:"address"`
	Items     types.JSONList `json:"items"`
	Status    string         `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// FromModel maps the persisted shipment into a DTO.
func FromModel(m *models.Shipment) *ShipmentDTO {
	if m == nil {
		return nil
	}
	return &ShipmentDTO{
		ID:        m.ID,
		OrderID:   m.OrderID,
		Address:   m.Address,
		Items:     m.Items,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromModels maps a result set into response DTOs.
func FromModels(list []models.Shipment) []ShipmentDTO {
	dtos := make([]ShipmentDTO, 0, len(list))
	for i := range list {
		dtos = append(dtos, *FromModel(&list[i]))
	}
	return dtos
}
