package reservations

import (
	"time"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	"github.com/stockroomhq/stockroom-backend/pkg/types"
)

// ReservationDTO exposes the reservation record in API responses.
type ReservationDTO struct {
	ID        string                  `json:"id"`
	OrderID   string                  `json:"order_id"`
	Items     types.ReservationLines  `json:"items"`
	Status    enums.ReservationStatus `json:"status"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
}

// FromModel maps the persisted reservation into a DTO.
func FromModel(m *models.Reservation) *ReservationDTO {
	if m == nil {
		return nil
	}
	return &ReservationDTO{
		ID:        m.ID,
		OrderID:   m.OrderID,
		Items:     m.Items,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromModels maps a result set into response DTOs.
func FromModels(list []models.Reservation) []ReservationDTO {
	dtos := make([]ReservationDTO, 0, len(list))
	for i := range list {
		dtos = append(dtos, *FromModel(&list[i]))
	}
	return dtos
}
