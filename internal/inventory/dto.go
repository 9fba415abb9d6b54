package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

// StockEntryDTO exposes one ledger row in API responses.
type StockEntryDTO struct {
	SKU       string    `json:"sku"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MovementDTO exposes one stock journal line in API responses.
type MovementDTO struct {
	ID            uuid.UUID            `json:"id"`
	SKU           string               `json:"sku"`
	Delta         int                  `json:"delta"`
	Reason        enums.MovementReason `json:"reason"`
	ReservationID *string              `json:"reservation_id,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

// MovementPageDTO wraps a journal page with its continuation cursor.
type MovementPageDTO struct {
	Movements  []MovementDTO `json:"movements"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// FromModel maps the persisted stock entry into a DTO.
func FromModel(m *models.StockEntry) *StockEntryDTO {
	if m == nil {
		return nil
	}
	return &StockEntryDTO{
		SKU:       m.SKU,
		Quantity:  m.Quantity,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromModels maps a result set into response DTOs.
func FromModels(list []models.StockEntry) []StockEntryDTO {
	dtos := make([]StockEntryDTO, 0, len(list))
	for i := range list {
		dtos = append(dtos, *FromModel(&list[i]))
	}
	return dtos
}

// FromMovementPage maps a journal page into its response DTO.
func FromMovementPage(page *MovementList) *MovementPageDTO {
	if page == nil {
		return nil
	}
	dto := &MovementPageDTO{
		Movements:  make([]MovementDTO, 0, len(page.Movements)),
		NextCursor: page.NextCursor,
	}
	for _, m := range page.Movements {
		dto.Movements = append(dto.Movements, MovementDTO{
			ID:            m.ID,
			SKU:           m.SKU,
			Delta:         m.Delta,
			Reason:        m.Reason,
			ReservationID: m.ReservationID,
			CreatedAt:     m.CreatedAt,
		})
	}
	return dto
}
