package reservations

import (
	"context"

	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

// Repository defines persistence operations for the inventory_reservations
// table. It carries no business logic; the coordinator owns the transition
// rules.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, reservation *models.Reservation) (*models.Reservation, error)
	FindByID(ctx context.Context, id string) (*models.Reservation, error)
	LockByID(ctx context.Context, id string) (*models.Reservation, error)
	List(ctx context.Context) ([]models.Reservation, error)
	ListByStatus(ctx context.Context, status enums.ReservationStatus) ([]models.Reservation, error)
	Overwrite(ctx context.Context, reservation *models.Reservation) error
	Delete(ctx context.Context, id string) error
}
