package shipments

import (
	"context"

	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
)

// Repository defines persistence operations for the shipments table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, shipment *models.Shipment) (*models.Shipment, error)
	FindByID(ctx context.Context, id string) (*models.Shipment, error)
	LockByID(ctx context.Context, id string) (*models.Shipment, error)
	List(ctx context.Context) ([]models.Shipment, error)
	Overwrite(ctx context.Context, shipment *models.Shipment) error
	Delete(ctx context.Context, id string) error
}
