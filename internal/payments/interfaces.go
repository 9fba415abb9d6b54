package payments

import (
	"context"

	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
)

// Repository defines persistence operations for the payments table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	LockByID(ctx context.Context, id string) (*models.Payment, error)
	List(ctx context.Context) ([]models.Payment, error)
	Overwrite(ctx context.Context, payment *models.Payment) error
	Delete(ctx context.Context, id string) error
}
