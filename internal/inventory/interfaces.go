package inventory

import (
	"context"

	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/pagination"
)

// Repository defines persistence operations for the inventory and
// stock_movements tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.StockEntry) (*models.StockEntry, error)
	Get(ctx context.Context, sku string) (*models.StockEntry, error)
	LockForUpdate(ctx context.Context, sku string) (*models.StockEntry, error)
	List(ctx context.Context) ([]models.StockEntry, error)
	ListNegative(ctx context.Context) ([]models.StockEntry, error)
	ExistingSKUs(ctx context.Context, skus []string) ([]string, error)
	SetQuantity(ctx context.Context, sku string, quantity int) error
	Adjust(ctx context.Context, sku string, delta int) error
	CreateIfMissing(ctx context.Context, sku string, quantity int) error
	Delete(ctx context.Context, sku string) error
	RecordMovement(ctx context.Context, movement *models.StockMovement) error
	ListMovements(ctx context.Context, sku string, params pagination.Params) (*MovementList, error)
}

// MovementList is one page of a SKU's movement journal, newest first.
type MovementList struct {
	Movements  []models.StockMovement
	NextCursor string
}
