package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inventory repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.StockEntry) (*models.StockEntry, error) {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *repository) Get(ctx context.Context, sku string) (*models.StockEntry, error) {
	var entry models.StockEntry
	err := r.db.WithContext(ctx).
		Where("sku = ?", sku).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// LockForUpdate reads one stock row and holds it exclusively until the
// enclosing transaction ends. sqlite serializes all writers itself and does
// not accept the locking clause, so it is skipped there.
func (r *repository) LockForUpdate(ctx context.Context, sku string) (*models.StockEntry, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var entry models.StockEntry
	if err := query.Where("sku = ?", sku).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) List(ctx context.Context) ([]models.StockEntry, error) {
	var entries []models.StockEntry
	err := r.db.WithContext(ctx).
		Order("sku ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ListNegative returns entries whose quantity has gone below zero. The
// reservation protocol should make this impossible; the audit sweep checks
// anyway.
func (r *repository) ListNegative(ctx context.Context) ([]models.StockEntry, error) {
	var entries []models.StockEntry
	err := r.db.WithContext(ctx).
		Where("quantity < 0").
		Order("sku ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ExistingSKUs returns the subset of the given SKUs that have a stock entry.
func (r *repository) ExistingSKUs(ctx context.Context, skus []string) ([]string, error) {
	if len(skus) == 0 {
		return nil, nil
	}
	var existing []string
	err := r.db.WithContext(ctx).
		Model(&models.StockEntry{}).
		Where("sku IN ?", skus).
		Order("sku ASC").
		Pluck("sku", &existing).Error
	if err != nil {
		return nil, err
	}
	return existing, nil
}

func (r *repository) SetQuantity(ctx context.Context, sku string, quantity int) error {
	res := r.db.WithContext(ctx).
		Model(&models.StockEntry{}).
		Where("sku = ?", sku).
		Update("quantity", quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Adjust applies quantity += delta as one statement against the stored value,
// never against a previously read copy.
func (r *repository) Adjust(ctx context.Context, sku string, delta int) error {
	res := r.db.WithContext(ctx).
		Model(&models.StockEntry{}).
		Where("sku = ?", sku).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateIfMissing inserts the row with the given quantity. A row created
// concurrently by another path is credited with the quantity instead of
// clobbered.
func (r *repository) CreateIfMissing(ctx context.Context, sku string, quantity int) error {
	entry := models.StockEntry{SKU: sku, Quantity: quantity}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entry)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.Adjust(ctx, sku, quantity)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, sku string) error {
	return r.db.WithContext(ctx).
		Where("sku = ?", sku).
		Delete(&models.StockEntry{}).Error
}

func (r *repository) RecordMovement(ctx context.Context, movement *models.StockMovement) error {
	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(movement).Error
}

func (r *repository) ListMovements(ctx context.Context, sku string, params pagination.Params) (*MovementList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Where("sku = ?", sku)
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.StockMovement
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	limit := pagination.NormalizeLimit(params.Limit)
	list := &MovementList{Movements: rows}
	if len(rows) > limit {
		list.Movements = rows[:limit]
		last := list.Movements[limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return list, nil
}
