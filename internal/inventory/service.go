package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/outbox"
	"github.com/stockroomhq/stockroom-backend/pkg/outbox/payloads"
	"github.com/stockroomhq/stockroom-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes the stock ledger's direct inventory operations.
type Service interface {
	Upsert(ctx context.Context, input UpsertInput) (*models.StockEntry, error)
	Get(ctx context.Context, sku string) (*models.StockEntry, error)
	List(ctx context.Context) ([]models.StockEntry, error)
	SetQuantity(ctx context.Context, sku string, quantity int) (*models.StockEntry, error)
	AdjustQuantity(ctx context.Context, sku string, delta int) (*models.StockEntry, error)
	Delete(ctx context.Context, sku string) error
	ListMovements(ctx context.Context, sku string, params pagination.Params) (*MovementList, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

// UpsertInput is the stock-in payload. An existing SKU has its quantity
// replaced; an unknown SKU is created.
type UpsertInput struct {
	SKU      string
	Quantity int
}

// NewService builds an inventory service with the required dependencies.
func NewService(repo Repository, tx txRunner, outbox outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: outbox}, nil
}

func (s *service) Upsert(ctx context.Context, input UpsertInput) (*models.StockEntry, error) {
	if strings.TrimSpace(input.SKU) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku required")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}

	var result *models.StockEntry
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		prev, err := repo.LockForUpdate(ctx, input.SKU)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock stock entry")
		}

		prevQty := 0
		if prev == nil {
			created, err := repo.Create(ctx, &models.StockEntry{SKU: input.SKU, Quantity: input.Quantity})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stock entry")
			}
			result = created
		} else {
			prevQty = prev.Quantity
			if err := repo.SetQuantity(ctx, input.SKU, input.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stock entry")
			}
			prev.Quantity = input.Quantity
			result = prev
		}

		delta := input.Quantity - prevQty
		if delta == 0 {
			return nil
		}
		return s.journalAndEmit(ctx, tx, repo, input.SKU, delta, input.Quantity, enums.MovementReasonRestock)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, sku string) (*models.StockEntry, error) {
	if strings.TrimSpace(sku) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku required")
	}
	entry, err := s.repo.Get(ctx, sku)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sku not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock entry")
	}
	return entry, nil
}

func (s *service) List(ctx context.Context) ([]models.StockEntry, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock entries")
	}
	return entries, nil
}

func (s *service) SetQuantity(ctx context.Context, sku string, quantity int) (*models.StockEntry, error) {
	if strings.TrimSpace(sku) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku required")
	}
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}

	var result *models.StockEntry
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		prev, err := repo.LockForUpdate(ctx, sku)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "sku not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock stock entry")
		}
		if err := repo.SetQuantity(ctx, sku, quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stock entry")
		}

		delta := quantity - prev.Quantity
		prev.Quantity = quantity
		result = prev
		if delta == 0 {
			return nil
		}
		return s.journalAndEmit(ctx, tx, repo, sku, delta, quantity, enums.MovementReasonManual)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) AdjustQuantity(ctx context.Context, sku string, delta int) (*models.StockEntry, error) {
	if strings.TrimSpace(sku) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku required")
	}
	if delta == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delta must not be zero")
	}

	var result *models.StockEntry
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		entry, err := repo.LockForUpdate(ctx, sku)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "sku not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock stock entry")
		}
		next := entry.Quantity + delta
		if next < 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("Insufficient stock for %s", sku))
		}
		if err := repo.Adjust(ctx, sku, delta); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust stock entry")
		}

		entry.Quantity = next
		result = entry
		return s.journalAndEmit(ctx, tx, repo, sku, delta, next, enums.MovementReasonManual)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Delete(ctx context.Context, sku string) error {
	if strings.TrimSpace(sku) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "sku required")
	}
	if err := s.repo.Delete(ctx, sku); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete stock entry")
	}
	return nil
}

func (s *service) ListMovements(ctx context.Context, sku string, params pagination.Params) (*MovementList, error) {
	if strings.TrimSpace(sku) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku required")
	}
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	list, err := s.repo.ListMovements(ctx, sku, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock movements")
	}
	return list, nil
}

func (s *service) journalAndEmit(ctx context.Context, tx *gorm.DB, repo Repository, sku string, delta, quantity int, reason enums.MovementReason) error {
	movement := &models.StockMovement{SKU: sku, Delta: delta, Reason: reason}
	if err := repo.RecordMovement(ctx, movement); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock movement")
	}
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventStockAdjusted,
		AggregateType: enums.AggregateStockEntry,
		AggregateID:   sku,
		Version:       1,
		Data: payloads.StockAdjustedEvent{
			SKU:      sku,
			Delta:    delta,
			Quantity: quantity,
			Reason:   reason,
		},
	})
}
