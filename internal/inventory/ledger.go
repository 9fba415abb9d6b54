package inventory

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

// Ledger applies locked stock checks and mutations inside a caller-owned
// transaction. The reservation coordinator composes these primitives: every
// line is locked and validated before any deduct runs, so no committed
// quantity can go negative.
type Ledger struct {
	repo Repository
}

// NewLedger exposes the stock primitives consumed by the reservation
// coordinator.
func NewLedger(repo Repository) *Ledger {
	return &Ledger{repo: repo}
}

// LockEntry holds the SKU's row for the rest of the transaction and returns
// it. A missing row surfaces as gorm.ErrRecordNotFound.
func (l *Ledger) LockEntry(ctx context.Context, tx *gorm.DB, sku string) (*models.StockEntry, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock lock")
	}
	return l.repo.WithTx(tx).LockForUpdate(ctx, sku)
}

// Deduct subtracts qty from a row the caller already locked and validated,
// and journals the change against the reservation.
func (l *Ledger) Deduct(ctx context.Context, tx *gorm.DB, sku string, qty int, reservationID string) error {
	if qty <= 0 {
		return nil
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock deduct")
	}

	repo := l.repo.WithTx(tx)
	if err := repo.Adjust(ctx, sku, -qty); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deduct stock")
	}
	movement := &models.StockMovement{
		SKU:           sku,
		Delta:         -qty,
		Reason:        enums.MovementReasonReserve,
		ReservationID: &reservationID,
	}
	if err := repo.RecordMovement(ctx, movement); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record reserve movement")
	}
	return nil
}

// Restore returns qty to the SKU. A row deleted out-of-band is recreated with
// exactly the restored quantity; otherwise the quantity is credited in place.
func (l *Ledger) Restore(ctx context.Context, tx *gorm.DB, sku string, qty int, reservationID string) error {
	if qty <= 0 {
		return nil
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock restore")
	}

	repo := l.repo.WithTx(tx)
	_, err := repo.LockForUpdate(ctx, sku)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := repo.CreateIfMissing(ctx, sku, qty); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recreate stock entry")
		}
	case err != nil:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock stock entry")
	default:
		if err := repo.Adjust(ctx, sku, qty); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore stock")
		}
	}

	movement := &models.StockMovement{
		SKU:           sku,
		Delta:         qty,
		Reason:        enums.MovementReasonRelease,
		ReservationID: &reservationID,
	}
	if err := repo.RecordMovement(ctx, movement); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record release movement")
	}
	return nil
}
