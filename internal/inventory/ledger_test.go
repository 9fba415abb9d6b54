package inventory

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

func loadMovements(t *testing.T, db *gorm.DB, sku string) []models.StockMovement {
	t.Helper()
	var movements []models.StockMovement
	if err := db.Where("sku = ?", sku).Order("created_at ASC").Find(&movements).Error; err != nil {
		t.Fatalf("load movements: %v", err)
	}
	return movements
}

func TestLedgerLockEntryRequiresTx(t *testing.T) {
	t.Parallel()

	ledger := NewLedger(NewRepository(newTestDB(t)))
	_, err := ledger.LockEntry(context.Background(), nil, "WIDGET-1")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestLedgerLockEntryMissing(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ledger := NewLedger(NewRepository(db))

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := ledger.LockEntry(context.Background(), tx, "GONE-1")
		return err
	})
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}

func TestLedgerDeduct(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ledger := NewLedger(NewRepository(db))
	ctx := context.Background()
	seedEntry(t, db, "WIDGET-1", 10)

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := ledger.LockEntry(ctx, tx, "WIDGET-1"); err != nil {
			return err
		}
		return ledger.Deduct(ctx, tx, "WIDGET-1", 4, "res_1")
	})
	if err != nil {
		t.Fatalf("deduct: %v", err)
	}

	if qty := loadQuantity(t, db, "WIDGET-1"); qty != 6 {
		t.Fatalf("expected quantity 6, got %d", qty)
	}
	movements := loadMovements(t, db, "WIDGET-1")
	if len(movements) != 1 {
		t.Fatalf("expected 1 movement, got %d", len(movements))
	}
	if movements[0].Delta != -4 || movements[0].Reason != enums.MovementReasonReserve {
		t.Fatalf("unexpected movement %+v", movements[0])
	}
	if movements[0].ReservationID == nil || *movements[0].ReservationID != "res_1" {
		t.Fatalf("expected reservation id res_1, got %v", movements[0].ReservationID)
	}
}

func TestLedgerDeductZeroIsNoop(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ledger := NewLedger(NewRepository(db))
	ctx := context.Background()
	seedEntry(t, db, "WIDGET-1", 10)

	err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Deduct(ctx, tx, "WIDGET-1", 0, "res_1")
	})
	if err != nil {
		t.Fatalf("deduct zero: %v", err)
	}
	if qty := loadQuantity(t, db, "WIDGET-1"); qty != 10 {
		t.Fatalf("expected quantity unchanged, got %d", qty)
	}
	if movements := loadMovements(t, db, "WIDGET-1"); len(movements) != 0 {
		t.Fatalf("expected no movements, got %d", len(movements))
	}
}

func TestLedgerRestoreCreditsExistingRow(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ledger := NewLedger(NewRepository(db))
	ctx := context.Background()
	seedEntry(t, db, "WIDGET-1", 6)

	err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Restore(ctx, tx, "WIDGET-1", 4, "res_1")
	})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}

	if qty := loadQuantity(t, db, "WIDGET-1"); qty != 10 {
		t.Fatalf("expected quantity 10, got %d", qty)
	}
	movements := loadMovements(t, db, "WIDGET-1")
	if len(movements) != 1 {
		t.Fatalf("expected 1 movement, got %d", len(movements))
	}
	if movements[0].Delta != 4 || movements[0].Reason != enums.MovementReasonRelease {
		t.Fatalf("unexpected movement %+v", movements[0])
	}
}

func TestLedgerRestoreRecreatesDeletedRow(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ledger := NewLedger(NewRepository(db))
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Restore(ctx, tx, "WIDGET-1", 4, "res_1")
	})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}

	if qty := loadQuantity(t, db, "WIDGET-1"); qty != 4 {
		t.Fatalf("expected recreated row with quantity 4, got %d", qty)
	}
	movements := loadMovements(t, db, "WIDGET-1")
	if len(movements) != 1 {
		t.Fatalf("expected 1 movement, got %d", len(movements))
	}
	if movements[0].Delta != 4 || movements[0].Reason != enums.MovementReasonRelease {
		t.Fatalf("unexpected movement %+v", movements[0])
	}
}
