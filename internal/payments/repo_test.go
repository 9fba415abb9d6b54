package payments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	dbpkg "github.com/stockroomhq/stockroom-backend/pkg/db"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:payments_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Payment{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func samplePayment(id string) *models.Payment {
	return &models.Payment{
		ID:      id,
		OrderID: "ord_1",
		Amount:  decimal.RequireFromString("149.50"),
		Status:  "captured",
	}
}

func TestRepositoryCreateAndFind(t *testing.T) {
	t.Parallel()

	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	if _, err := repo.Create(ctx, samplePayment("pay_1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	found, err := repo.FindByID(ctx, "pay_1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.OrderID != "ord_1" || found.Status != "captured" {
		t.Fatalf("unexpected payment %+v", found)
	}
	if !found.Amount.Equal(decimal.RequireFromString("149.50")) {
		t.Fatalf("unexpected amount %s", found.Amount)
	}
}

func TestRepositoryFindMissing(t *testing.T) {
	t.Parallel()

	repo := NewRepository(newTestDB(t))

	_, err := repo.FindByID(context.Background(), "pay_gone")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}

func TestRepositoryCreateDuplicate(t *testing.T) {
	t.Parallel()

	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	if _, err := repo.Create(ctx, samplePayment("pay_1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := repo.Create(ctx, samplePayment("pay_1"))
	if err == nil || !dbpkg.IsUniqueViolation(err, "") {
		t.Fatalf("expected unique violation, got %v", err)
	}
}

func TestRepositoryOverwritePreservesCreatedAt(t *testing.T) {
	t.Parallel()

	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	payment := samplePayment("pay_1")
	payment.CreatedAt = time.Date(2025, 4, 14, 9, 0, 0, 0, time.UTC)
	if _, err := repo.Create(ctx, payment); err != nil {
		t.Fatalf("create: %v", err)
	}

	locked, err := repo.LockByID(ctx, "pay_1")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	locked.Status = "refunded"
	locked.Amount = decimal.NewFromInt(0)
	if err := repo.Overwrite(ctx, locked); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	found, err := repo.FindByID(ctx, "pay_1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.Status != "refunded" || !found.Amount.IsZero() {
		t.Fatalf("overwrite not applied: %+v", found)
	}
	if !found.CreatedAt.Equal(payment.CreatedAt) {
		t.Fatalf("created_at changed: %s vs %s", found.CreatedAt, payment.CreatedAt)
	}
}

func TestRepositoryDeleteIdempotent(t *testing.T) {
	t.Parallel()

	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	if _, err := repo.Create(ctx, samplePayment("pay_1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Delete(ctx, "pay_1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, "pay_1"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if _, err := repo.FindByID(ctx, "pay_1"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record gone, got %v", err)
	}
}

func TestRepositoryListByCreatedAt(t *testing.T) {
	t.Parallel()

	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	first := samplePayment("pay_1")
	first.CreatedAt = time.Date(2025, 4, 14, 9, 0, 0, 0, time.UTC)
	second := samplePayment("pay_2")
	second.CreatedAt = time.Date(2025, 4, 15, 9, 0, 0, 0, time.UTC)
	for _, payment := range []*models.Payment{second, first} {
		if _, err := repo.Create(ctx, payment); err != nil {
			t.Fatalf("create %s: %v", payment.ID, err)
		}
	}

	listed, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 2 || listed[0].ID != "pay_1" || listed[1].ID != "pay_2" {
		t.Fatalf("unexpected order %+v", listed)
	}
}
