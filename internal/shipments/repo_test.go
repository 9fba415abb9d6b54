package shipments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	dbpkg "github.com/stockroomhq/stockroom-backend/pkg/db"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:shipments_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Shipment{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func sampleShipment(id string) *models.Shipment {
	return &models.Shipment{
		ID:      id,
		OrderID: "ord_1",
		Address: types.JSONMap{"city": "Pune", "pincode": "411001"},
		Items:   types.JSONList{map[string]any{"sku": "WIDGET-1", "qty": float64(2)}},
		Status:  "packed",
	}
}

func TestRepositoryCreateAndFind(t *testing.T) {
	t.Parallel()

	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	if _, err := repo.Create(ctx, sampleShipment("shp_1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	found, err := repo.FindByID(ctx, "shp_1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.OrderID != "ord_1" || found.Status != "packed" {
		t.Fatalf("unexpected shipment %+v", found)
	}
	if found.Address["city"] != "Pune" {
		t.Fatalf("address did not round-trip: %+v", found.Address)
	}
	if len(found.Items) != 1 {
		t.Fatalf("items did not round-trip: %+v", found.Items)
	}
	line, ok := found.Items[0].(map[string]any)
	if !ok || line["sku"] != "WIDGET-1" || line["qty"] != float64(2) {
		t.Fatalf("unexpected line %+v", found.Items[0])
	}
}

func TestRepositoryFindMissing(t *testing.T) {
	t.Parallel()

	repo := NewRepository(newTestDB(t))

	_, err := repo.FindByID(context.Background(), "shp_gone")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}

func TestRepositoryCreateDuplicate(t *testing.T) {
	t.Parallel()

	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	if _, err := repo.Create(ctx, sampleShipment("shp_1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := repo.Create(ctx, sampleShipment("shp_1"))
	if err == nil || !dbpkg.IsUniqueViolation(err, "") {
		t.Fatalf("expected unique violation, got %v", err)
	}
}

func TestRepositoryOverwritePreservesCreatedAt(t *testing.T) {
	t.Parallel()

	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	shipment := sampleShipment("shp_1")
	shipment.CreatedAt = time.Date(2025, 4, 14, 9, 0, 0, 0, time.UTC)
	if _, err := repo.Create(ctx, shipment); err != nil {
		t.Fatalf("create: %v", err)
	}

	locked, err := repo.LockByID(ctx, "shp_1")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	locked.Status = "delivered"
	locked.Address = types.JSONMap{"city": "Mumbai"}
	if err := repo.Overwrite(ctx, locked); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	found, err := repo.FindByID(ctx, "shp_1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.Status != "delivered" || found.Address["city"] != "Mumbai" {
		t.Fatalf("overwrite not applied: %+v", found)
	}
	if !found.CreatedAt.Equal(shipment.CreatedAt) {
		t.Fatalf("created_at changed: %s vs %s", found.CreatedAt, shipment.CreatedAt)
	}
}

func TestRepositoryDeleteIdempotent(t *testing.T) {
	t.Parallel()

	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	if _, err := repo.Create(ctx, sampleShipment("shp_1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Delete(ctx, "shp_1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, "shp_1"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if _, err := repo.FindByID(ctx, "shp_1"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record gone, got %v", err)
	}
}

func TestRepositoryListByCreatedAt(t *testing.T) {
	t.Parallel()

	repo := NewRepository(newTestDB(t))
	ctx := context.Background()

	first := sampleShipment("shp_1")
	first.CreatedAt = time.Date(2025, 4, 14, 9, 0, 0, 0, time.UTC)
	second := sampleShipment("shp_2")
	second.CreatedAt = time.Date(2025, 4, 15, 9, 0, 0, 0, time.UTC)
	for _, shipment := range []*models.Shipment{second, first} {
		if _, err := repo.Create(ctx, shipment); err != nil {
			t.Fatalf("create %s: %v", shipment.ID, err)
		}
	}

	listed, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 2 || listed[0].ID != "shp_1" || listed[1].ID != "shp_2" {
		t.Fatalf("unexpected order %+v", listed)
	}
}
