package shipments

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/types"
)

type stubRepo struct {
	shipments map[string]*models.Shipment
}

func newStubRepo() *stubRepo {
	return &stubRepo{shipments: map[string]*models.Shipment{}}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, shipment *models.Shipment) (*models.Shipment, error) {
	if _, ok := s.shipments[shipment.ID]; ok {
		return nil, fmt.Errorf("UNIQUE constraint failed: shipments.id")
	}
	copied := *shipment
	s.shipments[shipment.ID] = &copied
	return shipment, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id string) (*models.Shipment, error) {
	stored, ok := s.shipments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *stored
	return &copied, nil
}

func (s *stubRepo) LockByID(ctx context.Context, id string) (*models.Shipment, error) {
	return s.FindByID(ctx, id)
}

func (s *stubRepo) List(ctx context.Context) ([]models.Shipment, error) {
	listed := make([]models.Shipment, 0, len(s.shipments))
	for _, stored := range s.shipments {
		listed = append(listed, *stored)
	}
	return listed, nil
}

func (s *stubRepo) Overwrite(ctx context.Context, shipment *models.Shipment) error {
	if _, ok := s.shipments[shipment.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *shipment
	s.shipments[shipment.ID] = &copied
	return nil
}

func (s *stubRepo) Delete(ctx context.Context, id string) error {
	delete(s.shipments, id)
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func sampleInput(id string) ShipmentInput {
	return ShipmentInput{
		ID:      id,
		OrderID: "ord_1",
		Address: types.JSONMap{"city": "Pune"},
		Items:   types.JSONList{map[string]any{"sku": "WIDGET-1", "qty": float64(2)}},
		Status:  "packed",
	}
}

func TestServiceCreate(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	svc := newTestService(t, repo)

	shipment, err := svc.Create(context.Background(), sampleInput("shp_1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if shipment.OrderID != "ord_1" || shipment.Status != "packed" {
		t.Fatalf("unexpected shipment %+v", shipment)
	}
	if _, ok := repo.shipments["shp_1"]; !ok {
		t.Fatal("shipment not stored")
	}
}

func TestServiceCreateValidation(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubRepo())
	ctx := context.Background()

	cases := []struct {
		name    string
		mutate  func(*ShipmentInput)
		message string
	}{
		{name: "missing id", mutate: func(in *ShipmentInput) { in.ID = "" }, message: "shipment id required"},
		{name: "missing order id", mutate: func(in *ShipmentInput) { in.OrderID = "" }, message: "order id required"},
		{name: "missing address", mutate: func(in *ShipmentInput) { in.Address = nil }, message: "address required"},
		{name: "missing items", mutate: func(in *ShipmentInput) { in.Items = nil }, message: "items required"},
		{name: "missing status", mutate: func(in *ShipmentInput) { in.Status = "" }, message: "status required"},
	}
	for _, tc := range cases {
		input := sampleInput("shp_1")
		tc.mutate(&input)
		_, err := svc.Create(ctx, input)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
		if typed.Message() != tc.message {
			t.Fatalf("%s: unexpected message %q", tc.name, typed.Message())
		}
	}
}

func TestServiceCreateAllowsEmptyCollections(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubRepo())

	input := sampleInput("shp_1")
	input.Address = types.JSONMap{}
	input.Items = types.JSONList{}
	if _, err := svc.Create(context.Background(), input); err != nil {
		t.Fatalf("empty collections are present, not missing: %v", err)
	}
}

func TestServiceCreateDuplicate(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubRepo())
	ctx := context.Background()

	if _, err := svc.Create(ctx, sampleInput("shp_1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.Create(ctx, sampleInput("shp_1"))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if typed.Message() != "shipment already exists" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestServiceGetMissing(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubRepo())

	_, err := svc.Get(context.Background(), "shp_gone")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if typed.Message() != "shipment not found" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestServiceReplaceOverwritesAllColumns(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()

	if _, err := svc.Create(ctx, sampleInput("shp_1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	replaced, err := svc.Replace(ctx, "shp_1", ShipmentInput{
		ID:      "shp_ignored",
		OrderID: "ord_2",
		Address: types.JSONMap{"city": "Mumbai"},
		Items:   types.JSONList{},
		Status:  "delivered",
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if replaced.ID != "shp_1" {
		t.Fatalf("path id must win, got %q", replaced.ID)
	}
	if replaced.OrderID != "ord_2" || replaced.Status != "delivered" {
		t.Fatalf("unexpected replacement %+v", replaced)
	}
	if replaced.Address["city"] != "Mumbai" || len(replaced.Items) != 0 {
		t.Fatalf("collections not replaced: %+v", replaced)
	}

	stored := repo.shipments["shp_1"]
	if stored.Status != "delivered" || stored.Address["city"] != "Mumbai" {
		t.Fatalf("store not replaced: %+v", stored)
	}
}

func TestServiceReplaceMissing(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubRepo())

	_, err := svc.Replace(context.Background(), "shp_gone", sampleInput("shp_gone"))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if typed.Message() != "shipment not found" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestServiceDeleteIdempotent(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()

	if _, err := svc.Create(ctx, sampleInput("shp_1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, "shp_1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, "shp_1"); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
}
