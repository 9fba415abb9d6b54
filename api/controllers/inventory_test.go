package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stockroomhq/stockroom-backend/internal/inventory"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/pagination"
)

type stubInventoryService struct {
	entry     *models.StockEntry
	list      []models.StockEntry
	movements *inventory.MovementList
	err       error

	gotUpsert   *inventory.UpsertInput
	gotSKU      string
	gotQuantity int
	gotDelta    int
	gotParams   pagination.Params
}

func (s *stubInventoryService) Upsert(_ context.Context, input inventory.UpsertInput) (*models.StockEntry, error) {
	s.gotUpsert = &input
	return s.entry, s.err
}

func (s *stubInventoryService) Get(_ context.Context, sku string) (*models.StockEntry, error) {
	s.gotSKU = sku
	return s.entry, s.err
}

func (s *stubInventoryService) List(context.Context) ([]models.StockEntry, error) {
	return s.list, s.err
}

func (s *stubInventoryService) SetQuantity(_ context.Context, sku string, quantity int) (*models.StockEntry, error) {
	s.gotSKU = sku
	s.gotQuantity = quantity
	return s.entry, s.err
}

func (s *stubInventoryService) AdjustQuantity(_ context.Context, sku string, delta int) (*models.StockEntry, error) {
	s.gotSKU = sku
	s.gotDelta = delta
	return s.entry, s.err
}

func (s *stubInventoryService) Delete(_ context.Context, sku string) error {
	s.gotSKU = sku
	return s.err
}

func (s *stubInventoryService) ListMovements(_ context.Context, sku string, params pagination.Params) (*inventory.MovementList, error) {
	s.gotSKU = sku
	s.gotParams = params
	return s.movements, s.err
}

func TestInventoryUpsertSuccess(t *testing.T) {
	stub := &stubInventoryService{entry: &models.StockEntry{SKU: "WIDGET-1", Quantity: 10}}
	handler := InventoryUpsert(stub, nil)

	req := httptest.NewRequest(http.MethodPost, "/inventory", bytes.NewReader([]byte(`{"sku": "WIDGET-1", "quantity": 10}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data inventory.StockEntryDTO `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.SKU != "WIDGET-1" || envelope.Data.Quantity != 10 {
		t.Fatalf("unexpected entry %+v", envelope.Data)
	}
}

func TestInventoryUpsertRejectsNegativeQuantity(t *testing.T) {
	handler := InventoryUpsert(&stubInventoryService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/inventory", bytes.NewReader([]byte(`{"sku": "WIDGET-1", "quantity": -4}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestInventorySetQuantityRequiresQuantity(t *testing.T) {
	handler := InventorySetQuantity(&stubInventoryService{}, nil)

	req := httptest.NewRequest(http.MethodPut, "/inventory/WIDGET-1", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	req = withRouteParam(req, "sku", "WIDGET-1")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestInventorySetQuantityRejectsSKUField(t *testing.T) {
	handler := InventorySetQuantity(&stubInventoryService{}, nil)

	req := httptest.NewRequest(http.MethodPut, "/inventory/WIDGET-1", bytes.NewReader([]byte(`{"sku": "OTHER", "quantity": 5}`)))
	req.Header.Set("Content-Type", "application/json")
	req = withRouteParam(req, "sku", "WIDGET-1")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestInventorySetQuantityZero(t *testing.T) {
	stub := &stubInventoryService{entry: &models.StockEntry{SKU: "WIDGET-1", Quantity: 0}}
	handler := InventorySetQuantity(stub, nil)

	req := httptest.NewRequest(http.MethodPut, "/inventory/WIDGET-1", bytes.NewReader([]byte(`{"quantity": 0}`)))
	req.Header.Set("Content-Type", "application/json")
	req = withRouteParam(req, "sku", "WIDGET-1")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body %s", rec.Code, rec.Body.String())
	}
	if stub.gotSKU != "WIDGET-1" || stub.gotQuantity != 0 {
		t.Fatalf("expected set quantity 0 for WIDGET-1, got %q %d", stub.gotSKU, stub.gotQuantity)
	}
}

func TestInventoryAdjustPassesDelta(t *testing.T) {
	stub := &stubInventoryService{entry: &models.StockEntry{SKU: "WIDGET-1", Quantity: 7}}
	handler := InventoryAdjust(stub, nil)

	req := httptest.NewRequest(http.MethodPost, "/inventory/WIDGET-1/adjust", bytes.NewReader([]byte(`{"delta": -3}`)))
	req.Header.Set("Content-Type", "application/json")
	req = withRouteParam(req, "sku", "WIDGET-1")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body %s", rec.Code, rec.Body.String())
	}
	if stub.gotDelta != -3 {
		t.Fatalf("expected delta -3 got %d", stub.gotDelta)
	}
}

func TestInventoryAdjustRequiresDelta(t *testing.T) {
	handler := InventoryAdjust(&stubInventoryService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/inventory/WIDGET-1/adjust", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	req = withRouteParam(req, "sku", "WIDGET-1")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestInventoryMovementsPagination(t *testing.T) {
	stub := &stubInventoryService{movements: &inventory.MovementList{NextCursor: "next"}}
	handler := InventoryMovements(stub, nil)

	req := httptest.NewRequest(http.MethodGet, "/inventory/WIDGET-1/movements?limit=5&cursor=abc", nil)
	req = withRouteParam(req, "sku", "WIDGET-1")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body %s", rec.Code, rec.Body.String())
	}
	if stub.gotParams.Limit != 5 || stub.gotParams.Cursor != "abc" {
		t.Fatalf("unexpected params %+v", stub.gotParams)
	}

	var envelope struct {
		Data inventory.MovementPageDTO `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.NextCursor != "next" {
		t.Fatalf("expected next cursor, got %+v", envelope.Data)
	}
}

func TestInventoryMovementsRejectsBadLimit(t *testing.T) {
	handler := InventoryMovements(&stubInventoryService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/inventory/WIDGET-1/movements?limit=many", nil)
	req = withRouteParam(req, "sku", "WIDGET-1")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestInventoryDetailNotFound(t *testing.T) {
	stub := &stubInventoryService{err: pkgerrors.New(pkgerrors.CodeNotFound, "sku not found")}
	handler := InventoryDetail(stub, nil)

	req := httptest.NewRequest(http.MethodGet, "/inventory/GONE", nil)
	req = withRouteParam(req, "sku", "GONE")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}

	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Message != "sku not found" {
		t.Fatalf("expected sku not found got %q", envelope.Error.Message)
	}
}

func TestInventoryDeleteNoContent(t *testing.T) {
	stub := &stubInventoryService{}
	handler := InventoryDelete(stub, nil)

	req := httptest.NewRequest(http.MethodDelete, "/inventory/WIDGET-1", nil)
	req = withRouteParam(req, "sku", "WIDGET-1")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", rec.Code)
	}
	if stub.gotSKU != "WIDGET-1" {
		t.Fatalf("expected sku WIDGET-1 got %q", stub.gotSKU)
	}
}
