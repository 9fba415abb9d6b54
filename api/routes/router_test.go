package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stockroomhq/stockroom-backend/internal/inventory"
	"github.com/stockroomhq/stockroom-backend/internal/orders"
	"github.com/stockroomhq/stockroom-backend/internal/payments"
	"github.com/stockroomhq/stockroom-backend/internal/reservations"
	"github.com/stockroomhq/stockroom-backend/internal/shipments"
	"github.com/stockroomhq/stockroom-backend/pkg/config"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
	"github.com/stockroomhq/stockroom-backend/pkg/pagination"
	"github.com/stockroomhq/stockroom-backend/pkg/redis"
	"github.com/stockroomhq/stockroom-backend/pkg/types"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubOrdersService struct{}

// Create implements [orders.Service].
func (stubOrdersService) Create(ctx context.Context, input orders.CreateOrderInput) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) Get(ctx context.Context, id string) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) List(context.Context) ([]models.Order, error) {
	return []models.Order{}, nil
}

func (stubOrdersService) MergeUpdate(ctx context.Context, id string, input orders.UpdateOrderInput) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) PatchRefundMetadata(ctx context.Context, id string, payload types.JSONMap) (*orders.RefundMetadataResult, error) {
	panic("unimplemented")
}

func (stubOrdersService) Delete(ctx context.Context, id string) error {
	return nil
}

type stubInventoryService struct{}

// Upsert implements [inventory.Service].
func (stubInventoryService) Upsert(ctx context.Context, input inventory.UpsertInput) (*models.StockEntry, error) {
	panic("unimplemented")
}

func (stubInventoryService) Get(_ context.Context, sku string) (*models.StockEntry, error) {
	return &models.StockEntry{SKU: sku, Quantity: 7}, nil
}

func (stubInventoryService) List(context.Context) ([]models.StockEntry, error) {
	return []models.StockEntry{}, nil
}

func (stubInventoryService) SetQuantity(ctx context.Context, sku string, quantity int) (*models.StockEntry, error) {
	panic("unimplemented")
}

func (stubInventoryService) AdjustQuantity(ctx context.Context, sku string, delta int) (*models.StockEntry, error) {
	panic("unimplemented")
}

func (stubInventoryService) Delete(ctx context.Context, sku string) error {
	panic("unimplemented")
}

func (stubInventoryService) ListMovements(_ context.Context, sku string, _ pagination.Params) (*inventory.MovementList, error) {
	return &inventory.MovementList{}, nil
}

type stubReservationsService struct{}

// Reserve implements [reservations.Service].
func (stubReservationsService) Reserve(ctx context.Context, input reservations.ReserveInput) (*models.Reservation, error) {
	panic("unimplemented")
}

func (stubReservationsService) Get(_ context.Context, id string) (*models.Reservation, error) {
	return &models.Reservation{
		ID:      id,
		OrderID: "ord-1",
		Items:   types.ReservationLines{{SKU: "WIDGET-1", Qty: 2}},
		Status:  enums.ReservationStatusReserved,
	}, nil
}

func (stubReservationsService) List(context.Context) ([]models.Reservation, error) {
	return []models.Reservation{}, nil
}

func (stubReservationsService) Update(ctx context.Context, id string, input reservations.UpdateInput) (*models.Reservation, error) {
	panic("unimplemented")
}

func (stubReservationsService) Delete(ctx context.Context, id string) error {
	panic("unimplemented")
}

type stubPaymentsService struct{}

// Create implements [payments.Service].
func (stubPaymentsService) Create(ctx context.Context, input payments.PaymentInput) (*models.Payment, error) {
	panic("unimplemented")
}

func (stubPaymentsService) Get(ctx context.Context, id string) (*models.Payment, error) {
	panic("unimplemented")
}

func (stubPaymentsService) List(context.Context) ([]models.Payment, error) {
	return []models.Payment{}, nil
}

func (stubPaymentsService) Replace(ctx context.Context, id string, input payments.PaymentInput) (*models.Payment, error) {
	panic("unimplemented")
}

func (stubPaymentsService) Delete(ctx context.Context, id string) error {
	panic("unimplemented")
}

type stubShipmentsService struct{}

func (stubShipmentsService) Create(_ context.Context, input shipments.ShipmentInput) (*models.Shipment, error) {
	return &models.Shipment{
		ID:      input.ID,
		OrderID: input.OrderID,
		Address: input.Address,
		Items:   input.Items,
		Status:  input.Status,
	}, nil
}

func (stubShipmentsService) Get(ctx context.Context, id string) (*models.Shipment, error) {
	panic("unimplemented")
}

func (stubShipmentsService) List(context.Context) ([]models.Shipment, error) {
	return []models.Shipment{}, nil
}

func (stubShipmentsService) Replace(ctx context.Context, id string, input shipments.ShipmentInput) (*models.Shipment, error) {
	panic("unimplemented")
}

func (stubShipmentsService) Delete(ctx context.Context, id string) error {
	panic("unimplemented")
}

func testConfig() *config.Config {
	return &config.Config{
		App:     config.AppConfig{Env: "test", Port: "0"},
		Service: config.ServiceConfig{Kind: "api"},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		&redis.Client{}, // no live store behind it
		stubOrdersService{},
		stubInventoryService{},
		stubReservationsService{},
		stubPaymentsService{},
		stubShipmentsService{},
	)
}

func TestResourceRoutesRegistered(t *testing.T) {
	router := newTestRouter(testConfig())

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"orders list", http.MethodGet, "/orders", http.StatusOK},
		{"order delete", http.MethodDelete, "/orders/ord-1", http.StatusNoContent},
		{"inventory list", http.MethodGet, "/inventory", http.StatusOK},
		{"inventory detail", http.MethodGet, "/inventory/WIDGET-1", http.StatusOK},
		{"inventory movements", http.MethodGet, "/inventory/WIDGET-1/movements", http.StatusOK},
		{"reservation list", http.MethodGet, "/inventory/reserve", http.StatusOK},
		{"reservation detail", http.MethodGet, "/inventory/reserve/res-1", http.StatusOK},
		{"payments list", http.MethodGet, "/payments", http.StatusOK},
		{"shipments list", http.MethodGet, "/shipments", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK},
		{"unknown path", http.MethodGet, "/warehouse", http.StatusNotFound},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != tt.want {
			t.Fatalf("%s: expected %d got %d", tt.name, tt.want, resp.Code)
		}
	}
}

func TestWriteRoutesRequireIdempotencyKey(t *testing.T) {
	router := newTestRouter(testConfig())

	paths := []string{"/orders", "/payments", "/inventory/reserve"}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 without key got %d", path, resp.Code)
		}

		var envelope struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			t.Fatalf("%s: decode response: %v", path, err)
		}
		if envelope.Error.Code != "VALIDATION_ERROR" {
			t.Fatalf("%s: expected VALIDATION_ERROR got %q", path, envelope.Error.Code)
		}
		if envelope.Error.Message != "Idempotency-Key header required" {
			t.Fatalf("%s: expected key message got %q", path, envelope.Error.Message)
		}
	}
}

func TestIdempotentRouteReportsStoreOutage(t *testing.T) {
	router := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"id":"ord-9"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "key-1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 with dead store got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != "DEPENDENCY_ERROR" {
		t.Fatalf("expected DEPENDENCY_ERROR got %q", envelope.Error.Code)
	}
}

func TestReserveMountWinsOverSKUWildcard(t *testing.T) {
	router := newTestRouter(testConfig())

	// The reserve mount owns POST, so the guard answers before any handler.
	reserve := httptest.NewRequest(http.MethodPost, "/inventory/reserve", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, reserve)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unkeyed reserve got %d", resp.Code)
	}

	// SKU paths stay on the wildcard routes, which register no POST.
	sku := httptest.NewRequest(http.MethodPost, "/inventory/WIDGET-1", strings.NewReader(`{}`))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, sku)
	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for sku post got %d", resp.Code)
	}
}

func TestShipmentCreateSkipsIdempotencyGuard(t *testing.T) {
	router := newTestRouter(testConfig())

	body := `{"id":"shp-9","order_id":"ord-1"}`
	req := httptest.NewRequest(http.MethodPost, "/shipments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 without key got %d", resp.Code)
	}

	var envelope struct {
		Data struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != "shp-9" {
		t.Fatalf("expected shipment shp-9 got %q", envelope.Data.ID)
	}
	if envelope.Data.Status != "created" {
		t.Fatalf("expected default status created got %q", envelope.Data.Status)
	}
}

func TestHealthReportsUnreachableRedis(t *testing.T) {
	router := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
	if got := resp.Header().Get("X-Stockroom-Env"); got != "test" {
		t.Fatalf("expected env header test got %q", got)
	}
	if resp.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}

	var envelope struct {
		Error struct {
			Code    string            `json:"code"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != "DEPENDENCY_ERROR" {
		t.Fatalf("expected DEPENDENCY_ERROR got %q", envelope.Error.Code)
	}
	if envelope.Error.Details["database"] != "ok" {
		t.Fatalf("expected database ok got %v", envelope.Error.Details)
	}
	if envelope.Error.Details["redis"] != "unreachable" {
		t.Fatalf("expected redis unreachable got %v", envelope.Error.Details)
	}
}
