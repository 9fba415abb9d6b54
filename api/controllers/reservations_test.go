package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stockroomhq/stockroom-backend/internal/reservations"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/types"
)

type stubReservationsService struct {
	reservation *models.Reservation
	list        []models.Reservation
	err         error

	gotReserve *reservations.ReserveInput
	gotUpdate  *reservations.UpdateInput
	gotID      string
}

func (s *stubReservationsService) Reserve(_ context.Context, input reservations.ReserveInput) (*models.Reservation, error) {
	s.gotReserve = &input
	return s.reservation, s.err
}

func (s *stubReservationsService) Get(_ context.Context, id string) (*models.Reservation, error) {
	s.gotID = id
	return s.reservation, s.err
}

func (s *stubReservationsService) List(context.Context) ([]models.Reservation, error) {
	return s.list, s.err
}

func (s *stubReservationsService) Update(_ context.Context, id string, input reservations.UpdateInput) (*models.Reservation, error) {
	s.gotID = id
	s.gotUpdate = &input
	return s.reservation, s.err
}

func (s *stubReservationsService) Delete(_ context.Context, id string) error {
	s.gotID = id
	return s.err
}

func sampleReservation() *models.Reservation {
	return &models.Reservation{
		ID:      "res-1",
		OrderID: "ord-1",
		Items:   types.ReservationLines{{SKU: "WIDGET-1", Qty: 2}},
		Status:  enums.ReservationStatusReserved,
	}
}

func TestReservationCreateSuccess(t *testing.T) {
	stub := &stubReservationsService{reservation: sampleReservation()}
	handler := ReservationCreate(stub, nil)

	payload := []byte(`{
		"id": "res-1",
		"order_id": "ord-1",
		"items": [{"sku": "WIDGET-1", "qty": 2}, {"sku": "GADGET-2", "qty": 1}]
	}`)
	req := httptest.NewRequest(http.MethodPost, "/inventory/reserve", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body %s", rec.Code, rec.Body.String())
	}
	if stub.gotReserve == nil || len(stub.gotReserve.Items) != 2 {
		t.Fatalf("expected two lines, got %+v", stub.gotReserve)
	}
	if stub.gotReserve.Items[0].SKU != "WIDGET-1" || stub.gotReserve.Items[0].Qty != 2 {
		t.Fatalf("unexpected first line %+v", stub.gotReserve.Items[0])
	}

	var envelope struct {
		Data reservations.ReservationDTO `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Status != enums.ReservationStatusReserved {
		t.Fatalf("expected reserved status got %q", envelope.Data.Status)
	}
}

func TestReservationCreateIgnoresPayloadStatus(t *testing.T) {
	stub := &stubReservationsService{reservation: sampleReservation()}
	handler := ReservationCreate(stub, nil)

	payload := []byte(`{
		"id": "res-1",
		"order_id": "ord-1",
		"items": [{"sku": "WIDGET-1", "qty": 2}],
		"status": "committed"
	}`)
	req := httptest.NewRequest(http.MethodPost, "/inventory/reserve", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data reservations.ReservationDTO `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Status != enums.ReservationStatusReserved {
		t.Fatalf("expected new hold to be reserved, got %q", envelope.Data.Status)
	}
}

func TestReservationCreateRequiresItems(t *testing.T) {
	handler := ReservationCreate(&stubReservationsService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/inventory/reserve", bytes.NewReader([]byte(`{"id": "res-1", "order_id": "ord-1", "items": []}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestReservationCreateRejectsNonPositiveQty(t *testing.T) {
	handler := ReservationCreate(&stubReservationsService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/inventory/reserve", bytes.NewReader([]byte(`{"id": "res-1", "order_id": "ord-1", "items": [{"sku": "WIDGET-1", "qty": 0}]}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestReservationCreateDuplicateConflict(t *testing.T) {
	stub := &stubReservationsService{err: pkgerrors.New(pkgerrors.CodeConflict, "reservation already exists")}
	handler := ReservationCreate(stub, nil)

	req := httptest.NewRequest(http.MethodPost, "/inventory/reserve", bytes.NewReader([]byte(`{"id": "res-1", "order_id": "ord-1", "items": [{"sku": "WIDGET-1", "qty": 2}]}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}

func TestReservationUpdateSuccess(t *testing.T) {
	released := sampleReservation()
	released.Status = enums.ReservationStatusReleased
	stub := &stubReservationsService{reservation: released}
	handler := ReservationUpdate(stub, nil)

	payload := []byte(`{"order_id": "ord-1", "items": [{"sku": "WIDGET-1", "qty": 2}], "status": "released"}`)
	req := httptest.NewRequest(http.MethodPut, "/inventory/reserve/res-1", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req = withRouteParam(req, "reservationId", "res-1")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body %s", rec.Code, rec.Body.String())
	}
	if stub.gotID != "res-1" {
		t.Fatalf("expected path id res-1 got %q", stub.gotID)
	}
	if stub.gotUpdate.Status != enums.ReservationStatusReleased {
		t.Fatalf("expected released got %q", stub.gotUpdate.Status)
	}
}

func TestReservationUpdateRejectsUnknownStatus(t *testing.T) {
	handler := ReservationUpdate(&stubReservationsService{}, nil)

	payload := []byte(`{"order_id": "ord-1", "items": [{"sku": "WIDGET-1", "qty": 2}], "status": "burned"}`)
	req := httptest.NewRequest(http.MethodPut, "/inventory/reserve/res-1", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req = withRouteParam(req, "reservationId", "res-1")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestReservationUpdateStateConflict(t *testing.T) {
	stub := &stubReservationsService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "cannot move released hold to committed")}
	handler := ReservationUpdate(stub, nil)

	payload := []byte(`{"order_id": "ord-1", "items": [{"sku": "WIDGET-1", "qty": 2}], "status": "committed"}`)
	req := httptest.NewRequest(http.MethodPut, "/inventory/reserve/res-1", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req = withRouteParam(req, "reservationId", "res-1")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", rec.Code)
	}

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != "STATE_CONFLICT" {
		t.Fatalf("expected STATE_CONFLICT got %q", envelope.Error.Code)
	}
}

func TestReservationDetailNotFound(t *testing.T) {
	stub := &stubReservationsService{err: pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")}
	handler := ReservationDetail(stub, nil)

	req := httptest.NewRequest(http.MethodGet, "/inventory/reserve/res-9", nil)
	req = withRouteParam(req, "reservationId", "res-9")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestReservationDeleteNoContent(t *testing.T) {
	stub := &stubReservationsService{}
	handler := ReservationDelete(stub, nil)

	req := httptest.NewRequest(http.MethodDelete, "/inventory/reserve/res-1", nil)
	req = withRouteParam(req, "reservationId", "res-1")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", rec.Code)
	}
	if stub.gotID != "res-1" {
		t.Fatalf("expected id res-1 got %q", stub.gotID)
	}
}
