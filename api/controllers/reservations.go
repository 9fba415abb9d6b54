package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stockroomhq/stockroom-backend/api/responses"
	"github.com/stockroomhq/stockroom-backend/api/validators"
	"github.com/stockroomhq/stockroom-backend/internal/reservations"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
	"github.com/stockroomhq/stockroom-backend/pkg/types"
)

// ReservationCreate places a hold on stock for an order. Every line must be
// coverable or nothing is held. New reservations always start in reserved,
// whatever status the payload names.
func ReservationCreate(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservations service unavailable"))
			return
		}

		var req createReservationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reservation, err := svc.Reserve(r.Context(), reservations.ReserveInput{
			ID:      req.ID,
			OrderID: req.OrderID,
			Items:   toReservationLines(req.Items),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, reservations.FromModel(reservation))
	}
}

// ReservationList returns every reservation record.
func ReservationList(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservations service unavailable"))
			return
		}

		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, reservations.FromModels(list))
	}
}

// ReservationDetail returns a single reservation by id.
func ReservationDetail(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservations service unavailable"))
			return
		}

		reservation, err := svc.Get(r.Context(), chi.URLParam(r, "reservationId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, reservations.FromModel(reservation))
	}
}

// ReservationUpdate replaces a reservation and settles stock according to the
// status transition. Transitions outside the lifecycle are rejected without
// touching stock. A payload id is ignored in favor of the path id.
func ReservationUpdate(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservations service unavailable"))
			return
		}

		var req updateReservationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseReservationStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid reservation status"))
			return
		}

		reservation, err := svc.Update(r.Context(), chi.URLParam(r, "reservationId"), reservations.UpdateInput{
			OrderID: req.OrderID,
			Items:   toReservationLines(req.Items),
			Status:  status,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, reservations.FromModel(reservation))
	}
}

// ReservationDelete cancels a reservation, restoring held stock when it was
// still reserved. Deleting an absent id is a no-op.
func ReservationDelete(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservations service unavailable"))
			return
		}

		if err := svc.Delete(r.Context(), chi.URLParam(r, "reservationId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteNoContent(w)
	}
}

func toReservationLines(lines []reservationLineRequest) types.ReservationLines {
	out := make(types.ReservationLines, 0, len(lines))
	for _, line := range lines {
		out = append(out, types.ReservationLine{SKU: line.SKU, Qty: line.Qty})
	}
	return out
}

type reservationLineRequest struct {
	SKU string `json:"sku" validate:"required"`
	Qty int    `json:"qty" validate:"gt=0"`
}

// createReservationRequest accepts a status field for payload symmetry with
// updates; creates ignore it.
type createReservationRequest struct {
	ID      string                   `json:"id" validate:"required"`
	OrderID string                   `json:"order_id" validate:"required"`
	Items   []reservationLineRequest `json:"items" validate:"required,min=1,dive"`
	Status  string                   `json:"status"`
}

// updateReservationRequest is a full replacement. The id field is accepted
// for symmetry and ignored.
type updateReservationRequest struct {
	ID      string                   `json:"id"`
	OrderID string                   `json:"order_id" validate:"required"`
	Items   []reservationLineRequest `json:"items" validate:"required,min=1,dive"`
	Status  string                   `json:"status" validate:"required"`
}
