package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stockroomhq/stockroom-backend/api/responses"
	"github.com/stockroomhq/stockroom-backend/api/validators"
	"github.com/stockroomhq/stockroom-backend/internal/shipments"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
	"github.com/stockroomhq/stockroom-backend/pkg/types"
)

const defaultShipmentStatus = "created"

// ShipmentCreate inserts a shipment record keyed by the caller-supplied id.
func ShipmentCreate(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipments service unavailable"))
			return
		}

		var req shipmentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shipment, err := svc.Create(r.Context(), req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, shipments.FromModel(shipment))
	}
}

// ShipmentList returns every shipment record.
func ShipmentList(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipments service unavailable"))
			return
		}

		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, shipments.FromModels(list))
	}
}

// ShipmentDetail returns a single shipment by id.
func ShipmentDetail(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipments service unavailable"))
			return
		}

		shipment, err := svc.Get(r.Context(), chi.URLParam(r, "shipmentId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, shipments.FromModel(shipment))
	}
}

// ShipmentReplace overwrites a shipment record. A payload id is ignored in
// favor of the path id.
func ShipmentReplace(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipments service unavailable"))
			return
		}

		var req shipmentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shipment, err := svc.Replace(r.Context(), chi.URLParam(r, "shipmentId"), req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, shipments.FromModel(shipment))
	}
}

// ShipmentDelete removes a shipment record. Deleting an absent id is a no-op.
func ShipmentDelete(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipments service unavailable"))
			return
		}

		if err := svc.Delete(r.Context(), chi.URLParam(r, "shipmentId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteNoContent(w)
	}
}

// shipmentRequest serves create and replace. Creates require the id; replaces
// ignore it in favor of the path id.
type shipmentRequest struct {
	ID      string         `json:"id"`
	OrderID string         `json:"order_id" validate:"required"`
	Address types.JSONMap  `json:"address"`
	Items   types.JSONList `json:"items"`
	Status  string         `json:"status"`
}

func (req shipmentRequest) toInput() shipments.ShipmentInput {
	input := shipments.ShipmentInput{
		ID:      req.ID,
		OrderID: req.OrderID,
		Address: req.Address,
		Items:   req.Items,
		Status:  req.Status,
	}
	if input.Address == nil {
		input.Address = types.JSONMap{}
	}
	if input.Items == nil {
		input.Items = types.JSONList{}
	}
	if input.Status == "" {
		input.Status = defaultShipmentStatus
	}
	return input
}
