package controllers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/stockroomhq/stockroom-backend/api/responses"
	"github.com/stockroomhq/stockroom-backend/api/validators"
	"github.com/stockroomhq/stockroom-backend/internal/orders"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
	"github.com/stockroomhq/stockroom-backend/pkg/types"
)

const defaultOrderStatus = "created"

// OrderCreate inserts a full order record keyed by the caller-supplied id.
func OrderCreate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, orders.FromModel(order))
	}
}

// OrderList returns every stored order.
func OrderList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, orders.FromModels(list))
	}
}

// OrderDetail returns a single order by id.
func OrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		order, err := svc.Get(r.Context(), chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, orders.FromModel(order))
	}
}

// OrderUpdate shallow-merges the payload into the stored order. Fields absent
// from the payload keep their stored values; a payload id is ignored in favor
// of the path id.
func OrderUpdate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var req updateOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.MergeUpdate(r.Context(), chi.URLParam(r, "orderId"), req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, orders.FromModel(order))
	}
}

// OrderDelete removes an order. Deleting an absent id is a no-op.
func OrderDelete(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		if err := svc.Delete(r.Context(), chi.URLParam(r, "orderId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteNoContent(w)
	}
}

// OrderRefundMetadata patches refund bookkeeping columns from a free-form
// payload. Keys outside the allow-list are reported back, never written.
func OrderRefundMetadata(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		payload, err := decodeJSONMap(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.PatchRefundMetadata(r.Context(), chi.URLParam(r, "orderId"), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// decodeJSONMap reads a free-form object body. Column allow-listing happens
// in the service, so unknown keys are accepted here.
func decodeJSONMap(r *http.Request) (types.JSONMap, error) {
	defer func() {
		io.Copy(io.Discard, r.Body)
	}()
	var payload types.JSONMap
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").WithDetails(map[string]any{"error": err.Error()})
	}
	return payload, nil
}

type createOrderRequest struct {
	ID                  string          `json:"id" validate:"required"`
	UserID              *string         `json:"user_id"`
	Address             types.JSONMap   `json:"address"`
	Items               types.JSONList  `json:"items"`
	Total               decimal.Decimal `json:"total"`
	Currency            string          `json:"currency"`
	Status              string          `json:"status"`
	RefundAttempt       types.JSONMap   `json:"refund_attempt"`
	PaymentRefundStatus *string         `json:"payment_refund_status"`
}

func (req createOrderRequest) toInput() orders.CreateOrderInput {
	input := orders.CreateOrderInput{
		ID:                  req.ID,
		UserID:              req.UserID,
		Address:             req.Address,
		Items:               req.Items,
		Total:               req.Total,
		Currency:            req.Currency,
		Status:              req.Status,
		RefundAttempt:       req.RefundAttempt,
		PaymentRefundStatus: req.PaymentRefundStatus,
	}
	if input.Address == nil {
		input.Address = types.JSONMap{}
	}
	if input.Items == nil {
		input.Items = types.JSONList{}
	}
	if input.Status == "" {
		input.Status = defaultOrderStatus
	}
	return input
}

// updateOrderRequest mirrors the create payload with every field optional.
// The id field is accepted for symmetry and ignored.
type updateOrderRequest struct {
	ID                  *string          `json:"id"`
	UserID              *string          `json:"user_id"`
	Address             *types.JSONMap   `json:"address"`
	Items               *types.JSONList  `json:"items"`
	Total               *decimal.Decimal `json:"total"`
	Currency            *string          `json:"currency"`
	Status              *string          `json:"status"`
	RefundAttempt       *types.JSONMap   `json:"refund_attempt"`
	PaymentRefundStatus *string          `json:"payment_refund_status"`
}

func (req updateOrderRequest) toInput() orders.UpdateOrderInput {
	return orders.UpdateOrderInput{
		UserID:              req.UserID,
		Address:             req.Address,
		Items:               req.Items,
		Total:               req.Total,
		Currency:            req.Currency,
		Status:              req.Status,
		RefundAttempt:       req.RefundAttempt,
		PaymentRefundStatus: req.PaymentRefundStatus,
	}
}
