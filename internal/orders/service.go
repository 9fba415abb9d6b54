package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	dbpkg "github.com/stockroomhq/stockroom-backend/pkg/db"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/outbox"
	"github.com/stockroomhq/stockroom-backend/pkg/outbox/payloads"
	"github.com/stockroomhq/stockroom-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes order record operations.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	Get(ctx context.Context, id string) (*models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	MergeUpdate(ctx context.Context, id string, input UpdateOrderInput) (*models.Order, error)
	PatchRefundMetadata(ctx context.Context, id string, payload types.JSONMap) (*RefundMetadataResult, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

const defaultCurrency = "INR"

// refundColumns is the static allow-list the refund patch may touch. Keys
// outside it are ignored, never an error.
var refundColumns = []string{"refund_attempt", "payment_refund_status", "status"}

// NewService builds an orders service with the required dependencies.
func NewService(repo Repository, tx txRunner, outbox outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: outbox}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if strings.TrimSpace(input.ID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if strings.TrimSpace(input.Status) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status required")
	}
	if input.Items == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "items required")
	}

	currency := strings.TrimSpace(input.Currency)
	if currency == "" {
		currency = defaultCurrency
	}
	order := &models.Order{
		ID:                  input.ID,
		UserID:              input.UserID,
		Address:             input.Address,
		Items:               input.Items,
		Total:               input.Total,
		Currency:            currency,
		Status:              input.Status,
		RefundAttempt:       input.RefundAttempt,
		PaymentRefundStatus: input.PaymentRefundStatus,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			if dbpkg.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "order already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Data: payloads.OrderCreatedEvent{
				OrderID:  order.ID,
				UserID:   order.UserID,
				Total:    order.Total,
				Currency: order.Currency,
				Status:   order.Status,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) Get(ctx context.Context, id string) (*models.Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context) ([]models.Order, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, nil
}

// MergeUpdate overwrites only the fields the payload carried. Everything
// else, refund metadata included, keeps its stored value.
func (s *service) MergeUpdate(ctx context.Context, id string, input UpdateOrderInput) (*models.Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.LockByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock order")
		}

		if input.UserID != nil {
			existing.UserID = input.UserID
		}
		if input.Address != nil {
			existing.Address = *input.Address
		}
		if input.Items != nil {
			existing.Items = *input.Items
		}
		if input.Total != nil {
			existing.Total = *input.Total
		}
		if input.Currency != nil {
			existing.Currency = *input.Currency
		}
		if input.Status != nil {
			existing.Status = *input.Status
		}
		if input.RefundAttempt != nil {
			existing.RefundAttempt = *input.RefundAttempt
		}
		if input.PaymentRefundStatus != nil {
			existing.PaymentRefundStatus = input.PaymentRefundStatus
		}

		if err := repo.Overwrite(ctx, existing); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// PatchRefundMetadata applies the payload keys that fall inside the static
// allow-list. A payload with no recognized keys touches nothing and reports
// why, without requiring the order to exist.
func (s *service) PatchRefundMetadata(ctx context.Context, id string, payload types.JSONMap) (*RefundMetadataResult, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	apply := map[string]func(*models.Order){}
	for _, column := range refundColumns {
		value, ok := payload[column]
		if !ok {
			continue
		}
		setter, err := refundSetter(column, value)
		if err != nil {
			return nil, err
		}
		apply[column] = setter
	}
	if len(apply) == 0 {
		return &RefundMetadataResult{Updated: false, Reason: "no matching columns"}, nil
	}

	keys := make([]string, 0, len(apply))
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.LockByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock order")
		}

		for _, column := range refundColumns {
			setter, ok := apply[column]
			if !ok {
				continue
			}
			setter(existing)
			keys = append(keys, column)
		}

		if err := repo.Overwrite(ctx, existing); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "patch order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &RefundMetadataResult{Updated: true, UpdatedKeys: keys}, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
	}
	return nil
}

func refundSetter(column string, value any) (func(*models.Order), error) {
	switch column {
	case "refund_attempt":
		switch v := value.(type) {
		case nil:
			return func(o *models.Order) { o.RefundAttempt = nil }, nil
		case map[string]any:
			return func(o *models.Order) { o.RefundAttempt = types.JSONMap(v) }, nil
		case types.JSONMap:
			return func(o *models.Order) { o.RefundAttempt = v }, nil
		default:
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund_attempt must be an object")
		}
	case "payment_refund_status":
		switch v := value.(type) {
		case nil:
			return func(o *models.Order) { o.PaymentRefundStatus = nil }, nil
		case string:
			return func(o *models.Order) { o.PaymentRefundStatus = &v }, nil
		default:
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment_refund_status must be a string")
		}
	case "status":
		v, ok := value.(string)
		if !ok || strings.TrimSpace(v) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be a non-empty string")
		}
		return func(o *models.Order) { o.Status = v }, nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("unhandled refund column %s", column))
	}
}
