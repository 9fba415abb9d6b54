package cron

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
	"github.com/stockroomhq/stockroom-backend/pkg/metrics"
	"github.com/stockroomhq/stockroom-backend/pkg/outbox"
	"github.com/stockroomhq/stockroom-backend/pkg/outbox/payloads"
)

const (
	findingNegativeQuantity    = "negative_quantity"
	findingDanglingReservation = "dangling_reservation"

	auditActorService = "cron-worker"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type stockAuditStock interface {
	ListNegative(ctx context.Context) ([]models.StockEntry, error)
	ExistingSKUs(ctx context.Context, skus []string) ([]string, error)
}

type stockAuditReservations interface {
	ListByStatus(ctx context.Context, status enums.ReservationStatus) ([]models.Reservation, error)
}

type auditEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type StockAuditJobParams struct {
	Logger       *logger.Logger
	DB           txRunner
	Stock        stockAuditStock
	Reservations stockAuditReservations
	Outbox       auditEmitter
	Metrics      *metrics.StockAuditMetrics
}

// NewStockAuditJob builds the sweep that looks for quantities below zero and
// reserved holds pointing at SKUs that no longer exist. Findings are logged,
// gauged, and flagged once per aggregate through the outbox; the sweep never
// touches stock or reservation rows itself.
func NewStockAuditJob(params StockAuditJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Stock == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	if params.Reservations == nil {
		return nil, fmt.Errorf("reservations repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &stockAuditJob{
		logg:         params.Logger,
		db:           params.DB,
		stock:        params.Stock,
		reservations: params.Reservations,
		outbox:       params.Outbox,
		metrics:      params.Metrics,
	}, nil
}

type stockAuditJob struct {
	logg         *logger.Logger
	db           txRunner
	stock        stockAuditStock
	reservations stockAuditReservations
	outbox       auditEmitter
	metrics      *metrics.StockAuditMetrics
}

type danglingHold struct {
	reservation models.Reservation
	missingSKU  string
	qty         int
}

func (j *stockAuditJob) Name() string { return "stock-audit" }

func (j *stockAuditJob) Run(ctx context.Context) error {
	negatives, err := j.stock.ListNegative(ctx)
	if err != nil {
		return fmt.Errorf("list negative quantities: %w", err)
	}

	dangling, err := j.findDanglingHolds(ctx)
	if err != nil {
		return err
	}

	j.setFindings(findingNegativeQuantity, len(negatives))
	j.setFindings(findingDanglingReservation, len(dangling))

	if len(negatives) == 0 && len(dangling) == 0 {
		j.logg.Info(ctx, "stock audit clean")
		return nil
	}

	for _, entry := range negatives {
		logCtx := j.logg.WithFields(ctx, map[string]any{
			"sku":      entry.SKU,
			"quantity": entry.Quantity,
			"finding":  findingNegativeQuantity,
		})
		j.logg.Warn(logCtx, "stock audit finding")
	}
	for _, hold := range dangling {
		logCtx := j.logg.WithFields(ctx, map[string]any{
			"reservation_id": hold.reservation.ID,
			"order_id":       hold.reservation.OrderID,
			"sku":            hold.missingSKU,
			"finding":        findingDanglingReservation,
		})
		j.logg.Warn(logCtx, "stock audit finding")
	}

	err = j.db.WithTx(ctx, func(tx *gorm.DB) error {
		for _, entry := range negatives {
			event := outbox.DomainEvent{
				EventType:     enums.EventStockAuditFlagged,
				AggregateType: enums.AggregateStockEntry,
				AggregateID:   entry.SKU,
				Version:       1,
				Actor:         &outbox.ActorRef{Service: auditActorService},
				Data: payloads.StockAuditFlaggedEvent{
					SKU:      entry.SKU,
					Quantity: entry.Quantity,
					Finding:  findingNegativeQuantity,
				},
			}
			if err := j.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
				return err
			}
		}
		for _, hold := range dangling {
			event := outbox.DomainEvent{
				EventType:     enums.EventStockAuditFlagged,
				AggregateType: enums.AggregateReservation,
				AggregateID:   hold.reservation.ID,
				Version:       1,
				Actor:         &outbox.ActorRef{Service: auditActorService},
				Data: payloads.StockAuditFlaggedEvent{
					SKU:           hold.missingSKU,
					Quantity:      hold.qty,
					Finding:       findingDanglingReservation,
					ReservationID: hold.reservation.ID,
				},
			}
			if err := j.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("flag audit findings: %w", err)
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"negative_quantities":   len(negatives),
		"dangling_reservations": len(dangling),
	})
	j.logg.Warn(logCtx, "stock audit found inconsistencies")
	return nil
}

// findDanglingHolds reports reserved holds whose lines reference a SKU with
// no stock entry. One finding is reported per reservation, carrying its first
// missing SKU by line order.
func (j *stockAuditJob) findDanglingHolds(ctx context.Context) ([]danglingHold, error) {
	reserved, err := j.reservations.ListByStatus(ctx, enums.ReservationStatusReserved)
	if err != nil {
		return nil, fmt.Errorf("list reserved holds: %w", err)
	}
	if len(reserved) == 0 {
		return nil, nil
	}

	skuSet := map[string]struct{}{}
	for _, reservation := range reserved {
		for _, line := range reservation.Items {
			skuSet[line.SKU] = struct{}{}
		}
	}
	skus := make([]string, 0, len(skuSet))
	for sku := range skuSet {
		skus = append(skus, sku)
	}
	sort.Strings(skus)

	existing, err := j.stock.ExistingSKUs(ctx, skus)
	if err != nil {
		return nil, fmt.Errorf("check sku existence: %w", err)
	}
	known := make(map[string]struct{}, len(existing))
	for _, sku := range existing {
		known[sku] = struct{}{}
	}

	var dangling []danglingHold
	for _, reservation := range reserved {
		for _, line := range reservation.Items {
			if _, ok := known[line.SKU]; ok {
				continue
			}
			dangling = append(dangling, danglingHold{
				reservation: reservation,
				missingSKU:  line.SKU,
				qty:         line.Qty,
			})
			break
		}
	}
	return dangling, nil
}

func (j *stockAuditJob) setFindings(finding string, count int) {
	if j.metrics == nil {
		return
	}
	j.metrics.SetFindings(finding, count)
}
