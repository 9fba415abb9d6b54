package reservations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	dbpkg "github.com/stockroomhq/stockroom-backend/pkg/db"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/metrics"
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

// StockLedger applies locked stock checks and mutations inside the
// coordinator's transaction. LockEntry reports a missing SKU as
// gorm.ErrRecordNotFound.
type StockLedger interface {
	LockEntry(ctx context.Context, tx *gorm.DB, sku string) (*models.StockEntry, error)
	Deduct(ctx context.Context, tx *gorm.DB, sku string, qty int, reservationID string) error
	Restore(ctx context.Context, tx *gorm.DB, sku string, qty int, reservationID string) error
}

// Service coordinates reservation lifecycle transitions against the stock
// ledger. Every mutating call runs as one transaction: a failure anywhere
// rolls back all stock and record changes.
type Service interface {
	Reserve(ctx context.Context, input ReserveInput) (*models.Reservation, error)
	Get(ctx context.Context, id string) (*models.Reservation, error)
	List(ctx context.Context) ([]models.Reservation, error)
	Update(ctx context.Context, id string, input UpdateInput) (*models.Reservation, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo    Repository
	ledger  StockLedger
	tx      txRunner
	outbox  outboxPublisher
	metrics *metrics.ReservationMetrics
}

// ReserveInput is the reservation request: a caller-supplied id, the owning
// order, and the lines to hold.
type ReserveInput struct {
	ID      string
	OrderID string
	Items   types.ReservationLines
}

// UpdateInput is the full replacement payload for a reservation. The path id
// stays the key; the payload carries no id of its own.
type UpdateInput struct {
	OrderID string
	Items   types.ReservationLines
	Status  enums.ReservationStatus
}

const (
	opReserve = "reserve"
	opGet     = "get"
	opList    = "list"
	opUpdate  = "update"
	opDelete  = "delete"
)

// NewService builds the reservation coordinator. Metrics may be nil.
func NewService(repo Repository, ledger StockLedger, tx txRunner, outbox outboxPublisher, m *metrics.ReservationMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reservations repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, ledger: ledger, tx: tx, outbox: outbox, metrics: m}, nil
}

func (s *service) Reserve(ctx context.Context, input ReserveInput) (*models.Reservation, error) {
	started := time.Now()
	reservation, err := s.reserve(ctx, input)
	s.observe(opReserve, started, err)
	return reservation, err
}

func (s *service) reserve(ctx context.Context, input ReserveInput) (*models.Reservation, error) {
	if strings.TrimSpace(input.ID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reservation id required")
	}
	if strings.TrimSpace(input.OrderID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if err := validateLines(input.Items); err != nil {
		return nil, err
	}

	reservation := &models.Reservation{
		ID:      input.ID,
		OrderID: input.OrderID,
		Items:   input.Items,
		Status:  enums.ReservationStatusReserved,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		// Locks are taken in SKU order so overlapping reservations cannot
		// deadlock. Lines repeating a SKU are checked against their combined
		// quantity. Every line is validated before any stock moves.
		sorted := input.Items.SortedBySKU()
		for start := 0; start < len(sorted); {
			sku := sorted[start].SKU
			total := 0
			for start < len(sorted) && sorted[start].SKU == sku {
				total += sorted[start].Qty
				start++
			}

			entry, err := s.ledger.LockEntry(ctx, tx, sku)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("SKU %s not found", sku))
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock stock entry")
			}
			if entry.Quantity < total {
				return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("Insufficient stock for %s", sku))
			}
		}

		// Deducts follow the caller's line order so the journal mirrors the
		// stored record.
		for _, line := range input.Items {
			if err := s.ledger.Deduct(ctx, tx, line.SKU, line.Qty, reservation.ID); err != nil {
				return err
			}
		}

		repo := s.repo.WithTx(tx)
		if _, err := repo.Create(ctx, reservation); err != nil {
			if dbpkg.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "reservation already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create reservation")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventReservationCreated,
			AggregateType: enums.AggregateReservation,
			AggregateID:   reservation.ID,
			Version:       1,
			Data: payloads.ReservationCreatedEvent{
				ReservationID: reservation.ID,
				OrderID:       reservation.OrderID,
				Items:         reservation.Items,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return reservation, nil
}

func (s *service) Get(ctx context.Context, id string) (*models.Reservation, error) {
	started := time.Now()
	reservation, err := s.get(ctx, id)
	s.observe(opGet, started, err)
	return reservation, err
}

func (s *service) get(ctx context.Context, id string) (*models.Reservation, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reservation id required")
	}
	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation")
	}
	return reservation, nil
}

func (s *service) List(ctx context.Context) ([]models.Reservation, error) {
	started := time.Now()
	reservations, err := s.repo.List(ctx)
	if err != nil {
		err = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reservations")
	}
	s.observe(opList, started, err)
	return reservations, err
}

func (s *service) Update(ctx context.Context, id string, input UpdateInput) (*models.Reservation, error) {
	started := time.Now()
	reservation, err := s.update(ctx, id, input)
	s.observe(opUpdate, started, err)
	return reservation, err
}

func (s *service) update(ctx context.Context, id string, input UpdateInput) (*models.Reservation, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reservation id required")
	}
	if strings.TrimSpace(input.OrderID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid reservation status")
	}
	if err := validateLines(input.Items); err != nil {
		return nil, err
	}

	var updated *models.Reservation
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.LockByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock reservation")
		}

		// The transition decision keys off the status read under this lock,
		// never off client-supplied state, so a retried release cannot
		// double-credit stock.
		prev := existing.Status
		next := input.Status
		prevItems := existing.Items

		switch {
		case prev == enums.ReservationStatusReserved && next == enums.ReservationStatusReleased:
			// Restore undoes the lines that were reserved, from the existing
			// record, not the incoming payload.
			for _, line := range prevItems.SortedBySKU() {
				if err := s.ledger.Restore(ctx, tx, line.SKU, line.Qty, existing.ID); err != nil {
					return err
				}
			}
		case prev == enums.ReservationStatusReserved && next == enums.ReservationStatusCommitted:
			// Stock stays decremented; the hold becomes permanent.
		case prev == next:
			// Pure metadata overwrite, no stock effect.
		default:
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot transition reservation from %s to %s", prev, next))
		}

		existing.OrderID = input.OrderID
		existing.Items = input.Items
		existing.Status = next
		if err := repo.Overwrite(ctx, existing); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update reservation")
		}
		updated = existing

		return s.outbox.Emit(ctx, tx, transitionEvent(existing, prev, prevItems))
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	started := time.Now()
	err := s.delete(ctx, id)
	s.observe(opDelete, started, err)
	return err
}

func (s *service) delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "reservation id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.LockByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Deleting a reservation that is already gone is a no-op.
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock reservation")
		}

		restored := false
		if existing.Status == enums.ReservationStatusReserved {
			for _, line := range existing.Items.SortedBySKU() {
				if err := s.ledger.Restore(ctx, tx, line.SKU, line.Qty, existing.ID); err != nil {
					return err
				}
			}
			restored = true
		}

		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete reservation")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventReservationDeleted,
			AggregateType: enums.AggregateReservation,
			AggregateID:   existing.ID,
			Version:       1,
			Data: payloads.ReservationDeletedEvent{
				ReservationID: existing.ID,
				OrderID:       existing.OrderID,
				Restored:      restored,
			},
		})
	})
}

func (s *service) observe(operation string, started time.Time, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
		if typed := pkgerrors.As(err); typed != nil {
			outcome = strings.ToLower(string(typed.Code()))
		}
	}
	s.metrics.IncRequest(operation, outcome)
	s.metrics.ObserveDuration(operation, time.Since(started))
}

func validateLines(items types.ReservationLines) error {
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "items required")
	}
	for _, line := range items {
		if strings.TrimSpace(line.SKU) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "item sku required")
		}
		if line.Qty <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item qty must be positive")
		}
	}
	return nil
}

func transitionEvent(reservation *models.Reservation, prev enums.ReservationStatus, prevItems types.ReservationLines) outbox.DomainEvent {
	event := outbox.DomainEvent{
		AggregateType: enums.AggregateReservation,
		AggregateID:   reservation.ID,
		Version:       1,
	}
	switch {
	case prev == enums.ReservationStatusReserved && reservation.Status == enums.ReservationStatusReleased:
		event.EventType = enums.EventReservationReleased
		event.Data = payloads.ReservationReleasedEvent{
			ReservationID: reservation.ID,
			OrderID:       reservation.OrderID,
			Items:         prevItems,
		}
	case prev == enums.ReservationStatusReserved && reservation.Status == enums.ReservationStatusCommitted:
		event.EventType = enums.EventReservationCommitted
		event.Data = payloads.ReservationCommittedEvent{
			ReservationID: reservation.ID,
			OrderID:       reservation.OrderID,
			Items:         reservation.Items,
		}
	default:
		event.EventType = enums.EventReservationUpdated
		event.Data = payloads.ReservationUpdatedEvent{
			ReservationID: reservation.ID,
			OrderID:       reservation.OrderID,
			Status:        reservation.Status,
			Items:         reservation.Items,
		}
	}
	return event
}
