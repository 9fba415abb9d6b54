package shipments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	dbpkg "github.com/stockroomhq/stockroom-backend/pkg/db"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes shipment record operations.
type Service interface {
	Create(ctx context.Context, input ShipmentInput) (*models.Shipment, error)
	Get(ctx context.Context, id string) (*models.Shipment, error)
	List(ctx context.Context) ([]models.Shipment, error)
	Replace(ctx context.Context, id string, input ShipmentInput) (*models.Shipment, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds a shipments service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shipments repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) Create(ctx context.Context, input ShipmentInput) (*models.Shipment, error) {
	if strings.TrimSpace(input.ID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipment id required")
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	shipment := &models.Shipment{
		ID:      input.ID,
		OrderID: input.OrderID,
		Address: input.Address,
		Items:   input.Items,
		Status:  input.Status,
	}
	if _, err := s.repo.Create(ctx, shipment); err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "shipment already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shipment")
	}
	return shipment, nil
}

func (s *service) Get(ctx context.Context, id string) (*models.Shipment, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipment id required")
	}
	shipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shipment")
	}
	return shipment, nil
}

func (s *service) List(ctx context.Context) ([]models.Shipment, error) {
	shipments, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shipments")
	}
	return shipments, nil
}

// Replace overwrites every mutable column with the payload. The path id is
// the key; a differing payload id is ignored.
func (s *service) Replace(ctx context.Context, id string, input ShipmentInput) (*models.Shipment, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipment id required")
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var replaced *models.Shipment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.LockByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock shipment")
		}

		existing.OrderID = input.OrderID
		existing.Address = input.Address
		existing.Items = input.Items
		existing.Status = input.Status

		if err := repo.Overwrite(ctx, existing); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace shipment")
		}
		replaced = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return replaced, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipment id required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete shipment")
	}
	return nil
}

func validateInput(input ShipmentInput) error {
	if strings.TrimSpace(input.OrderID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.Address == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "address required")
	}
	if input.Items == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "items required")
	}
	if strings.TrimSpace(input.Status) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "status required")
	}
	return nil
}
