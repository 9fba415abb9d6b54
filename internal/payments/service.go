package payments

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

// Service exposes payment record operations.
type Service interface {
	Create(ctx context.Context, input PaymentInput) (*models.Payment, error)
	Get(ctx context.Context, id string) (*models.Payment, error)
	List(ctx context.Context) ([]models.Payment, error)
	Replace(ctx context.Context, id string, input PaymentInput) (*models.Payment, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds a payments service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) Create(ctx context.Context, input PaymentInput) (*models.Payment, error) {
	if strings.TrimSpace(input.ID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id required")
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	payment := &models.Payment{
		ID:      input.ID,
		OrderID: input.OrderID,
		Amount:  input.Amount,
		Status:  input.Status,
	}
	if _, err := s.repo.Create(ctx, payment); err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "payment already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
	}
	return payment, nil
}

func (s *service) Get(ctx context.Context, id string) (*models.Payment, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id required")
	}
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}
	return payment, nil
}

func (s *service) List(ctx context.Context) ([]models.Payment, error) {
	payments, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payments")
	}
	return payments, nil
}

// Replace overwrites every mutable column with the payload. The path id is
// the key; a differing payload id is ignored.
func (s *service) Replace(ctx context.Context, id string, input PaymentInput) (*models.Payment, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id required")
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var replaced *models.Payment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.LockByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock payment")
		}

		existing.OrderID = input.OrderID
		existing.Amount = input.Amount
		existing.Status = input.Status

		if err := repo.Overwrite(ctx, existing); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace payment")
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
		return pkgerrors.New(pkgerrors.CodeValidation, "payment id required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete payment")
	}
	return nil
}

func validateInput(input PaymentInput) error {
	if strings.TrimSpace(input.OrderID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if strings.TrimSpace(input.Status) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "status required")
	}
	return nil
}
