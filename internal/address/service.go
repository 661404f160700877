package address

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tuanvle/dacsan-backend/pkg/db/models"
	pkgerrors "github.com/tuanvle/dacsan-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages a customer's saved delivery addresses.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.Address, error)
	Create(ctx context.Context, userID uuid.UUID, input Input) (*models.Address, error)
	Update(ctx context.Context, userID, addressID uuid.UUID, input Input) (*models.Address, error)
	Delete(ctx context.Context, userID, addressID uuid.UUID) error
	SetDefault(ctx context.Context, userID, addressID uuid.UUID) error
}

// Input carries the writable address fields.
type Input struct {
	RecipientName string
	Phone         string
	AddressLine   string
	Ward          string
	District      string
	Province      string
	IsDefault     bool
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService wires address dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "address repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses")
	}
	return rows, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input Input) (*models.Address, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var created *models.Address
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.ListByUser(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses")
		}
		// The first saved address always becomes the default.
		makeDefault := input.IsDefault || len(existing) == 0
		if makeDefault {
			if err := repo.ClearDefault(ctx, userID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default")
			}
		}

		address := &models.Address{
			ID:            uuid.New(),
			UserID:        userID,
			RecipientName: strings.TrimSpace(input.RecipientName),
			Phone:         strings.TrimSpace(input.Phone),
			AddressLine:   strings.TrimSpace(input.AddressLine),
			Ward:          strings.TrimSpace(input.Ward),
			District:      strings.TrimSpace(input.District),
			Province:      strings.TrimSpace(input.Province),
			IsDefault:     makeDefault,
		}
		if err := repo.Create(ctx, address); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create address")
		}
		created = address
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, userID, addressID uuid.UUID, input Input) (*models.Address, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var updated *models.Address
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		address, err := s.owned(ctx, repo, userID, addressID)
		if err != nil {
			return err
		}
		if input.IsDefault && !address.IsDefault {
			if err := repo.ClearDefault(ctx, userID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default")
			}
		}

		address.RecipientName = strings.TrimSpace(input.RecipientName)
		address.Phone = strings.TrimSpace(input.Phone)
		address.AddressLine = strings.TrimSpace(input.AddressLine)
		address.Ward = strings.TrimSpace(input.Ward)
		address.District = strings.TrimSpace(input.District)
		address.Province = strings.TrimSpace(input.Province)
		address.IsDefault = input.IsDefault

		if err := repo.Update(ctx, address); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update address")
		}
		updated = address
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes an address. Deleting the default is allowed; the user
// simply has no default until another address is promoted.
func (s *service) Delete(ctx context.Context, userID, addressID uuid.UUID) error {
	address, err := s.owned(ctx, s.repo, userID, addressID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, address.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete address")
	}
	return nil
}

func (s *service) SetDefault(ctx context.Context, userID, addressID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		address, err := s.owned(ctx, repo, userID, addressID)
		if err != nil {
			return err
		}
		if err := repo.ClearDefault(ctx, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default")
		}
		if err := repo.SetDefault(ctx, address.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set default")
		}
		return nil
	})
}

func (s *service) owned(ctx context.Context, repo Repository, userID, addressID uuid.UUID) (*models.Address, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if addressID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address id required")
	}
	address, err := repo.Find(ctx, addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
	}
	if address.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "address does not belong to user")
	}
	return address, nil
}

func validateInput(input Input) error {
	missing := make([]string, 0, 4)
	if strings.TrimSpace(input.RecipientName) == "" {
		missing = append(missing, "recipient_name")
	}
	if strings.TrimSpace(input.Phone) == "" {
		missing = append(missing, "phone")
	}
	if strings.TrimSpace(input.AddressLine) == "" {
		missing = append(missing, "address_line")
	}
	if strings.TrimSpace(input.Province) == "" {
		missing = append(missing, "province")
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "missing required address fields").
			WithDetails(map[string]any{"missing_fields": missing})
	}
	return nil
}
