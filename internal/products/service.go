package products

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tuanvle/dacsan-backend/pkg/db/models"
	"github.com/tuanvle/dacsan-backend/pkg/enums"
	pkgerrors "github.com/tuanvle/dacsan-backend/pkg/errors"
	"github.com/tuanvle/dacsan-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the catalog: public browsing plus vendor-owned CRUD.
type Service interface {
	List(ctx context.Context, filter ListFilter, page pagination.PageParams) (*PageResult, error)
	GetDetail(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, vendorID uuid.UUID, input Input) (*models.Product, error)
	Update(ctx context.Context, vendorID, productID uuid.UUID, input Input) (*models.Product, error)
	Delete(ctx context.Context, vendorID, productID uuid.UUID) error
}

// Input carries the writable product fields plus its variant groups.
type Input struct {
	Name        string
	Description *string
	Category    enums.ProductCategory
	Region      enums.Region
	Province    string
	BasePrice   int64
	ImageURL    *string
	IsAvailable bool
	IsFeatured  bool
	Groups      []GroupInput
}

// GroupInput is one variant group in a create or update request.
type GroupInput struct {
	Name        string
	Required    bool
	MultiSelect bool
	Variants    []VariantInput
}

// VariantInput is one option inside a group.
type VariantInput struct {
	Name            string
	PriceAdjustment int64
	IsAvailable     bool
}

// PageResult is a page of catalog rows plus the unpaged total.
type PageResult struct {
	Items []models.Product
	Total int64
	Page  int
	Size  int
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService wires product dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "product repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) List(ctx context.Context, filter ListFilter, page pagination.PageParams) (*PageResult, error) {
	page = page.Normalize()
	rows, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return &PageResult{Items: rows, Total: total, Page: page.Page, Size: page.Size}, nil
}

func (s *service) GetDetail(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.Find(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) Create(ctx context.Context, vendorID uuid.UUID, input Input) (*models.Product, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor context missing")
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:          uuid.New(),
		VendorID:    vendorID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Category:    input.Category,
		Region:      input.Region,
		Province:    strings.TrimSpace(input.Province),
		BasePrice:   input.BasePrice,
		ImageURL:    input.ImageURL,
		IsAvailable: input.IsAvailable,
		IsFeatured:  input.IsFeatured,
	}
	product.VariantGroups = buildGroups(product.ID, input.Groups)

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return product, nil
}

func (s *service) Update(ctx context.Context, vendorID, productID uuid.UUID, input Input) (*models.Product, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var updated *models.Product
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		product, err := s.owned(ctx, repo, vendorID, productID)
		if err != nil {
			return err
		}

		product.Name = strings.TrimSpace(input.Name)
		product.Description = input.Description
		product.Category = input.Category
		product.Region = input.Region
		product.Province = strings.TrimSpace(input.Province)
		product.BasePrice = input.BasePrice
		product.ImageURL = input.ImageURL
		product.IsAvailable = input.IsAvailable
		product.IsFeatured = input.IsFeatured
		product.VariantGroups = nil

		if err := repo.Update(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
		}

		groups := buildGroups(product.ID, input.Groups)
		if err := repo.ReplaceVariantGroups(ctx, product.ID, groups); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace variant groups")
		}
		product.VariantGroups = groups
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete hides the product instead of removing the row so historical
// order snapshots keep a resolvable product id.
func (s *service) Delete(ctx context.Context, vendorID, productID uuid.UUID) error {
	product, err := s.owned(ctx, s.repo, vendorID, productID)
	if err != nil {
		return err
	}
	if err := s.repo.SetAvailability(ctx, product.ID, false); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "hide product")
	}
	return nil
}

func (s *service) owned(ctx context.Context, repo Repository, vendorID, productID uuid.UUID) (*models.Product, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor context missing")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := repo.Find(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.VendorID != vendorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product does not belong to vendor")
	}
	return product, nil
}

func buildGroups(productID uuid.UUID, inputs []GroupInput) []models.VariantGroup {
	groups := make([]models.VariantGroup, 0, len(inputs))
	for gi, groupInput := range inputs {
		group := models.VariantGroup{
			ID:          uuid.New(),
			ProductID:   productID,
			Name:        strings.TrimSpace(groupInput.Name),
			Required:    groupInput.Required,
			MultiSelect: groupInput.MultiSelect,
			Position:    gi,
		}
		for vi, variantInput := range groupInput.Variants {
			group.Variants = append(group.Variants, models.Variant{
				ID:              uuid.New(),
				GroupID:         group.ID,
				Name:            strings.TrimSpace(variantInput.Name),
				PriceAdjustment: variantInput.PriceAdjustment,
				IsAvailable:     variantInput.IsAvailable,
				Position:        vi,
			})
		}
		groups = append(groups, group)
	}
	return groups
}

func validateInput(input Input) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if input.BasePrice <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "base price must be positive")
	}
	if !input.Category.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid product category")
	}
	if !input.Region.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid region")
	}
	for _, group := range input.Groups {
		if strings.TrimSpace(group.Name) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "variant group name required")
		}
		if len(group.Variants) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "variant group needs at least one variant")
		}
		for _, variant := range group.Variants {
			if strings.TrimSpace(variant.Name) == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "variant name required")
			}
		}
	}
	return nil
}
