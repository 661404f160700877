package products

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tuanvle/dacsan-backend/pkg/db/models"
	"github.com/tuanvle/dacsan-backend/pkg/enums"
	"github.com/tuanvle/dacsan-backend/pkg/pagination"
)

// ListFilter narrows the public catalog listing. Zero values mean "any".
type ListFilter struct {
	Region    enums.Region
	Category  enums.ProductCategory
	VendorID  uuid.UUID
	Featured  *bool
	Available *bool
	Search    string
}

// Repository exposes product persistence for the catalog and vendor CRUD.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context, filter ListFilter, page pagination.PageParams) ([]models.Product, int64, error)
	Find(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	ReplaceVariantGroups(ctx context.Context, productID uuid.UUID, groups []models.VariantGroup) error
	SetAvailability(ctx context.Context, productID uuid.UUID, available bool) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a product repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) List(ctx context.Context, filter ListFilter, page pagination.PageParams) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if filter.Region != "" {
		query = query.Where("region = ?", filter.Region)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.VendorID != uuid.Nil {
		query = query.Where("vendor_id = ?", filter.VendorID)
	}
	if filter.Featured != nil {
		query = query.Where("is_featured = ?", *filter.Featured)
	}
	if filter.Available != nil {
		query = query.Where("is_available = ?", *filter.Available)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(province) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Product
	err := query.
		Order("created_at DESC").
		Limit(page.Size).
		Offset(page.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repositoryImpl) Find(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("VariantGroups", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("VariantGroups.Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&product, "id = ?", productID).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repositoryImpl) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repositoryImpl) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).
		Omit("VariantGroups").
		Save(product).Error
}

func (r *repositoryImpl) ReplaceVariantGroups(ctx context.Context, productID uuid.UUID, groups []models.VariantGroup) error {
	if err := r.db.WithContext(ctx).
		Delete(&models.VariantGroup{}, "product_id = ?", productID).Error; err != nil {
		return err
	}
	if len(groups) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&groups).Error
}

func (r *repositoryImpl) SetAvailability(ctx context.Context, productID uuid.UUID, available bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Update("is_available", available).Error
}
