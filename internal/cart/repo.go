package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tuanvle/dacsan-backend/pkg/db/models"
)

// Repository exposes persistence helpers for carts and their lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) error
	FindItem(ctx context.Context, itemID uuid.UUID) (*models.CartItem, error)
	InsertItem(ctx context.Context, item *models.CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int, lineTotal int64) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	DeleteItems(ctx context.Context, cartID uuid.UUID) error
	FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	FindVendor(ctx context.Context, vendorID uuid.UUID) (*models.Vendor, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a cart repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&cart, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *repositoryImpl) Create(ctx context.Context, cart *models.Cart) error {
	return r.db.WithContext(ctx).Create(cart).Error
}

func (r *repositoryImpl) FindItem(ctx context.Context, itemID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", itemID).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repositoryImpl) InsertItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repositoryImpl) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int, lineTotal int64) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Updates(map[string]interface{}{
			"quantity":   quantity,
			"line_total": lineTotal,
		}).Error
}

func (r *repositoryImpl) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.CartItem{}, "id = ?", itemID).Error
}

func (r *repositoryImpl) DeleteItems(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.CartItem{}, "cart_id = ?", cartID).Error
}

func (r *repositoryImpl) FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
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

func (r *repositoryImpl) FindVendor(ctx context.Context, vendorID uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	err := r.db.WithContext(ctx).First(&vendor, "id = ?", vendorID).Error
	if err != nil {
		return nil, err
	}
	return &vendor, nil
}
