package checkout

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tuanvle/dacsan-backend/pkg/db/models"
)

// Repository exposes the persistence surface of checkout: everything it
// reads at order time plus the atomic order graph insert.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindAddress(ctx context.Context, addressID uuid.UUID) (*models.Address, error)
	FindCartByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	FindVendor(ctx context.Context, vendorID uuid.UUID) (*models.Vendor, error)
	CountOrders(ctx context.Context) (int64, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	DeleteCartItems(ctx context.Context, cartID uuid.UUID) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a checkout repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) FindAddress(ctx context.Context, addressID uuid.UUID) (*models.Address, error) {
	var address models.Address
	err := r.db.WithContext(ctx).First(&address, "id = ?", addressID).Error
	if err != nil {
		return nil, err
	}
	return &address, nil
}

func (r *repositoryImpl) FindCartByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
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

func (r *repositoryImpl) FindVendor(ctx context.Context, vendorID uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	err := r.db.WithContext(ctx).First(&vendor, "id = ?", vendorID).Error
	if err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *repositoryImpl) CountOrders(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&count).Error
	return count, err
}

func (r *repositoryImpl) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repositoryImpl) DeleteCartItems(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.CartItem{}, "cart_id = ?", cartID).Error
}
