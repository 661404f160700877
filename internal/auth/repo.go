package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tuanvle/dacsan-backend/pkg/db/models"
)

// Repository exposes the user and vendor persistence auth needs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	EmailExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, user *models.User) error
	CreateVendor(ctx context.Context, vendor *models.Vendor) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindVendorByUser(ctx context.Context, userID uuid.UUID) (*models.Vendor, error)
	TouchLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an auth repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", email).
		Count(&count).Error
	return count > 0, err
}

func (r *repositoryImpl) CreateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *repositoryImpl) CreateVendor(ctx context.Context, vendor *models.Vendor) error {
	return r.db.WithContext(ctx).Create(vendor).Error
}

func (r *repositoryImpl) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repositoryImpl) FindVendorByUser(ctx context.Context, userID uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	err := r.db.WithContext(ctx).First(&vendor, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *repositoryImpl) TouchLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_login_at", at).Error
}
