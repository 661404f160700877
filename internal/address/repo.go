package address

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tuanvle/dacsan-backend/pkg/db/models"
)

// Repository exposes address persistence. Defaults sort first so the
// checkout page can preselect without extra queries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Address, error)
	Find(ctx context.Context, addressID uuid.UUID) (*models.Address, error)
	Create(ctx context.Context, address *models.Address) error
	Update(ctx context.Context, address *models.Address) error
	Delete(ctx context.Context, addressID uuid.UUID) error
	ClearDefault(ctx context.Context, userID uuid.UUID) error
	SetDefault(ctx context.Context, addressID uuid.UUID) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an address repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	var rows []models.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) Find(ctx context.Context, addressID uuid.UUID) (*models.Address, error) {
	var address models.Address
	err := r.db.WithContext(ctx).First(&address, "id = ?", addressID).Error
	if err != nil {
		return nil, err
	}
	return &address, nil
}

func (r *repositoryImpl) Create(ctx context.Context, address *models.Address) error {
	return r.db.WithContext(ctx).Create(address).Error
}

func (r *repositoryImpl) Update(ctx context.Context, address *models.Address) error {
	return r.db.WithContext(ctx).Save(address).Error
}

func (r *repositoryImpl) Delete(ctx context.Context, addressID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Address{}, "id = ?", addressID).Error
}

func (r *repositoryImpl) ClearDefault(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Address{}).
		Where("user_id = ? AND is_default", userID).
		Update("is_default", false).Error
}

func (r *repositoryImpl) SetDefault(ctx context.Context, addressID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Address{}).
		Where("id = ?", addressID).
		Update("is_default", true).Error
}
