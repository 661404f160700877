package vendors

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tuanvle/dacsan-backend/pkg/db/models"
	"github.com/tuanvle/dacsan-backend/pkg/enums"
)

// SubOrderRow is a sub-order joined with its parent order status, which
// the stats math needs to classify rows.
type SubOrderRow struct {
	SubOrder    models.SubOrder
	OrderStatus enums.OrderStatus
}

// Repository exposes vendor profile persistence and the stats source rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Find(ctx context.Context, vendorID uuid.UUID) (*models.Vendor, error)
	Update(ctx context.Context, vendor *models.Vendor) error
	ListSubOrders(ctx context.Context, vendorID uuid.UUID) ([]SubOrderRow, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a vendor repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Find(ctx context.Context, vendorID uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	err := r.db.WithContext(ctx).First(&vendor, "id = ?", vendorID).Error
	if err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *repositoryImpl) Update(ctx context.Context, vendor *models.Vendor) error {
	return r.db.WithContext(ctx).Save(vendor).Error
}

func (r *repositoryImpl) ListSubOrders(ctx context.Context, vendorID uuid.UUID) ([]SubOrderRow, error) {
	var subs []models.SubOrder
	err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC").
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, nil
	}

	orderIDs := make([]uuid.UUID, 0, len(subs))
	for _, sub := range subs {
		orderIDs = append(orderIDs, sub.OrderID)
	}
	var orders []models.Order
	if err := r.db.WithContext(ctx).
		Select("id", "status").
		Where("id IN ?", orderIDs).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	statusByOrder := make(map[uuid.UUID]enums.OrderStatus, len(orders))
	for _, order := range orders {
		statusByOrder[order.ID] = order.Status
	}

	rows := make([]SubOrderRow, 0, len(subs))
	for _, sub := range subs {
		rows = append(rows, SubOrderRow{
			SubOrder:    sub,
			OrderStatus: statusByOrder[sub.OrderID],
		})
	}
	return rows, nil
}
