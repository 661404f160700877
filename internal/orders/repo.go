package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tuanvle/dacsan-backend/pkg/db/models"
	"github.com/tuanvle/dacsan-backend/pkg/enums"
)

// Repository exposes persistence helpers for orders and sub-orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindSubOrderForUpdate(ctx context.Context, subOrderID uuid.UUID) (*models.SubOrder, error)
	ListSubOrderStatuses(ctx context.Context, orderID uuid.UUID) ([]enums.SubOrderStatus, error)
	UpdateSubOrderStatus(ctx context.Context, subOrderID uuid.UUID, status enums.SubOrderStatus, now time.Time) error
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, now time.Time) error
	ListOrdersByCustomer(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	ListSubOrdersByVendor(ctx context.Context, vendorID uuid.UUID) ([]BucketedSubOrder, error)
	FindVendor(ctx context.Context, vendorID uuid.UUID) (*models.Vendor, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an orders repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("SubOrders", func(db *gorm.DB) *gorm.DB {
			return db.Order("sub_order_number ASC")
		}).
		Preload("SubOrders.Items").
		First(&order, "id = ?", orderID).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repositoryImpl) FindSubOrderForUpdate(ctx context.Context, subOrderID uuid.UUID) (*models.SubOrder, error) {
	var sub models.SubOrder
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&sub, "id = ?", subOrderID).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *repositoryImpl) ListSubOrderStatuses(ctx context.Context, orderID uuid.UUID) ([]enums.SubOrderStatus, error) {
	var statuses []enums.SubOrderStatus
	err := r.db.WithContext(ctx).
		Model(&models.SubOrder{}).
		Where("order_id = ?", orderID).
		Pluck("status", &statuses).Error
	return statuses, err
}

func (r *repositoryImpl) UpdateSubOrderStatus(ctx context.Context, subOrderID uuid.UUID, status enums.SubOrderStatus, now time.Time) error {
	updates := map[string]any{
		"status":     status,
		"updated_at": now,
	}
	switch status {
	case enums.SubOrderStatusCooking:
		updates["cooking_started_at"] = now
	case enums.SubOrderStatusDelivered:
		updates["delivered_at"] = now
	case enums.SubOrderStatusCancelled:
		updates["cancelled_at"] = now
	}
	return r.db.WithContext(ctx).
		Model(&models.SubOrder{}).
		Where("id = ?", subOrderID).
		Updates(updates).Error
}

func (r *repositoryImpl) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, now time.Time) error {
	updates := map[string]any{
		"status":     status,
		"updated_at": now,
	}
	if status == enums.OrderStatusCompleted {
		updates["completed_at"] = now
	}
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(updates).Error
}

func (r *repositoryImpl) ListOrdersByCustomer(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Preload("SubOrders", func(db *gorm.DB) *gorm.DB {
			return db.Order("sub_order_number ASC")
		}).
		Preload("SubOrders.Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repositoryImpl) ListSubOrdersByVendor(ctx context.Context, vendorID uuid.UUID) ([]BucketedSubOrder, error) {
	var subs []models.SubOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
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

	type orderStatusRow struct {
		ID     uuid.UUID
		Status enums.OrderStatus
	}
	var statuses []orderStatusRow
	err = r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("id", "status").
		Where("id IN ?", orderIDs).
		Find(&statuses).Error
	if err != nil {
		return nil, err
	}

	statusByOrder := make(map[uuid.UUID]enums.OrderStatus, len(statuses))
	for _, row := range statuses {
		statusByOrder[row.ID] = row.Status
	}

	out := make([]BucketedSubOrder, 0, len(subs))
	for _, sub := range subs {
		out = append(out, BucketedSubOrder{
			SubOrder:    sub,
			OrderStatus: statusByOrder[sub.OrderID],
		})
	}
	return out, nil
}

func (r *repositoryImpl) FindVendor(ctx context.Context, vendorID uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.db.WithContext(ctx).First(&vendor, "id = ?", vendorID).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}
