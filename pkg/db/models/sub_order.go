package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tuanvle/dacsan-backend/pkg/enums"
)

// SubOrder is the per-vendor slice of an order. It carries the status the
// vendor drives through the cooking pipeline.
type SubOrder struct {
	ID               uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID          uuid.UUID            `gorm:"column:order_id;type:uuid;not null;index"`
	VendorID         uuid.UUID            `gorm:"column:vendor_id;type:uuid;not null;index"`
	SubOrderNumber   string               `gorm:"column:sub_order_number;not null;uniqueIndex"`
	Status           enums.SubOrderStatus `gorm:"column:status;type:text;not null;default:'PENDING'"`
	Subtotal         int64                `gorm:"column:subtotal;not null"`
	Items            []OrderItem          `gorm:"foreignKey:SubOrderID;constraint:OnDelete:CASCADE"`
	CookingStartedAt *time.Time           `gorm:"column:cooking_started_at"`
	DeliveredAt      *time.Time           `gorm:"column:delivered_at"`
	CancelledAt      *time.Time           `gorm:"column:cancelled_at"`
	CreatedAt        time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
