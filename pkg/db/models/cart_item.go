package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tuanvle/dacsan-backend/pkg/types"
)

// CartItem persists a priced line snapshot tied to a Cart. UnitPrice and
// LineTotal are integer VND captured at add time.
type CartItem struct {
	ID               uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID           uuid.UUID              `gorm:"column:cart_id;type:uuid;not null;index"`
	ProductID        uuid.UUID              `gorm:"column:product_id;type:uuid;not null"`
	VendorID         uuid.UUID              `gorm:"column:vendor_id;type:uuid;not null"`
	ProductName      string                 `gorm:"column:product_name;not null"`
	VendorName       string                 `gorm:"column:vendor_name;not null"`
	UnitPrice        int64                  `gorm:"column:unit_price;not null"`
	Quantity         int                    `gorm:"column:quantity;not null"`
	LineTotal        int64                  `gorm:"column:line_total;not null"`
	SelectedVariants types.SelectedVariants `gorm:"column:selected_variants;type:jsonb;serializer:json"`
	CreatedAt        time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
