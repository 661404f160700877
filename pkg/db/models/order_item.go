package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tuanvle/dacsan-backend/pkg/types"
)

// OrderItem is an immutable line snapshot taken at checkout time.
type OrderItem struct {
	ID               uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SubOrderID       uuid.UUID              `gorm:"column:sub_order_id;type:uuid;not null;index"`
	ProductID        uuid.UUID              `gorm:"column:product_id;type:uuid;not null"`
	ProductName      string                 `gorm:"column:product_name;not null"`
	UnitPrice        int64                  `gorm:"column:unit_price;not null"`
	Quantity         int                    `gorm:"column:quantity;not null"`
	LineTotal        int64                  `gorm:"column:line_total;not null"`
	SelectedVariants types.SelectedVariants `gorm:"column:selected_variants;type:jsonb;serializer:json"`
	CreatedAt        time.Time              `gorm:"column:created_at;autoCreateTime"`
}
