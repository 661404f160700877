package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tuanvle/dacsan-backend/pkg/enums"
)

// Product represents a regional specialty dish listed by a vendor.
// BasePrice is integer VND.
type Product struct {
	ID            uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VendorID      uuid.UUID             `gorm:"column:vendor_id;type:uuid;not null;index"`
	Name          string                `gorm:"column:name;not null"`
	Description   *string               `gorm:"column:description"`
	Category      enums.ProductCategory `gorm:"column:category;type:text;not null"`
	Region        enums.Region          `gorm:"column:region;type:text;not null"`
	Province      string                `gorm:"column:province;not null"`
	BasePrice     int64                 `gorm:"column:base_price;not null"`
	ImageURL      *string               `gorm:"column:image_url"`
	IsAvailable   bool                  `gorm:"column:is_available;not null;default:true"`
	IsFeatured    bool                  `gorm:"column:is_featured;not null;default:false"`
	VariantGroups []VariantGroup        `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
