package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tuanvle/dacsan-backend/pkg/enums"
)

// Vendor is the storefront profile owned by a VENDOR user.
type Vendor struct {
	ID          uuid.UUID    `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID    `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	StoreName   string       `gorm:"column:store_name;not null"`
	Description *string      `gorm:"column:description"`
	Region      enums.Region `gorm:"column:region;type:text;not null"`
	Province    string       `gorm:"column:province;not null"`
	Phone       *string      `gorm:"column:phone"`
	IsActive    bool         `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}
