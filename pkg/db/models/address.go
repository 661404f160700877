package models

import (
	"time"

	"github.com/google/uuid"
)

// Address is a saved delivery address. At most one per user is default.
type Address struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	RecipientName string    `gorm:"column:recipient_name;not null"`
	Phone         string    `gorm:"column:phone;not null"`
	AddressLine   string    `gorm:"column:address_line;not null"`
	Ward          string    `gorm:"column:ward;not null"`
	District      string    `gorm:"column:district;not null"`
	Province      string    `gorm:"column:province;not null"`
	IsDefault     bool      `gorm:"column:is_default;not null;default:false"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
