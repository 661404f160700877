package models

import (
	"time"

	"github.com/google/uuid"
)

// VariantGroup is a named option set on a product, e.g. "Size" or "Toppings".
type VariantGroup struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID   uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	Name        string    `gorm:"column:name;not null"`
	Required    bool      `gorm:"column:required;not null;default:false"`
	MultiSelect bool      `gorm:"column:multi_select;not null;default:false"`
	Position    int       `gorm:"column:position;not null;default:0"`
	Variants    []Variant `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Variant is one selectable option inside a group. PriceAdjustment is
// integer VND added to the product base price when selected.
type Variant struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GroupID         uuid.UUID `gorm:"column:group_id;type:uuid;not null;index"`
	Name            string    `gorm:"column:name;not null"`
	PriceAdjustment int64     `gorm:"column:price_adjustment;not null;default:0"`
	IsAvailable     bool      `gorm:"column:is_available;not null;default:true"`
	Position        int       `gorm:"column:position;not null;default:0"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
