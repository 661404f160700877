package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tuanvle/dacsan-backend/pkg/enums"
)

// Order is the customer-facing parent order. Its status is derived from
// the statuses of its sub-orders. Amounts are integer VND.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber   string              `gorm:"column:order_number;not null;uniqueIndex"`
	UserID        uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	Status        enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'PENDING'"`
	Subtotal      int64               `gorm:"column:subtotal;not null"`
	ShippingFee   int64               `gorm:"column:shipping_fee;not null;default:0"`
	TotalAmount   int64               `gorm:"column:total_amount;not null"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	RecipientName string              `gorm:"column:recipient_name;not null"`
	Phone         string              `gorm:"column:phone;not null"`
	AddressLine   string              `gorm:"column:address_line;not null"`
	Ward          string              `gorm:"column:ward;not null"`
	District      string              `gorm:"column:district;not null"`
	Province      string              `gorm:"column:province;not null"`
	Notes         *string             `gorm:"column:notes"`
	SubOrders     []SubOrder          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CompletedAt   *time.Time          `gorm:"column:completed_at"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
