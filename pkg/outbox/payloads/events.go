package payloads

import (
	"github.com/google/uuid"

	"github.com/tuanvle/dacsan-backend/pkg/enums"
)

// SubOrderCreatedEvent is emitted once per vendor sub-order at checkout.
type SubOrderCreatedEvent struct {
	OrderID        uuid.UUID `json:"order_id"`
	SubOrderID     uuid.UUID `json:"sub_order_id"`
	SubOrderNumber string    `json:"sub_order_number"`
	CustomerID     uuid.UUID `json:"customer_id"`
	VendorID       uuid.UUID `json:"vendor_id"`
	VendorUserID   uuid.UUID `json:"vendor_user_id"`
	Subtotal       int64     `json:"subtotal"`
	ItemCount      int       `json:"item_count"`
}

// SubOrderStatusChangedEvent is emitted on every sub-order status move.
type SubOrderStatusChangedEvent struct {
	OrderID        uuid.UUID            `json:"order_id"`
	SubOrderID     uuid.UUID            `json:"sub_order_id"`
	SubOrderNumber string               `json:"sub_order_number"`
	CustomerID     uuid.UUID            `json:"customer_id"`
	VendorID       uuid.UUID            `json:"vendor_id"`
	VendorName     string               `json:"vendor_name"`
	FromStatus     enums.SubOrderStatus `json:"from_status"`
	ToStatus       enums.SubOrderStatus `json:"to_status"`
	OrderStatus    enums.OrderStatus    `json:"order_status"`
	Automatic      bool                 `json:"automatic"`
}
