package notifications

import "github.com/tuanvle/dacsan-backend/pkg/enums"

// Customer-facing copy for each sub-order status, in Vietnamese like the
// rest of the storefront.
var statusMessages = map[enums.SubOrderStatus]string{
	enums.SubOrderStatusPending:    "Đơn hàng đang chờ xác nhận",
	enums.SubOrderStatusCooking:    "Bếp đang nấu! Đơn hàng sẽ được giao trong giây lát",
	enums.SubOrderStatusReady:      "Món ăn đã sẵn sàng",
	enums.SubOrderStatusPickedUp:   "Đơn hàng đang được giao đến bạn",
	enums.SubOrderStatusDelivering: "Đơn hàng đang trên đường đến bạn",
	enums.SubOrderStatusDelivered:  "Đơn hàng đã được giao thành công",
	enums.SubOrderStatusCancelled:  "Đơn hàng đã bị hủy",
}

const newOrderMessage = "Bạn có đơn hàng mới!"

// StatusMessage returns the customer copy for a status. Unknown statuses
// fall back to a generic update line.
func StatusMessage(status enums.SubOrderStatus) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return "Đơn hàng của bạn vừa được cập nhật"
}
