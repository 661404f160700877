package orders

import "github.com/tuanvle/dacsan-backend/pkg/enums"

// allowedTransitions is the authoritative sub-order state machine. The
// legality check runs before any database write; everything not listed
// here is rejected as a state conflict.
var allowedTransitions = map[enums.SubOrderStatus][]enums.SubOrderStatus{
	enums.SubOrderStatusPending: {
		enums.SubOrderStatusCooking,
		enums.SubOrderStatusCancelled,
	},
	enums.SubOrderStatusCooking: {
		enums.SubOrderStatusPickedUp,
		enums.SubOrderStatusReady,
	},
	enums.SubOrderStatusReady: {
		enums.SubOrderStatusDelivering,
	},
	enums.SubOrderStatusPickedUp: {
		enums.SubOrderStatusDelivering,
	},
	enums.SubOrderStatusDelivering: {
		enums.SubOrderStatusDelivered,
	},
}

// CanTransition reports whether moving from one sub-order status to another
// is permitted by the pipeline.
func CanTransition(from, to enums.SubOrderStatus) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// RollupOrderStatus derives the parent order status from its sub-order
// statuses. READY and PICKED_UP both count as awaiting pickup, but PICKED_UP
// pushes the order into DELIVERING because the courier handoff has started.
func RollupOrderStatus(statuses []enums.SubOrderStatus) enums.OrderStatus {
	if len(statuses) == 0 {
		return enums.OrderStatusPending
	}

	allDelivered := true
	allCancelled := true
	allTerminal := true
	anyDelivered := false
	anyPickedUp := false
	anyReady := false
	anyCooking := false

	for _, status := range statuses {
		switch status {
		case enums.SubOrderStatusDelivered:
			anyDelivered = true
			allCancelled = false
		case enums.SubOrderStatusCancelled:
			allDelivered = false
		default:
			allDelivered = false
			allCancelled = false
			allTerminal = false
		}

		switch status {
		case enums.SubOrderStatusPickedUp, enums.SubOrderStatusDelivering:
			anyPickedUp = true
		case enums.SubOrderStatusReady:
			anyReady = true
		case enums.SubOrderStatusCooking:
			anyCooking = true
		}
	}

	switch {
	case allDelivered:
		return enums.OrderStatusCompleted
	case allCancelled:
		return enums.OrderStatusCancelled
	case allTerminal && anyDelivered:
		// Mixed delivered/cancelled: everything that could arrive has arrived.
		return enums.OrderStatusCompleted
	case anyPickedUp:
		return enums.OrderStatusDelivering
	case anyReady:
		return enums.OrderStatusReady
	case anyCooking:
		return enums.OrderStatusPreparing
	default:
		return enums.OrderStatusConfirmed
	}
}
