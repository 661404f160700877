package orders

import (
	"github.com/tuanvle/dacsan-backend/pkg/db/models"
	"github.com/tuanvle/dacsan-backend/pkg/enums"
)

// Bucket names one column of the vendor dashboard.
type Bucket string

const (
	BucketPending    Bucket = "PENDING"
	BucketCooking    Bucket = "COOKING"
	BucketDelivering Bucket = "DELIVERING"
	BucketHistory    Bucket = "HISTORY"
)

// BucketedSubOrder pairs a sub-order with its parent order status so the
// partition can apply the terminal-parent rule.
type BucketedSubOrder struct {
	SubOrder    models.SubOrder
	OrderStatus enums.OrderStatus
}

// Partition is the dashboard view: each sub-order appears in exactly one
// bucket.
type Partition struct {
	Pending    []models.SubOrder
	Cooking    []models.SubOrder
	Delivering []models.SubOrder
	History    []models.SubOrder
}

// BucketFor places one sub-order. A sub-order whose parent order is terminal
// belongs to HISTORY regardless of its own status, so nothing terminal ever
// lingers in an active work queue.
func BucketFor(sub models.SubOrder, orderStatus enums.OrderStatus) Bucket {
	if orderStatus.IsTerminal() || sub.Status.IsTerminal() {
		return BucketHistory
	}
	switch sub.Status {
	case enums.SubOrderStatusPending:
		return BucketPending
	case enums.SubOrderStatusCooking:
		return BucketCooking
	default:
		// READY, PICKED_UP, and DELIVERING all share the awaiting-pickup
		// and on-the-road column.
		return BucketDelivering
	}
}

// PartitionSubOrders splits the input into the four dashboard buckets,
// preserving input order inside each bucket.
func PartitionSubOrders(items []BucketedSubOrder) Partition {
	var partition Partition
	for _, item := range items {
		switch BucketFor(item.SubOrder, item.OrderStatus) {
		case BucketPending:
			partition.Pending = append(partition.Pending, item.SubOrder)
		case BucketCooking:
			partition.Cooking = append(partition.Cooking, item.SubOrder)
		case BucketDelivering:
			partition.Delivering = append(partition.Delivering, item.SubOrder)
		default:
			partition.History = append(partition.History, item.SubOrder)
		}
	}
	return partition
}
