package pricing

import (
	"github.com/google/uuid"

	"github.com/tuanvle/dacsan-backend/pkg/db/models"
)

// VendorGroup is one vendor's slice of the cart.
type VendorGroup struct {
	VendorID   uuid.UUID
	VendorName string
	Items      []models.CartItem
	Subtotal   int64
	ItemCount  int
}

// Summary is the derived cart view returned to clients.
type Summary struct {
	Groups      []VendorGroup
	TotalAmount int64
	TotalItems  int
}

// AggregateCart groups cart items by vendor, preserving the order in which
// each vendor first appears, and sums line totals and quantities from the
// stored snapshots. It never re-prices.
func AggregateCart(items []models.CartItem) Summary {
	summary := Summary{Groups: make([]VendorGroup, 0)}
	indexByVendor := make(map[uuid.UUID]int)

	for _, item := range items {
		idx, ok := indexByVendor[item.VendorID]
		if !ok {
			idx = len(summary.Groups)
			indexByVendor[item.VendorID] = idx
			summary.Groups = append(summary.Groups, VendorGroup{
				VendorID:   item.VendorID,
				VendorName: item.VendorName,
			})
		}

		group := &summary.Groups[idx]
		group.Items = append(group.Items, item)
		group.Subtotal += item.LineTotal
		group.ItemCount += item.Quantity

		summary.TotalAmount += item.LineTotal
		summary.TotalItems += item.Quantity
	}

	return summary
}
