package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// SelectedVariant records one variant choice made for a cart or order line,
// e.g. group "Size" -> variant "Large" with a +5,000 VND adjustment.
type SelectedVariant struct {
	GroupID         uuid.UUID `json:"group_id"`
	GroupName       string    `json:"group_name"`
	VariantID       uuid.UUID `json:"variant_id"`
	VariantName     string    `json:"variant_name"`
	PriceAdjustment int64     `json:"price_adjustment"`
}

// SelectedVariants is stored as a JSONB column on cart and order items.
type SelectedVariants []SelectedVariant

// Value serializes the selection list to JSON.
func (s SelectedVariants) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan decodes JSONB into the selection list.
func (s *SelectedVariants) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded SelectedVariants
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*s = decoded
	return nil
}

// AdjustmentTotal sums the price adjustments across all selections.
func (s SelectedVariants) AdjustmentTotal() int64 {
	var total int64
	for _, sel := range s {
		total += sel.PriceAdjustment
	}
	return total
}

// GroupIDs returns the variant group IDs covered by the selection.
func (s SelectedVariants) GroupIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s))
	for _, sel := range s {
		ids = append(ids, sel.GroupID)
	}
	return ids
}

func asJSON(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported scan type %T", value)
	}
}
