// Package pricing holds the pure cart pricing rules. All amounts are
// integer VND; nothing here touches the database.
package pricing

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/tuanvle/dacsan-backend/pkg/db/models"
	"github.com/tuanvle/dacsan-backend/pkg/errors"
	"github.com/tuanvle/dacsan-backend/pkg/types"
)

// Selection references one variant choice by group and variant id.
type Selection struct {
	GroupID   uuid.UUID `json:"group_id" validate:"required"`
	VariantID uuid.UUID `json:"variant_id" validate:"required"`
}

// Quote is the priced result for a single line.
type Quote struct {
	UnitPrice  int64
	LineTotal  int64
	Quantity   int
	Selections types.SelectedVariants
}

// ComputeLinePrice prices one product line. The unit price is the product
// base price plus the adjustment of every selected variant; the line total
// is the unit price multiplied by the quantity.
//
// Every required variant group must be covered by at least one selection.
// When one or more required groups are missing, a single validation error
// is returned whose details list every missing group name.
func ComputeLinePrice(product *models.Product, selections []Selection, quantity int) (Quote, error) {
	if product == nil {
		return Quote{}, errors.New(errors.CodeValidation, "product is required")
	}
	if quantity < 1 {
		return Quote{}, errors.New(errors.CodeValidation, "quantity must be at least 1")
	}

	groupsByID := make(map[uuid.UUID]*models.VariantGroup, len(product.VariantGroups))
	for i := range product.VariantGroups {
		group := &product.VariantGroups[i]
		groupsByID[group.ID] = group
	}

	seenPerGroup := make(map[uuid.UUID]int, len(selections))
	resolved := make(types.SelectedVariants, 0, len(selections))
	adjustment := int64(0)

	for _, sel := range selections {
		group, ok := groupsByID[sel.GroupID]
		if !ok {
			return Quote{}, errors.New(errors.CodeValidation,
				fmt.Sprintf("variant group %s does not belong to product %q", sel.GroupID, product.Name))
		}

		seenPerGroup[group.ID]++
		if !group.MultiSelect && seenPerGroup[group.ID] > 1 {
			return Quote{}, errors.New(errors.CodeValidation,
				fmt.Sprintf("group %q allows only one selection", group.Name))
		}

		variant := findVariant(group, sel.VariantID)
		if variant == nil {
			return Quote{}, errors.New(errors.CodeValidation,
				fmt.Sprintf("variant %s does not belong to group %q", sel.VariantID, group.Name))
		}
		if !variant.IsAvailable {
			return Quote{}, errors.New(errors.CodeValidation,
				fmt.Sprintf("variant %q is not available", variant.Name))
		}

		adjustment += variant.PriceAdjustment
		resolved = append(resolved, types.SelectedVariant{
			GroupID:         group.ID,
			GroupName:       group.Name,
			VariantID:       variant.ID,
			VariantName:     variant.Name,
			PriceAdjustment: variant.PriceAdjustment,
		})
	}

	var missing []string
	for i := range product.VariantGroups {
		group := &product.VariantGroups[i]
		if group.Required && seenPerGroup[group.ID] == 0 {
			missing = append(missing, group.Name)
		}
	}
	if len(missing) > 0 {
		return Quote{}, errors.New(errors.CodeValidation, "required variant groups are missing").
			WithDetails(map[string]any{"missing_groups": missing})
	}

	unitPrice := product.BasePrice + adjustment
	return Quote{
		UnitPrice:  unitPrice,
		LineTotal:  unitPrice * int64(quantity),
		Quantity:   quantity,
		Selections: resolved,
	}, nil
}

func findVariant(group *models.VariantGroup, id uuid.UUID) *models.Variant {
	for i := range group.Variants {
		if group.Variants[i].ID == id {
			return &group.Variants[i]
		}
	}
	return nil
}
