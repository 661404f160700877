package pricing

import (
	"testing"

	"github.com/google/uuid"

	"github.com/tuanvle/dacsan-backend/pkg/db/models"
	"github.com/tuanvle/dacsan-backend/pkg/errors"
)

func newProduct(basePrice int64, groups ...models.VariantGroup) *models.Product {
	return &models.Product{
		ID:            uuid.New(),
		VendorID:      uuid.New(),
		Name:          "Bún bò Huế",
		BasePrice:     basePrice,
		IsAvailable:   true,
		VariantGroups: groups,
	}
}

func newGroup(name string, required, multi bool, variants ...models.Variant) models.VariantGroup {
	id := uuid.New()
	for i := range variants {
		variants[i].GroupID = id
	}
	return models.VariantGroup{
		ID:          id,
		Name:        name,
		Required:    required,
		MultiSelect: multi,
		Variants:    variants,
	}
}

func newVariant(name string, adjustment int64) models.Variant {
	return models.Variant{ID: uuid.New(), Name: name, PriceAdjustment: adjustment, IsAvailable: true}
}

func TestComputeLinePrice_BaseOnly(t *testing.T) {
	product := newProduct(50_000)

	for _, qty := range []int{1, 2, 7} {
		quote, err := ComputeLinePrice(product, nil, qty)
		if err != nil {
			t.Fatalf("qty %d: unexpected error: %v", qty, err)
		}
		if quote.UnitPrice != 50_000 {
			t.Fatalf("qty %d: unit price = %d, want 50000", qty, quote.UnitPrice)
		}
		if want := int64(50_000) * int64(qty); quote.LineTotal != want {
			t.Fatalf("qty %d: line total = %d, want %d", qty, quote.LineTotal, want)
		}
	}
}

func TestComputeLinePrice_SumsAdjustments(t *testing.T) {
	size := newGroup("Size", true, false, newVariant("Nhỏ", 0), newVariant("Lớn", 10_000))
	toppings := newGroup("Toppings", false, true, newVariant("Chả", 5_000), newVariant("Trứng", 3_000))
	product := newProduct(30_000, size, toppings)

	selections := []Selection{
		{GroupID: size.ID, VariantID: size.Variants[1].ID},
		{GroupID: toppings.ID, VariantID: toppings.Variants[0].ID},
		{GroupID: toppings.ID, VariantID: toppings.Variants[1].ID},
	}

	quote, err := ComputeLinePrice(product, selections, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.UnitPrice != 48_000 {
		t.Fatalf("unit price = %d, want 48000", quote.UnitPrice)
	}
	if quote.LineTotal != 96_000 {
		t.Fatalf("line total = %d, want 96000", quote.LineTotal)
	}
	if len(quote.Selections) != 3 {
		t.Fatalf("expected 3 resolved selections, got %d", len(quote.Selections))
	}
	if quote.Selections[0].GroupName != "Size" || quote.Selections[0].VariantName != "Lớn" {
		t.Fatalf("unexpected first selection snapshot: %+v", quote.Selections[0])
	}
}

func TestComputeLinePrice_MissingRequiredGroup(t *testing.T) {
	size := newGroup("Size", true, false, newVariant("Nhỏ", 0))
	spice := newGroup("Spice level", true, false, newVariant("Cay", 0))
	product := newProduct(30_000, size, spice)

	_, err := ComputeLinePrice(product, nil, 1)
	if err == nil {
		t.Fatal("expected error for missing required groups")
	}
	appErr := errors.As(err)
	if appErr == nil || appErr.Code() != errors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := appErr.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", appErr.Details())
	}
	missing, ok := details["missing_groups"].([]string)
	if !ok {
		t.Fatalf("expected missing_groups slice, got %T", details["missing_groups"])
	}
	if len(missing) != 2 || missing[0] != "Size" || missing[1] != "Spice level" {
		t.Fatalf("missing groups = %v, want [Size, Spice level]", missing)
	}
}

func TestComputeLinePrice_Rejections(t *testing.T) {
	size := newGroup("Size", true, false, newVariant("Nhỏ", 0), newVariant("Lớn", 10_000))
	soldOut := newVariant("Hết hàng", 2_000)
	soldOut.IsAvailable = false
	extras := newGroup("Extras", false, true, soldOut)
	product := newProduct(30_000, size, extras)

	pick := func(g models.VariantGroup, i int) Selection {
		return Selection{GroupID: g.ID, VariantID: g.Variants[i].ID}
	}

	cases := []struct {
		name       string
		selections []Selection
		quantity   int
	}{
		{"zero quantity", []Selection{pick(size, 0)}, 0},
		{"negative quantity", []Selection{pick(size, 0)}, -3},
		{"unknown group", []Selection{{GroupID: uuid.New(), VariantID: size.Variants[0].ID}}, 1},
		{"variant not in group", []Selection{{GroupID: size.ID, VariantID: uuid.New()}}, 1},
		{"double pick in single-select group", []Selection{pick(size, 0), pick(size, 1)}, 1},
		{"unavailable variant", []Selection{pick(size, 0), pick(extras, 0)}, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputeLinePrice(product, tc.selections, tc.quantity)
			if err == nil {
				t.Fatal("expected error")
			}
			appErr := errors.As(err)
			if appErr == nil || appErr.Code() != errors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestAggregateCart_TwoVendorScenario(t *testing.T) {
	vendorA := uuid.New()
	vendorB := uuid.New()

	items := []models.CartItem{
		{VendorID: vendorA, VendorName: "Quán A", UnitPrice: 50_000, Quantity: 2, LineTotal: 100_000},
		{VendorID: vendorB, VendorName: "Quán B", UnitPrice: 35_000, Quantity: 1, LineTotal: 35_000},
	}

	summary := AggregateCart(items)
	if len(summary.Groups) != 2 {
		t.Fatalf("expected 2 vendor groups, got %d", len(summary.Groups))
	}
	if summary.TotalAmount != 135_000 {
		t.Fatalf("total amount = %d, want 135000", summary.TotalAmount)
	}
	if summary.TotalItems != 3 {
		t.Fatalf("total items = %d, want 3", summary.TotalItems)
	}
	if summary.Groups[0].VendorID != vendorA {
		t.Fatal("expected vendor A first, preserving first-seen order")
	}
	if summary.Groups[0].Subtotal != 100_000 || summary.Groups[1].Subtotal != 35_000 {
		t.Fatalf("subtotals = %d/%d, want 100000/35000",
			summary.Groups[0].Subtotal, summary.Groups[1].Subtotal)
	}
}

func TestAggregateCart_TotalsAreOrderIndependent(t *testing.T) {
	vendorA := uuid.New()
	vendorB := uuid.New()

	items := []models.CartItem{
		{VendorID: vendorA, VendorName: "Quán A", Quantity: 2, LineTotal: 100_000},
		{VendorID: vendorB, VendorName: "Quán B", Quantity: 1, LineTotal: 35_000},
		{VendorID: vendorA, VendorName: "Quán A", Quantity: 1, LineTotal: 20_000},
	}
	reversed := []models.CartItem{items[2], items[1], items[0]}

	a := AggregateCart(items)
	b := AggregateCart(reversed)

	if a.TotalAmount != b.TotalAmount || a.TotalItems != b.TotalItems {
		t.Fatalf("totals diverge: %d/%d vs %d/%d",
			a.TotalAmount, a.TotalItems, b.TotalAmount, b.TotalItems)
	}
	if len(a.Groups) != 2 || len(b.Groups) != 2 {
		t.Fatalf("group counts diverge: %d vs %d", len(a.Groups), len(b.Groups))
	}
	if a.Groups[0].VendorID != vendorA {
		t.Fatal("first-seen order lost in forward pass")
	}
	if b.Groups[0].VendorID != vendorA {
		t.Fatal("first-seen order lost in reversed pass")
	}

	subtotals := func(s Summary) map[uuid.UUID]int64 {
		out := make(map[uuid.UUID]int64)
		for _, g := range s.Groups {
			out[g.VendorID] = g.Subtotal
		}
		return out
	}
	sa, sb := subtotals(a), subtotals(b)
	for vendor, want := range sa {
		if sb[vendor] != want {
			t.Fatalf("vendor %s subtotal diverges: %d vs %d", vendor, want, sb[vendor])
		}
	}
}

func TestAggregateCart_Empty(t *testing.T) {
	summary := AggregateCart(nil)
	if len(summary.Groups) != 0 || summary.TotalAmount != 0 || summary.TotalItems != 0 {
		t.Fatalf("expected empty summary, got %+v", summary)
	}
}
