package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tuanvle/dacsan-backend/pkg/db/models"
	pkgerrors "github.com/tuanvle/dacsan-backend/pkg/errors"
	"github.com/tuanvle/dacsan-backend/pkg/pricing"
)

type stubCartRepo struct {
	carts    map[uuid.UUID]*models.Cart
	products map[uuid.UUID]*models.Product
	vendors  map[uuid.UUID]*models.Vendor

	deletes int
	updates int
}

func newStubCartRepo() *stubCartRepo {
	return &stubCartRepo{
		carts:    make(map[uuid.UUID]*models.Cart),
		products: make(map[uuid.UUID]*models.Product),
		vendors:  make(map[uuid.UUID]*models.Vendor),
	}
}

func (s *stubCartRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCartRepo) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, ok := s.carts[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *cart
	return &copied, nil
}

func (s *stubCartRepo) Create(ctx context.Context, cart *models.Cart) error {
	cart.ID = uuid.New()
	s.carts[cart.UserID] = cart
	return nil
}

func (s *stubCartRepo) FindItem(ctx context.Context, itemID uuid.UUID) (*models.CartItem, error) {
	for _, cart := range s.carts {
		for i := range cart.Items {
			if cart.Items[i].ID == itemID {
				copied := cart.Items[i]
				return &copied, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCartRepo) InsertItem(ctx context.Context, item *models.CartItem) error {
	item.ID = uuid.New()
	for _, cart := range s.carts {
		if cart.ID == item.CartID {
			cart.Items = append(cart.Items, *item)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *stubCartRepo) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int, lineTotal int64) error {
	s.updates++
	for _, cart := range s.carts {
		for i := range cart.Items {
			if cart.Items[i].ID == itemID {
				cart.Items[i].Quantity = quantity
				cart.Items[i].LineTotal = lineTotal
				return nil
			}
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *stubCartRepo) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	s.deletes++
	for _, cart := range s.carts {
		for i := range cart.Items {
			if cart.Items[i].ID == itemID {
				cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

func (s *stubCartRepo) DeleteItems(ctx context.Context, cartID uuid.UUID) error {
	for _, cart := range s.carts {
		if cart.ID == cartID {
			cart.Items = nil
		}
	}
	return nil
}

func (s *stubCartRepo) FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, ok := s.products[productID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

func (s *stubCartRepo) FindVendor(ctx context.Context, vendorID uuid.UUID) (*models.Vendor, error) {
	vendor, ok := s.vendors[vendorID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return vendor, nil
}

func seedProduct(repo *stubCartRepo, basePrice int64) *models.Product {
	vendor := &models.Vendor{ID: uuid.New(), StoreName: "Đặc Sản Miền Trung"}
	repo.vendors[vendor.ID] = vendor

	groupID := uuid.New()
	smallID := uuid.New()
	largeID := uuid.New()
	product := &models.Product{
		ID:          uuid.New(),
		VendorID:    vendor.ID,
		Name:        "Bánh tráng nướng",
		BasePrice:   basePrice,
		IsAvailable: true,
		VariantGroups: []models.VariantGroup{
			{
				ID:        groupID,
				Name:      "Size",
				Required:  true,
				Variants: []models.Variant{
					{ID: smallID, GroupID: groupID, Name: "Small", PriceAdjustment: 0, IsAvailable: true},
					{ID: largeID, GroupID: groupID, Name: "Large", PriceAdjustment: 8000, IsAvailable: true},
				},
			},
		},
	}
	repo.products[product.ID] = product
	return product
}

func newCartService(t *testing.T, repo *stubCartRepo) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestGetCreatesEmptyCart(t *testing.T) {
	repo := newStubCartRepo()
	svc := newCartService(t, repo)
	userID := uuid.New()

	view, err := svc.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.TotalAmount != 0 || view.TotalItems != 0 {
		t.Fatalf("fresh cart totals = %d/%d, want 0/0", view.TotalAmount, view.TotalItems)
	}
	if _, ok := repo.carts[userID]; !ok {
		t.Fatal("first fetch must persist an empty cart")
	}
}

func TestAddItemSnapshotsPricing(t *testing.T) {
	repo := newStubCartRepo()
	svc := newCartService(t, repo)
	userID := uuid.New()
	product := seedProduct(repo, 40000)
	large := product.VariantGroups[0].Variants[1]

	view, err := svc.AddItem(context.Background(), userID, AddItemInput{
		ProductID: product.ID,
		Quantity:  2,
		Selections: []pricing.Selection{
			{GroupID: product.VariantGroups[0].ID, VariantID: large.ID},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Cart.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(view.Cart.Items))
	}
	item := view.Cart.Items[0]
	if item.UnitPrice != 48000 || item.LineTotal != 96000 {
		t.Fatalf("snapshot = %d/%d, want 48000/96000", item.UnitPrice, item.LineTotal)
	}
	if item.VendorName != "Đặc Sản Miền Trung" {
		t.Fatalf("vendor name snapshot = %q", item.VendorName)
	}
	if view.TotalAmount != 96000 || view.TotalItems != 2 {
		t.Fatalf("totals = %d/%d, want 96000/2", view.TotalAmount, view.TotalItems)
	}
}

func TestAddItemRejectsUnavailableProduct(t *testing.T) {
	repo := newStubCartRepo()
	svc := newCartService(t, repo)
	userID := uuid.New()
	product := seedProduct(repo, 40000)
	product.IsAvailable = false

	_, err := svc.AddItem(context.Background(), userID, AddItemInput{
		ProductID: product.ID,
		Quantity:  1,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(repo.carts[userID].Items) != 0 {
		t.Fatal("rejected add must not store a line")
	}
}

func TestUpdateQuantityBelowOneRemoves(t *testing.T) {
	repo := newStubCartRepo()
	svc := newCartService(t, repo)
	userID := uuid.New()
	product := seedProduct(repo, 55000)
	group := product.VariantGroups[0]

	view, err := svc.AddItem(context.Background(), userID, AddItemInput{
		ProductID:  product.ID,
		Quantity:   1,
		Selections: []pricing.Selection{{GroupID: group.ID, VariantID: group.Variants[0].ID}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	itemID := view.Cart.Items[0].ID

	view, err = svc.UpdateItemQuantity(context.Background(), userID, itemID, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Cart.Items) != 0 {
		t.Fatal("quantity zero must delete the line")
	}
	if repo.deletes != 1 || repo.updates != 0 {
		t.Fatalf("deletes=%d updates=%d, want 1/0", repo.deletes, repo.updates)
	}
}

func TestUpdateQuantityForeignItemForbidden(t *testing.T) {
	repo := newStubCartRepo()
	svc := newCartService(t, repo)
	owner := uuid.New()
	intruder := uuid.New()
	product := seedProduct(repo, 30000)
	group := product.VariantGroups[0]

	view, err := svc.AddItem(context.Background(), owner, AddItemInput{
		ProductID:  product.ID,
		Quantity:   1,
		Selections: []pricing.Selection{{GroupID: group.ID, VariantID: group.Variants[0].ID}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	itemID := view.Cart.Items[0].ID

	_, err = svc.UpdateItemQuantity(context.Background(), intruder, itemID, 3)
	if !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if repo.updates != 0 {
		t.Fatal("foreign item must not be updated")
	}
	if got := repo.carts[owner].Items[0].Quantity; got != 1 {
		t.Fatalf("stored quantity changed to %d", got)
	}
}

func TestClearEmptiesCart(t *testing.T) {
	repo := newStubCartRepo()
	svc := newCartService(t, repo)
	userID := uuid.New()
	product := seedProduct(repo, 25000)
	group := product.VariantGroups[0]

	if _, err := svc.AddItem(context.Background(), userID, AddItemInput{
		ProductID:  product.ID,
		Quantity:   2,
		Selections: []pricing.Selection{{GroupID: group.ID, VariantID: group.Variants[0].ID}},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Clear(context.Background(), userID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	view, err := svc.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.TotalItems != 0 {
		t.Fatalf("cart not cleared, %d items remain", view.TotalItems)
	}
}
