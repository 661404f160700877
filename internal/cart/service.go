package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tuanvle/dacsan-backend/pkg/db/models"
	pkgerrors "github.com/tuanvle/dacsan-backend/pkg/errors"
	"github.com/tuanvle/dacsan-backend/pkg/pricing"
)

// Service owns the customer cart: line snapshots plus the derived
// per-vendor view used by the cart page and checkout.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*View, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*View, error)
	UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*View, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*View, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

// AddItemInput is one add-to-cart request.
type AddItemInput struct {
	ProductID  uuid.UUID
	Quantity   int
	Selections []pricing.Selection
}

// View is the stored cart plus the derived vendor grouping and totals.
type View struct {
	Cart        models.Cart
	Groups      []pricing.VendorGroup
	TotalAmount int64
	TotalItems  int
}

type service struct {
	repo Repository
}

// NewService wires cart dependencies. Every mutation is a single row
// write, so no transaction runner is needed here.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "cart repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*View, error) {
	cart, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return buildView(cart), nil
}

func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*View, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	cart, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	product, err := s.repo.FindProduct(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsAvailable {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
	}

	quote, err := pricing.ComputeLinePrice(product, input.Selections, input.Quantity)
	if err != nil {
		return nil, err
	}

	vendor, err := s.repo.FindVendor(ctx, product.VendorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
	}

	item := &models.CartItem{
		CartID:           cart.ID,
		ProductID:        product.ID,
		VendorID:         product.VendorID,
		ProductName:      product.Name,
		VendorName:       vendor.StoreName,
		UnitPrice:        quote.UnitPrice,
		Quantity:         quote.Quantity,
		LineTotal:        quote.LineTotal,
		SelectedVariants: quote.Selections,
	}
	if err := s.repo.InsertItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert cart item")
	}
	return s.reload(ctx, userID)
}

func (s *service) UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*View, error) {
	_, item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	// A quantity below one is a removal request, not an error.
	if quantity < 1 {
		if err := s.repo.DeleteItem(ctx, item.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
		}
		return s.reload(ctx, userID)
	}

	product, err := s.repo.FindProduct(ctx, item.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is no longer available")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsAvailable {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
	}

	lineTotal := item.UnitPrice * int64(quantity)
	if err := s.repo.UpdateItemQuantity(ctx, item.ID, quantity, lineTotal); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
	}
	return s.reload(ctx, userID)
}

func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*View, error) {
	_, item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteItem(ctx, item.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
	}
	return s.reload(ctx, userID)
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	cart, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteItems(ctx, cart.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

// loadOrCreate fetches the user's cart, creating an empty one on first use.
func (s *service) loadOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	cart, err := s.repo.FindByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	fresh := &models.Cart{UserID: userID}
	if err := s.repo.Create(ctx, fresh); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return fresh, nil
}

// ownedItem resolves an item and verifies it sits in the caller's cart.
func (s *service) ownedItem(ctx context.Context, userID, itemID uuid.UUID) (*models.Cart, *models.CartItem, error) {
	cart, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if itemID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "cart item id required")
	}
	item, err := s.repo.FindItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}
	if item.CartID != cart.ID {
		return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "cart item does not belong to user")
	}
	return cart, item, nil
}

func (s *service) reload(ctx context.Context, userID uuid.UUID) (*View, error) {
	cart, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart")
	}
	return buildView(cart), nil
}

func buildView(cart *models.Cart) *View {
	summary := pricing.AggregateCart(cart.Items)
	return &View{
		Cart:        *cart,
		Groups:      summary.Groups,
		TotalAmount: summary.TotalAmount,
		TotalItems:  summary.TotalItems,
	}
}
