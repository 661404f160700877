package checkout

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tuanvle/dacsan-backend/pkg/db/models"
	"github.com/tuanvle/dacsan-backend/pkg/enums"
	pkgerrors "github.com/tuanvle/dacsan-backend/pkg/errors"
	"github.com/tuanvle/dacsan-backend/pkg/outbox"
	"github.com/tuanvle/dacsan-backend/pkg/outbox/payloads"
)

type stubCheckoutRepo struct {
	address *models.Address
	cart    *models.Cart
	vendors map[uuid.UUID]*models.Vendor

	orderCount int64
	created    *models.Order
	cleared    bool
}

func (s *stubCheckoutRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCheckoutRepo) FindAddress(ctx context.Context, addressID uuid.UUID) (*models.Address, error) {
	if s.address == nil || s.address.ID != addressID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.address, nil
}

func (s *stubCheckoutRepo) FindCartByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if s.cart == nil || s.cart.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.cart, nil
}

func (s *stubCheckoutRepo) FindVendor(ctx context.Context, vendorID uuid.UUID) (*models.Vendor, error) {
	vendor, ok := s.vendors[vendorID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return vendor, nil
}

func (s *stubCheckoutRepo) CountOrders(ctx context.Context) (int64, error) {
	return s.orderCount, nil
}

func (s *stubCheckoutRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	s.created = order
	return nil
}

func (s *stubCheckoutRepo) DeleteCartItems(ctx context.Context, cartID uuid.UUID) error {
	s.cleared = true
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubEmitter struct {
	events []outbox.DomainEvent
}

func (s *stubEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func twoVendorFixture() (*stubCheckoutRepo, uuid.UUID) {
	userID := uuid.New()
	vendorA := &models.Vendor{ID: uuid.New(), UserID: uuid.New(), StoreName: "Bếp Cô Ba"}
	vendorB := &models.Vendor{ID: uuid.New(), UserID: uuid.New(), StoreName: "Nhà Hàng Phố Cổ"}

	repo := &stubCheckoutRepo{
		address: &models.Address{
			ID:            uuid.New(),
			UserID:        userID,
			RecipientName: "Trần Văn Bình",
			Phone:         "0901234567",
			AddressLine:   "12 Lý Thường Kiệt",
			Ward:          "Phường 5",
			District:      "Quận 3",
			Province:      "Thừa Thiên Huế",
		},
		cart: &models.Cart{
			ID:     uuid.New(),
			UserID: userID,
			Items: []models.CartItem{
				{ID: uuid.New(), ProductID: uuid.New(), VendorID: vendorA.ID, ProductName: "Nem chua", VendorName: vendorA.StoreName, UnitPrice: 25000, Quantity: 2, LineTotal: 50000},
				{ID: uuid.New(), ProductID: uuid.New(), VendorID: vendorB.ID, ProductName: "Chả cá", VendorName: vendorB.StoreName, UnitPrice: 35000, Quantity: 1, LineTotal: 35000},
			},
		},
		vendors: map[uuid.UUID]*models.Vendor{
			vendorA.ID: vendorA,
			vendorB.ID: vendorB,
		},
	}
	return repo, userID
}

func newCheckoutService(t *testing.T, repo Repository, emitter outboxPublisher) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, emitter)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestCreateOrderSplitsByVendor(t *testing.T) {
	repo, userID := twoVendorFixture()
	emitter := &stubEmitter{}
	svc := newCheckoutService(t, repo, emitter)

	order, err := svc.CreateOrder(context.Background(), userID, CreateOrderInput{
		AddressID:     repo.address.ID,
		PaymentMethod: enums.PaymentMethodCOD,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(order.SubOrders) != 2 {
		t.Fatalf("expected 2 sub-orders, got %d", len(order.SubOrders))
	}
	if order.Subtotal != 85000 {
		t.Fatalf("subtotal = %d, want 85000", order.Subtotal)
	}
	if order.ShippingFee != 20000 {
		t.Fatalf("shipping fee = %d, want 20000", order.ShippingFee)
	}
	if order.TotalAmount != 105000 {
		t.Fatalf("total = %d, want 105000", order.TotalAmount)
	}

	if !strings.HasPrefix(order.OrderNumber, "ORD") || len(order.OrderNumber) != 16 {
		t.Fatalf("order number %q has wrong shape", order.OrderNumber)
	}
	if got := order.SubOrders[0].SubOrderNumber; got != order.OrderNumber+"-A" {
		t.Fatalf("first sub-order number = %q", got)
	}
	if got := order.SubOrders[1].SubOrderNumber; got != order.OrderNumber+"-B" {
		t.Fatalf("second sub-order number = %q", got)
	}

	// First-seen vendor order: vendorA appeared first in the cart.
	if order.SubOrders[0].Subtotal != 50000 || order.SubOrders[1].Subtotal != 35000 {
		t.Fatalf("sub-order subtotals = %d/%d", order.SubOrders[0].Subtotal, order.SubOrders[1].Subtotal)
	}
	if len(order.SubOrders[0].Items) != 1 || order.SubOrders[0].Items[0].ProductName != "Nem chua" {
		t.Fatal("item snapshots not grouped under the right vendor")
	}

	if !repo.cleared {
		t.Fatal("cart must be cleared in the same transaction")
	}
	if len(emitter.events) != 2 {
		t.Fatalf("expected one event per sub-order, got %d", len(emitter.events))
	}
	payload, ok := emitter.events[0].Data.(payloads.SubOrderCreatedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", emitter.events[0].Data)
	}
	if payload.VendorUserID == uuid.Nil {
		t.Fatal("event must carry the vendor user for notification routing")
	}
}

func TestCreateOrderFreeShippingOverThreshold(t *testing.T) {
	repo, userID := twoVendorFixture()
	repo.cart.Items[0].LineTotal = 90000
	repo.cart.Items[1].LineTotal = 30000
	emitter := &stubEmitter{}
	svc := newCheckoutService(t, repo, emitter)

	order, err := svc.CreateOrder(context.Background(), userID, CreateOrderInput{
		AddressID:     repo.address.ID,
		PaymentMethod: enums.PaymentMethodBankTransfer,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ShippingFee != 0 {
		t.Fatalf("shipping fee = %d, want free over threshold", order.ShippingFee)
	}
	if order.TotalAmount != 120000 {
		t.Fatalf("total = %d, want 120000", order.TotalAmount)
	}
}

func TestCreateOrderEmptyCartRejected(t *testing.T) {
	repo, userID := twoVendorFixture()
	repo.cart.Items = nil
	emitter := &stubEmitter{}
	svc := newCheckoutService(t, repo, emitter)

	_, err := svc.CreateOrder(context.Background(), userID, CreateOrderInput{
		AddressID:     repo.address.ID,
		PaymentMethod: enums.PaymentMethodCOD,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repo.created != nil || len(emitter.events) != 0 {
		t.Fatal("empty cart must create nothing")
	}
}

func TestCreateOrderForeignAddressForbidden(t *testing.T) {
	repo, userID := twoVendorFixture()
	repo.address.UserID = uuid.New()
	emitter := &stubEmitter{}
	svc := newCheckoutService(t, repo, emitter)

	_, err := svc.CreateOrder(context.Background(), userID, CreateOrderInput{
		AddressID:     repo.address.ID,
		PaymentMethod: enums.PaymentMethodCOD,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if repo.created != nil {
		t.Fatal("foreign address must create nothing")
	}
}

func TestVendorSuffixStaysAlphabetical(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{0, "A"},
		{1, "B"},
		{25, "Z"},
		{26, "AA"},
		{27, "AB"},
		{51, "AZ"},
		{52, "BA"},
		{701, "ZZ"},
		{702, "AAA"},
	}
	for _, tt := range tests {
		if got := vendorSuffix(tt.index); got != tt.want {
			t.Fatalf("vendorSuffix(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}
