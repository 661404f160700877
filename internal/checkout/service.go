package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tuanvle/dacsan-backend/pkg/db/models"
	"github.com/tuanvle/dacsan-backend/pkg/enums"
	pkgerrors "github.com/tuanvle/dacsan-backend/pkg/errors"
	"github.com/tuanvle/dacsan-backend/pkg/outbox"
	"github.com/tuanvle/dacsan-backend/pkg/outbox/payloads"
	"github.com/tuanvle/dacsan-backend/pkg/pricing"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service turns a cart into an order graph: one parent order, one
// sub-order per vendor, immutable item snapshots, cart cleared, one
// outbox event per vendor. All of it in a single transaction.
type Service interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*models.Order, error)
}

// CreateOrderInput is one checkout request.
type CreateOrderInput struct {
	AddressID     uuid.UUID
	PaymentMethod enums.PaymentMethod
	Notes         *string
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

// NewService wires checkout dependencies.
func NewService(repo Repository, tx txRunner, emitter outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "checkout repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if emitter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: emitter}, nil
}

func (s *service) CreateOrder(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.AddressID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address id required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		address, err := repo.FindAddress(ctx, input.AddressID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
		}
		if address.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "address does not belong to user")
		}

		cart, err := repo.FindCartByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if len(cart.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		summary := pricing.AggregateCart(cart.Items)
		shippingFee := ShippingFee(address.Province, summary.TotalAmount)

		orderNumber, err := s.nextOrderNumber(ctx, repo)
		if err != nil {
			return err
		}

		order := &models.Order{
			ID:            uuid.New(),
			OrderNumber:   orderNumber,
			UserID:        userID,
			Status:        enums.OrderStatusPending,
			Subtotal:      summary.TotalAmount,
			ShippingFee:   shippingFee,
			TotalAmount:   summary.TotalAmount + shippingFee,
			PaymentMethod: input.PaymentMethod,
			RecipientName: address.RecipientName,
			Phone:         address.Phone,
			AddressLine:   address.AddressLine,
			Ward:          address.Ward,
			District:      address.District,
			Province:      address.Province,
			Notes:         input.Notes,
		}

		type vendorSlice struct {
			sub    models.SubOrder
			vendor *models.Vendor
		}
		slices := make([]vendorSlice, 0, len(summary.Groups))
		for i, group := range summary.Groups {
			vendor, err := repo.FindVendor(ctx, group.VendorID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
			}

			sub := models.SubOrder{
				ID:             uuid.New(),
				OrderID:        order.ID,
				VendorID:       group.VendorID,
				SubOrderNumber: fmt.Sprintf("%s-%s", orderNumber, vendorSuffix(i)),
				Status:         enums.SubOrderStatusPending,
				Subtotal:       group.Subtotal,
			}
			for _, line := range group.Items {
				sub.Items = append(sub.Items, models.OrderItem{
					SubOrderID:       sub.ID,
					ProductID:        line.ProductID,
					ProductName:      line.ProductName,
					UnitPrice:        line.UnitPrice,
					Quantity:         line.Quantity,
					LineTotal:        line.LineTotal,
					SelectedVariants: line.SelectedVariants,
				})
			}
			order.SubOrders = append(order.SubOrders, sub)
			slices = append(slices, vendorSlice{sub: sub, vendor: vendor})
		}

		if err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		if err := repo.DeleteCartItems(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}

		actor := &outbox.ActorRef{UserID: userID, Role: string(enums.UserRoleCustomer)}
		for _, slice := range slices {
			event := outbox.DomainEvent{
				EventType:     enums.EventSubOrderCreated,
				AggregateType: enums.AggregateSubOrder,
				AggregateID:   slice.sub.ID,
				Version:       1,
				Actor:         actor,
				Data: payloads.SubOrderCreatedEvent{
					OrderID:        order.ID,
					SubOrderID:     slice.sub.ID,
					SubOrderNumber: slice.sub.SubOrderNumber,
					CustomerID:     userID,
					VendorID:       slice.sub.VendorID,
					VendorUserID:   slice.vendor.UserID,
					Subtotal:       slice.sub.Subtotal,
					ItemCount:      len(slice.sub.Items),
				},
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return err
			}
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// nextOrderNumber follows the ORD + yyyyMMdd + five digit sequence format.
// The sequence is the global order count, taken inside the transaction.
func (s *service) nextOrderNumber(ctx context.Context, repo Repository) (string, error) {
	count, err := repo.CountOrders(ctx)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}
	datePart := time.Now().UTC().Format("20060102")
	return fmt.Sprintf("ORD%s%05d", datePart, count+1), nil
}

// vendorSuffix labels sub-orders A..Z, then AA, AB, ... so orders
// spanning more than 26 vendors still get letter-only suffixes.
func vendorSuffix(index int) string {
	suffix := ""
	for index >= 0 {
		suffix = string(rune('A'+index%26)) + suffix
		index = index/26 - 1
	}
	return suffix
}
