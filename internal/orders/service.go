package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tuanvle/dacsan-backend/pkg/db/models"
	"github.com/tuanvle/dacsan-backend/pkg/enums"
	pkgerrors "github.com/tuanvle/dacsan-backend/pkg/errors"
	"github.com/tuanvle/dacsan-backend/pkg/outbox"
	"github.com/tuanvle/dacsan-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service drives the vendor sub-order pipeline and the customer order views.
type Service interface {
	ListCustomerOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	VendorDashboard(ctx context.Context, vendorID uuid.UUID) (*Partition, error)
	UpdateSubOrderStatus(ctx context.Context, input UpdateStatusInput) (*StatusChange, error)
}

// UpdateStatusInput carries one requested sub-order transition. Automatic is
// set only by the kitchen countdown; it bypasses the vendor ownership check.
type UpdateStatusInput struct {
	SubOrderID  uuid.UUID
	Target      enums.SubOrderStatus
	VendorID    uuid.UUID
	ActorUserID uuid.UUID
	Automatic   bool
}

// StatusChange reports the applied transition and what the caller must do
// with the kitchen countdown.
type StatusChange struct {
	SubOrder        models.SubOrder
	OrderStatus     enums.OrderStatus
	Changed         bool
	ArmCountdown    bool
	DisarmCountdown bool
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

// NewService wires order pipeline dependencies.
func NewService(repo Repository, tx txRunner, emitter outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "orders repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if emitter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: emitter}, nil
}

func (s *service) ListCustomerOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	rows, err := s.repo.ListOrdersByCustomer(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return rows, nil
}

func (s *service) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
	}
	return order, nil
}

func (s *service) VendorDashboard(ctx context.Context, vendorID uuid.UUID) (*Partition, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor context missing")
	}
	rows, err := s.repo.ListSubOrdersByVendor(ctx, vendorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vendor sub-orders")
	}
	partition := PartitionSubOrders(rows)
	return &partition, nil
}

func (s *service) UpdateSubOrderStatus(ctx context.Context, input UpdateStatusInput) (*StatusChange, error) {
	if input.SubOrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sub-order id required")
	}
	if !input.Target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid target status")
	}
	if !input.Automatic && input.VendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor context missing")
	}

	var change StatusChange
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		sub, err := repo.FindSubOrderForUpdate(ctx, input.SubOrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "sub-order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sub-order")
		}
		if !input.Automatic && sub.VendorID != input.VendorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "sub-order does not belong to vendor")
		}

		from := sub.Status
		if from == input.Target {
			// Idempotent re-submission: report current state, write nothing.
			change = StatusChange{SubOrder: *sub}
			statuses, err := repo.ListSubOrderStatuses(ctx, sub.OrderID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sibling statuses")
			}
			change.OrderStatus = RollupOrderStatus(statuses)
			return nil
		}
		if !CanTransition(from, input.Target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "invalid status transition").
				WithDetails(map[string]any{"from": from, "to": input.Target})
		}

		now := time.Now().UTC()
		if err := repo.UpdateSubOrderStatus(ctx, sub.ID, input.Target, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update sub-order status")
		}
		sub.Status = input.Target

		statuses, err := repo.ListSubOrderStatuses(ctx, sub.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sibling statuses")
		}
		orderStatus := RollupOrderStatus(statuses)
		if err := repo.UpdateOrderStatus(ctx, sub.OrderID, orderStatus, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		order, err := repo.FindOrder(ctx, sub.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load parent order")
		}

		vendorName := ""
		if vendor, err := repo.FindVendor(ctx, sub.VendorID); err == nil {
			vendorName = vendor.StoreName
		}

		change = StatusChange{
			SubOrder:        *sub,
			OrderStatus:     orderStatus,
			Changed:         true,
			ArmCountdown:    input.Target == enums.SubOrderStatusCooking,
			DisarmCountdown: !input.Automatic && from == enums.SubOrderStatusCooking,
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventSubOrderStatusChanged,
			AggregateType: enums.AggregateSubOrder,
			AggregateID:   sub.ID,
			Version:       1,
			Actor:         buildActor(input),
			Data: payloads.SubOrderStatusChangedEvent{
				OrderID:        sub.OrderID,
				SubOrderID:     sub.ID,
				SubOrderNumber: sub.SubOrderNumber,
				CustomerID:     order.UserID,
				VendorID:       sub.VendorID,
				VendorName:     vendorName,
				FromStatus:     from,
				ToStatus:       input.Target,
				OrderStatus:    orderStatus,
				Automatic:      input.Automatic,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return &change, nil
}

func buildActor(input UpdateStatusInput) *outbox.ActorRef {
	if input.Automatic {
		return &outbox.ActorRef{Role: "system"}
	}
	actor := &outbox.ActorRef{UserID: input.ActorUserID, Role: string(enums.UserRoleVendor)}
	if input.VendorID != uuid.Nil {
		vendorID := input.VendorID
		actor.VendorID = &vendorID
	}
	return actor
}
