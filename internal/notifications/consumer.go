package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/tuanvle/dacsan-backend/pkg/db/models"
	"github.com/tuanvle/dacsan-backend/pkg/enums"
	"github.com/tuanvle/dacsan-backend/pkg/logger"
	"github.com/tuanvle/dacsan-backend/pkg/outbox"
	"github.com/tuanvle/dacsan-backend/pkg/outbox/idempotency"
	"github.com/tuanvle/dacsan-backend/pkg/outbox/payloads"
)

const orderNotificationConsumer = "order-notifications"

type consumerRepository interface {
	Insert(ctx context.Context, notification *models.Notification) error
}

// Consumer watches order events and turns them into notification rows:
// new sub-orders notify the vendor, status changes notify the customer.
type Consumer struct {
	repo         consumerRepository
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds the order notification consumer.
func NewConsumer(repo consumerRepository, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("order events subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg.Attributes["event_type"], msg.ID, msg.Data)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, eventType, messageID string, data []byte) processResult {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": messageID,
		"event_type": eventType,
	})

	if eventType != string(enums.EventSubOrderCreated) &&
		eventType != string(enums.EventSubOrderStatusChanged) {
		c.logg.Info(logCtx, "skipping unrelated event")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, orderNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.handle(ctx, eventType, envelope.Data, logCtx); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Delete(ctx, orderNotificationConsumer, eventID)
		return processResult{nack: true}
	}
	return processResult{ack: true}
}

func (c *Consumer) handle(ctx context.Context, eventType string, data json.RawMessage, logCtx context.Context) error {
	switch eventType {
	case string(enums.EventSubOrderCreated):
		var payload payloads.SubOrderCreatedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("decode created payload: %w", err)
		}
		return c.notifyVendor(ctx, payload, logCtx)
	case string(enums.EventSubOrderStatusChanged):
		var payload payloads.SubOrderStatusChangedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("decode status payload: %w", err)
		}
		return c.notifyCustomer(ctx, payload, logCtx)
	default:
		return nil
	}
}

func (c *Consumer) notifyVendor(ctx context.Context, payload payloads.SubOrderCreatedEvent, logCtx context.Context) error {
	if payload.VendorUserID == uuid.Nil {
		return fmt.Errorf("vendor user id missing")
	}
	orderID := payload.OrderID
	subOrderID := payload.SubOrderID
	notification := &models.Notification{
		UserID:     payload.VendorUserID,
		Type:       enums.NotificationTypeNewOrder,
		Title:      fmt.Sprintf("Đơn hàng mới %s", payload.SubOrderNumber),
		Message:    newOrderMessage,
		OrderID:    &orderID,
		SubOrderID: &subOrderID,
	}
	if err := c.repo.Insert(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "vendor notified of new sub-order")
	return nil
}

func (c *Consumer) notifyCustomer(ctx context.Context, payload payloads.SubOrderStatusChangedEvent, logCtx context.Context) error {
	if payload.CustomerID == uuid.Nil {
		return fmt.Errorf("customer id missing")
	}
	title := payload.SubOrderNumber
	if payload.VendorName != "" {
		title = fmt.Sprintf("%s - %s", payload.VendorName, payload.SubOrderNumber)
	}
	orderID := payload.OrderID
	subOrderID := payload.SubOrderID
	notification := &models.Notification{
		UserID:     payload.CustomerID,
		Type:       enums.NotificationTypeOrderStatusUpdate,
		Title:      title,
		Message:    StatusMessage(payload.ToStatus),
		OrderID:    &orderID,
		SubOrderID: &subOrderID,
	}
	if err := c.repo.Insert(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "customer notified of status change")
	return nil
}
