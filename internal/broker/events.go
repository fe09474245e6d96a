package broker

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/example/vibrantflight/internal/models"
)

// EventPublisher turns order changes into domain events.
type EventPublisher struct {
	producer *Producer
}

func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// OrderPlaced publishes ORDER_PLACED keyed by order id.
func (ep *EventPublisher) OrderPlaced(ctx context.Context, order models.Order) error {
	event := models.OrderPlacedEvent{
		BaseEvent:     newBaseEvent(models.EventTypeOrderPlaced),
		OrderID:       order.ID.String(),
		UserID:        order.UserID.String(),
		Total:         order.Total,
		PaymentMethod: order.PaymentMethod,
		Items:         order.Items,
	}
	return ep.producer.PublishEvent(ctx, orderKey(order.ID), event)
}

// OrderStatusChanged publishes ORDER_STATUS_CHANGED keyed by order id.
func (ep *EventPublisher) OrderStatusChanged(ctx context.Context, order models.Order, previous models.OrderStatus) error {
	event := models.OrderStatusChangedEvent{
		BaseEvent:      newBaseEvent(models.EventTypeOrderStatusChanged),
		OrderID:        order.ID.String(),
		UserID:         order.UserID.String(),
		PreviousStatus: previous,
		Status:         order.Status,
	}
	return ep.producer.PublishEvent(ctx, orderKey(order.ID), event)
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
	}
}

func orderKey(id uuid.UUID) string {
	return "order-" + id.String()
}
