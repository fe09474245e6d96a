package models

import "time"

// Event types
const (
	EventTypeOrderPlaced        = "ORDER_PLACED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPlacedEvent is published after an order snapshot is stored
type OrderPlacedEvent struct {
	BaseEvent
	OrderID       string        `json:"order_id"`
	UserID        string        `json:"user_id"`
	Total         float64       `json:"total"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Items         []OrderLine   `json:"items"`
}

// OrderStatusChangedEvent is published when an admin sets a new status
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID        string      `json:"order_id"`
	UserID         string      `json:"user_id"`
	PreviousStatus OrderStatus `json:"previous_status"`
	Status         OrderStatus `json:"status"`
}
