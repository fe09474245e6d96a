package models

import (
	"database/sql/driver"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusConfirmed OrderStatus = "Confirmed"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// forward order of the happy path; Cancelled sits outside it
var statusRank = map[OrderStatus]int{
	OrderStatusPending:   0,
	OrderStatusConfirmed: 1,
	OrderStatusShipped:   2,
	OrderStatusDelivered: 3,
}

// ParseOrderStatus matches a status case-insensitively against the closed set.
func ParseOrderStatus(value string) (OrderStatus, bool) {
	value = strings.TrimSpace(value)
	for _, s := range []OrderStatus{
		OrderStatusPending,
		OrderStatusConfirmed,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
	} {
		if strings.EqualFold(string(s), value) {
			return s, true
		}
	}
	return "", false
}

// IsTerminal reports whether no further transition is allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo reports whether next is a forward move from s.
// Cancelled is reachable from Pending and Confirmed only.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	if s.IsTerminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return s == OrderStatusPending || s == OrderStatusConfirmed
	}
	return statusRank[next] > statusRank[s]
}

// PaymentMethod is a payment tag. No gateway is integrated.
type PaymentMethod string

const (
	PaymentCOD  PaymentMethod = "cod"
	PaymentUPI  PaymentMethod = "upi"
	PaymentCard PaymentMethod = "card"
)

// ParsePaymentMethod defaults to cash on delivery when value is empty.
func ParsePaymentMethod(value string) (PaymentMethod, bool) {
	switch PaymentMethod(strings.ToLower(strings.TrimSpace(value))) {
	case "", PaymentCOD:
		return PaymentCOD, true
	case PaymentUPI:
		return PaymentUPI, true
	case PaymentCard:
		return PaymentCard, true
	}
	return "", false
}

// OrderLine is a denormalized copy of a purchased item taken at placement time.
type OrderLine struct {
	ProductID uuid.UUID `json:"productId"`
	Name      string    `json:"name"`
	Image     string    `json:"img"`
	UnitPrice float64   `json:"unitPrice"`
	Quantity  int       `json:"quantity"`
}

// LineTotal returns unit price times quantity without float drift.
func (l OrderLine) LineTotal() decimal.Decimal {
	return decimal.NewFromFloat(l.UnitPrice).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type OrderLines []OrderLine

func (l OrderLines) Value() (driver.Value, error) {
	if l == nil {
		l = OrderLines{}
	}
	return jsonValue(l)
}

func (l *OrderLines) Scan(src any) error { return jsonScan(src, l) }

func (OrderLines) GormDataType() string { return "jsonb" }

// Total sums the line totals, rounded to cents.
func (l OrderLines) Total() float64 {
	sum := decimal.Zero
	for _, line := range l {
		sum = sum.Add(line.LineTotal())
	}
	return sum.Round(2).InexactFloat64()
}

// Order is an immutable snapshot owned by one user; only Status changes after creation.
type Order struct {
	BaseModel
	UserID        uuid.UUID     `gorm:"type:uuid;index;not null" json:"user"`
	Items         OrderLines    `gorm:"not null" json:"items"`
	Address       Address       `gorm:"embedded;embeddedPrefix:address_" json:"address"`
	PaymentMethod PaymentMethod `gorm:"not null;default:cod" json:"paymentMethod"`
	Status        OrderStatus   `gorm:"not null;default:Pending;index" json:"status"`
	Total         float64       `gorm:"not null" json:"total"`
}

// OrderWithOwner is an order enriched with its owner's name and email.
// The User field shadows Order.UserID in JSON output.
type OrderWithOwner struct {
	Order
	User OwnerSummary `json:"user"`
}
