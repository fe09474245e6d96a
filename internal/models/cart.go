package models

import (
	"database/sql/driver"

	"github.com/google/uuid"
)

// CartLine references a product and a positive quantity.
type CartLine struct {
	ProductID uuid.UUID `json:"product"`
	Quantity  int       `json:"quantity"`
}

type CartLines []CartLine

func (l CartLines) Value() (driver.Value, error) {
	if l == nil {
		l = CartLines{}
	}
	return jsonValue(l)
}

func (l *CartLines) Scan(src any) error { return jsonScan(src, l) }

func (CartLines) GormDataType() string { return "jsonb" }

// Cart is the single live cart owned by a user. Line items are kept as one
// document; Version is bumped on every write and checked on save.
//
// The With*/Without/Cleared methods never mutate the receiver: they return
// the next cart state so the storage layer can persist it as a whole.
type Cart struct {
	BaseModel
	UserID  uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user"`
	Items   CartLines `gorm:"not null" json:"items"`
	Version int       `gorm:"not null;default:0" json:"-"`
}

// NewCart returns an empty, not yet persisted cart for the user.
func NewCart(userID uuid.UUID) Cart {
	return Cart{UserID: userID, Items: CartLines{}}
}

// Line looks up the line for a product.
func (c Cart) Line(productID uuid.UUID) (CartLine, bool) {
	for _, line := range c.Items {
		if line.ProductID == productID {
			return line, true
		}
	}
	return CartLine{}, false
}

// MaxLineQuantity caps a single cart or order line.
const MaxLineQuantity = 1_000_000

// WithQuantityDelta adds delta to the product's line. A line driven to zero or
// below disappears; a product new to the cart is only appended for delta > 0.
// Line quantities saturate at MaxLineQuantity.
func (c Cart) WithQuantityDelta(productID uuid.UUID, delta int) Cart {
	next := c
	next.Items = make(CartLines, 0, len(c.Items)+1)

	found := false
	for _, line := range c.Items {
		if line.ProductID != productID {
			next.Items = append(next.Items, line)
			continue
		}
		found = true
		line.Quantity = addQuantity(line.Quantity, delta)
		if line.Quantity > 0 {
			next.Items = append(next.Items, line)
		}
	}

	if !found && delta > 0 {
		next.Items = append(next.Items, CartLine{ProductID: productID, Quantity: min(delta, MaxLineQuantity)})
	}
	return next
}

func addQuantity(current, delta int) int {
	if delta > MaxLineQuantity-current {
		return MaxLineQuantity
	}
	if delta < -current {
		return 0
	}
	return current + delta
}

// Without drops the product's line. Absent products leave the cart unchanged.
func (c Cart) Without(productID uuid.UUID) Cart {
	next := c
	next.Items = make(CartLines, 0, len(c.Items))
	for _, line := range c.Items {
		if line.ProductID != productID {
			next.Items = append(next.Items, line)
		}
	}
	return next
}

// Cleared empties the line list.
func (c Cart) Cleared() Cart {
	next := c
	next.Items = CartLines{}
	return next
}

// ProductIDs lists referenced products in line order.
func (c Cart) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.Items))
	for _, line := range c.Items {
		ids = append(ids, line.ProductID)
	}
	return ids
}

// CartLineView is a cart line resolved against the current catalog.
// Product is nil when the referenced product no longer exists.
type CartLineView struct {
	ProductID uuid.UUID       `json:"productId"`
	Product   *ProductSummary `json:"product"`
	Quantity  int             `json:"quantity"`
}

// CartView is the read shape of a cart.
type CartView struct {
	ID     *uuid.UUID     `json:"id,omitempty"`
	UserID uuid.UUID      `json:"user"`
	Items  []CartLineView `json:"items"`
}

// EmptyCartView is returned when the user has never added anything.
func EmptyCartView(userID uuid.UUID) CartView {
	return CartView{UserID: userID, Items: []CartLineView{}}
}
