package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/vibrantflight/internal/apperrors"
	"github.com/example/vibrantflight/internal/models"
	"github.com/example/vibrantflight/internal/store"
	"github.com/example/vibrantflight/internal/telemetry"
)

// saveAttempts bounds compare-and-swap retries on a stale cart version.
const saveAttempts = 2

// CartService manages the single live cart of each user.
type CartService struct {
	carts   CartRepository
	catalog *CatalogService
	logger  *zap.Logger
}

func NewCartService(carts CartRepository, catalog *CatalogService, logger *zap.Logger) *CartService {
	return &CartService{carts: carts, catalog: catalog, logger: logger}
}

// Get returns the cart resolved against the current catalog. A user without
// a cart gets an empty view and nothing is written.
func (s *CartService) Get(ctx context.Context, userID uuid.UUID) (models.CartView, error) {
	cart, err := s.carts.FindCart(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return models.EmptyCartView(userID), nil
	}
	if err != nil {
		return models.CartView{}, apperrors.Dependency("Server error", err)
	}
	return s.view(ctx, *cart)
}

// AddItem adds quantity to the product's line, creating the cart on first use.
// Negative quantities decrement; a line reaching zero is removed.
func (s *CartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (models.CartView, error) {
	ctx, span := telemetry.StartSpan(ctx, "cart.AddItem")
	defer span.End()

	if productID == uuid.Nil {
		return models.CartView{}, apperrors.Validation("Product ID required")
	}
	if quantity > models.MaxLineQuantity || quantity < -models.MaxLineQuantity {
		return models.CartView{}, apperrors.Validation(fmt.Sprintf("Quantity must be between -%d and %d", models.MaxLineQuantity, models.MaxLineQuantity))
	}

	cart, err := s.mutate(ctx, userID, "add", true, func(current models.Cart) (models.Cart, error) {
		if _, inCart := current.Line(productID); !inCart && quantity > 0 {
			if _, err := s.catalog.Get(ctx, productID); err != nil {
				return current, err
			}
		}
		return current.WithQuantityDelta(productID, quantity), nil
	})
	if err != nil {
		return models.CartView{}, err
	}
	return s.view(ctx, cart)
}

// RemoveItem drops the product's line. Removing an absent product is a no-op.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (models.CartView, error) {
	cart, err := s.mutate(ctx, userID, "remove", false, func(current models.Cart) (models.Cart, error) {
		return current.Without(productID), nil
	})
	if err != nil {
		return models.CartView{}, err
	}
	return s.view(ctx, cart)
}

// Clear empties the cart. The cart row itself is kept.
func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) (models.CartView, error) {
	cart, err := s.mutate(ctx, userID, "clear", false, func(current models.Cart) (models.Cart, error) {
		return current.Cleared(), nil
	})
	if err != nil {
		return models.CartView{}, err
	}
	return s.view(ctx, cart)
}

// mutate loads the cart, applies fn and writes the result with a version
// check, retrying once against fresh state when another write won.
func (s *CartService) mutate(ctx context.Context, userID uuid.UUID, op string, create bool, fn func(models.Cart) (models.Cart, error)) (models.Cart, error) {
	for attempt := 1; attempt <= saveAttempts; attempt++ {
		current, err := s.carts.FindCart(ctx, userID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			if !create {
				return models.Cart{}, apperrors.NotFound("Cart not found")
			}
			fresh := models.NewCart(userID)
			current = &fresh
		case err != nil:
			return models.Cart{}, apperrors.Dependency("Server error", err)
		}

		next, err := fn(*current)
		if err != nil {
			return models.Cart{}, err
		}
		if current.Version != 0 && sameLines(current.Items, next.Items) {
			return next, nil
		}

		err = s.carts.SaveCart(ctx, &next)
		if err == nil {
			telemetry.CartMutationsTotal.WithLabelValues(op).Inc()
			return next, nil
		}
		if !errors.Is(err, store.ErrStale) {
			return models.Cart{}, apperrors.Dependency("Server error", err)
		}
		s.logger.Debug("stale cart write, retrying",
			zap.String("user_id", userID.String()),
			zap.String("op", op),
			zap.Int("attempt", attempt),
		)
	}

	telemetry.CartMutationsTotal.WithLabelValues("conflict").Inc()
	return models.Cart{}, apperrors.Conflict("Cart was changed by another request, please retry")
}

func (s *CartService) view(ctx context.Context, cart models.Cart) (models.CartView, error) {
	products, err := s.catalog.Resolve(ctx, cart.ProductIDs())
	if err != nil {
		return models.CartView{}, err
	}

	view := models.CartView{UserID: cart.UserID, Items: make([]models.CartLineView, 0, len(cart.Items))}
	if cart.ID != uuid.Nil {
		id := cart.ID
		view.ID = &id
	}
	for _, line := range cart.Items {
		lineView := models.CartLineView{ProductID: line.ProductID, Quantity: line.Quantity}
		if product, ok := products[line.ProductID]; ok {
			summary := product.Summary()
			lineView.Product = &summary
		}
		view.Items = append(view.Items, lineView)
	}
	return view, nil
}

func sameLines(a, b models.CartLines) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
