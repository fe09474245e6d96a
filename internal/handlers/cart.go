package handlers

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/vibrantflight/internal/apperrors"
	"github.com/example/vibrantflight/internal/models"
	"github.com/example/vibrantflight/internal/services"
)

// CartHandler serves the caller's cart.
type CartHandler struct {
	carts *services.CartService
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(carts *services.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

// GetCart returns the caller's cart, empty when none exists.
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	caller, err := principal(c)
	if err != nil {
		return err
	}

	cart, err := h.carts.Get(c.UserContext(), caller.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"cart": cart})
}

type addToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  number `json:"quantity"`
}

// AddItem adds quantity (default 1, may be negative) of a product.
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	caller, err := principal(c)
	if err != nil {
		return err
	}

	var req addToCartRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.ProductID) == "" {
		return apperrors.Validation("Product ID required")
	}
	productID, err := parseID(req.ProductID, "Invalid product ID")
	if err != nil {
		return err
	}
	quantity, ok := req.Quantity.intOr(1, models.MaxLineQuantity)
	if !ok {
		return apperrors.Validation(fmt.Sprintf("Quantity must be a whole number between -%d and %d", models.MaxLineQuantity, models.MaxLineQuantity))
	}

	cart, err := h.carts.AddItem(c.UserContext(), caller.ID, productID, quantity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Product added to cart", "cart": cart})
}

// RemoveItem drops one product from the cart.
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	caller, err := principal(c)
	if err != nil {
		return err
	}

	// an unparseable id cannot be in the cart, so it removes nothing
	productID, err := uuid.Parse(c.Params("productId"))
	if err != nil {
		productID = uuid.Nil
	}

	cart, err := h.carts.RemoveItem(c.UserContext(), caller.ID, productID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Removed from cart", "cart": cart})
}

// ClearCart empties the cart.
func (h *CartHandler) ClearCart(c *fiber.Ctx) error {
	caller, err := principal(c)
	if err != nil {
		return err
	}

	cart, err := h.carts.Clear(c.UserContext(), caller.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Cart cleared successfully", "cart": cart})
}
