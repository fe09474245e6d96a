package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/example/vibrantflight/internal/apperrors"
	"github.com/example/vibrantflight/internal/models"
	"github.com/example/vibrantflight/internal/services"
)

// OrderHandler handles order placement and admin order management.
type OrderHandler struct {
	orders *services.OrderService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(orders *services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type orderItemRequest struct {
	ProductID string `json:"productId"`
	Product   string `json:"product"`
	Name      string `json:"name"`
	Img       string `json:"img"`
	Image     string `json:"image"`
	UnitPrice number `json:"unitPrice"`
	Price     number `json:"price"`
	Quantity  number `json:"quantity"`
	Qty       number `json:"qty"`
}

type createOrderRequest struct {
	Items         []orderItemRequest `json:"items"`
	Total         number             `json:"total"`
	Address       models.Address     `json:"address"`
	PaymentMethod string             `json:"paymentMethod"`
}

func (r createOrderRequest) toInput() (services.PlaceOrderInput, error) {
	in := services.PlaceOrderInput{
		Items:         make([]services.OrderItemInput, 0, len(r.Items)),
		Address:       r.Address,
		PaymentMethod: r.PaymentMethod,
	}
	if r.Total.set {
		total := r.Total.value
		in.Total = &total
	}

	for i, item := range r.Items {
		rawID := item.ProductID
		if rawID == "" {
			rawID = item.Product
		}
		productID, err := parseID(rawID, fmt.Sprintf("Item %d has an invalid product ID", i+1))
		if err != nil {
			return in, err
		}

		quantity, ok := firstSet(item.Quantity, item.Qty).intOr(1, models.MaxLineQuantity)
		if !ok {
			return in, apperrors.Validation(fmt.Sprintf("Item %d quantity must be a whole number up to %d", i+1, models.MaxLineQuantity))
		}

		image := item.Img
		if image == "" {
			image = item.Image
		}

		in.Items = append(in.Items, services.OrderItemInput{
			ProductID: productID,
			Name:      item.Name,
			Image:     image,
			UnitPrice: firstSet(item.UnitPrice, item.Price).value,
			Quantity:  quantity,
		})
	}
	return in, nil
}

// CreateOrder places an order from the request snapshot.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	caller, err := principal(c)
	if err != nil {
		return err
	}

	var req createOrderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if len(req.Items) == 0 {
		return apperrors.Validation("No items in order")
	}

	in, err := req.toInput()
	if err != nil {
		return err
	}

	order, err := h.orders.PlaceOrder(c.UserContext(), caller.ID, in)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Order placed successfully",
		"order":   order,
	})
}

// MyOrders lists the caller's orders, newest first.
func (h *OrderHandler) MyOrders(c *fiber.Ctx) error {
	caller, err := principal(c)
	if err != nil {
		return err
	}

	orders, err := h.orders.ListMine(c.UserContext(), caller.ID)
	if err != nil {
		return err
	}
	return c.JSON(orders)
}

// AllOrders lists every order with its owner. Admin only.
func (h *OrderHandler) AllOrders(c *fiber.Ctx) error {
	caller, err := principal(c)
	if err != nil {
		return err
	}

	orders, err := h.orders.ListAll(c.UserContext(), caller)
	if err != nil {
		return err
	}
	return c.JSON(orders)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus sets an order's status. Admin only.
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	caller, err := principal(c)
	if err != nil {
		return err
	}
	if !caller.IsAdmin() {
		return apperrors.Forbidden("Forbidden")
	}

	orderID, err := parseID(c.Params("id"), "Invalid order ID")
	if err != nil {
		return err
	}

	var req updateStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	order, err := h.orders.SetStatus(c.UserContext(), caller, orderID, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(order)
}
