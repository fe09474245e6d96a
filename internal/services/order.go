package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/vibrantflight/internal/apperrors"
	"github.com/example/vibrantflight/internal/models"
	"github.com/example/vibrantflight/internal/store"
	"github.com/example/vibrantflight/internal/telemetry"
)

// OrderConfig switches the two pricing and lifecycle policies.
type OrderConfig struct {
	// RepriceFromCatalog takes name, image and unit price from the live
	// catalog instead of the caller's payload.
	RepriceFromCatalog bool
	// EnforceTransitions rejects status changes that move backwards or leave
	// a terminal status.
	EnforceTransitions bool
}

// OrderService places orders and manages their status.
type OrderService struct {
	orders   OrderRepository
	users    UserRepository
	carts    *CartService
	catalog  *CatalogService
	events   OrderEvents
	notifier Notifier
	cfg      OrderConfig
	logger   *zap.Logger
}

// NewOrderService wires the order service. events and notifier may be nil.
func NewOrderService(
	orders OrderRepository,
	users UserRepository,
	carts *CartService,
	catalog *CatalogService,
	events OrderEvents,
	notifier Notifier,
	cfg OrderConfig,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orders:   orders,
		users:    users,
		carts:    carts,
		catalog:  catalog,
		events:   events,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}

// OrderItemInput is one requested line.
type OrderItemInput struct {
	ProductID uuid.UUID
	Name      string
	Image     string
	UnitPrice float64
	Quantity  int
}

// PlaceOrderInput is the order request payload. Total is optional.
type PlaceOrderInput struct {
	Items         []OrderItemInput
	Total         *float64
	Address       models.Address
	PaymentMethod string
}

// PlaceOrder stores an order snapshot for the user and then clears the cart.
// Clearing, events and notifications are best effort: the stored order wins.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uuid.UUID, in PlaceOrderInput) (*models.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "order.PlaceOrder")
	defer span.End()

	if len(in.Items) == 0 {
		telemetry.OrdersFailedTotal.WithLabelValues("empty").Inc()
		return nil, apperrors.Validation("No items in order")
	}

	if in.Total != nil && (!isFinite(*in.Total) || *in.Total < 0) {
		telemetry.OrdersFailedTotal.WithLabelValues("validation").Inc()
		return nil, apperrors.Validation("Order total must be a non-negative number")
	}

	method, ok := models.ParsePaymentMethod(in.PaymentMethod)
	if !ok {
		telemetry.OrdersFailedTotal.WithLabelValues("validation").Inc()
		return nil, apperrors.Validation("Unsupported payment method")
	}

	lines, err := s.buildLines(ctx, in.Items)
	if err != nil {
		telemetry.OrdersFailedTotal.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}

	total := lines.Total()
	if !s.cfg.RepriceFromCatalog && in.Total != nil {
		total = *in.Total
	}

	order := &models.Order{
		UserID:        userID,
		Items:         lines,
		Address:       s.shippingAddress(ctx, userID, in.Address),
		PaymentMethod: method,
		Status:        models.OrderStatusPending,
		Total:         total,
	}
	if err := s.orders.CreateOrder(ctx, order); err != nil {
		telemetry.OrdersFailedTotal.WithLabelValues("storage").Inc()
		return nil, apperrors.Dependency("Server error", err)
	}

	telemetry.OrdersPlacedTotal.Inc()
	s.logger.Info("order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Float64("total", order.Total),
	)

	if _, err := s.carts.Clear(ctx, userID); err != nil && !apperrors.Is(err, apperrors.KindNotFound) {
		s.logger.Warn("failed to clear cart after order", zap.String("order_id", order.ID.String()), zap.Error(err))
	}
	s.afterPlacement(ctx, *order)

	return order, nil
}

func (s *OrderService) buildLines(ctx context.Context, items []OrderItemInput) (models.OrderLines, error) {
	for _, item := range items {
		if item.ProductID == uuid.Nil {
			return nil, apperrors.Validation("Item product ID required")
		}
		if item.Quantity <= 0 || item.Quantity > models.MaxLineQuantity {
			return nil, apperrors.Validation(fmt.Sprintf("Item quantity must be between 1 and %d", models.MaxLineQuantity))
		}
		if !isFinite(item.UnitPrice) || item.UnitPrice < 0 {
			return nil, apperrors.Validation("Item price must be a non-negative number")
		}
	}

	lines := make(models.OrderLines, 0, len(items))
	if !s.cfg.RepriceFromCatalog {
		for _, item := range items {
			lines = append(lines, models.OrderLine{
				ProductID: item.ProductID,
				Name:      item.Name,
				Image:     item.Image,
				UnitPrice: item.UnitPrice,
				Quantity:  item.Quantity,
			})
		}
		return lines, nil
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.catalog.Resolve(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			return nil, apperrors.Validation(fmt.Sprintf("Product %s is no longer available", item.ProductID))
		}
		lines = append(lines, models.OrderLine{
			ProductID: product.ID,
			Name:      product.Name,
			Image:     product.PrimaryImage(),
			UnitPrice: product.Price,
			Quantity:  item.Quantity,
		})
	}
	return lines, nil
}

// shippingAddress falls back to the user's saved address when none is given.
func (s *OrderService) shippingAddress(ctx context.Context, userID uuid.UUID, given models.Address) models.Address {
	if given != (models.Address{}) {
		return given
	}
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		return given
	}
	return user.Address
}

func (s *OrderService) afterPlacement(ctx context.Context, order models.Order) {
	if s.events != nil {
		if err := s.events.OrderPlaced(ctx, order); err != nil {
			s.logger.Warn("failed to publish order placed event", zap.String("order_id", order.ID.String()), zap.Error(err))
		}
	}

	if s.notifier != nil {
		owner := models.OwnerSummary{ID: order.UserID}
		if summaries, err := s.users.FindUserSummaries(ctx, []uuid.UUID{order.UserID}); err == nil {
			if summary, ok := summaries[order.UserID]; ok {
				owner = summary
			}
		}
		if err := s.notifier.NotifyNewOrder(ctx, order, owner); err != nil {
			s.logger.Warn("failed to notify about new order", zap.String("order_id", order.ID.String()), zap.Error(err))
		}
	}
}

// ListMine returns the user's orders, newest first.
func (s *OrderService) ListMine(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	orders, err := s.orders.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Dependency("Server error", err)
	}
	return orders, nil
}

// ListAll returns every order with its owner's name and email. Admin only.
func (s *OrderService) ListAll(ctx context.Context, caller models.Principal) ([]models.OrderWithOwner, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.Forbidden("Forbidden")
	}

	orders, err := s.orders.ListOrders(ctx)
	if err != nil {
		return nil, apperrors.Dependency("Server error", err)
	}

	ids := make([]uuid.UUID, 0, len(orders))
	seen := make(map[uuid.UUID]struct{}, len(orders))
	for _, order := range orders {
		if _, ok := seen[order.UserID]; !ok {
			seen[order.UserID] = struct{}{}
			ids = append(ids, order.UserID)
		}
	}
	owners, err := s.users.FindUserSummaries(ctx, ids)
	if err != nil {
		return nil, apperrors.Dependency("Server error", err)
	}

	result := make([]models.OrderWithOwner, 0, len(orders))
	for _, order := range orders {
		owner, ok := owners[order.UserID]
		if !ok {
			owner = models.OwnerSummary{ID: order.UserID}
		}
		result = append(result, models.OrderWithOwner{Order: order, User: owner})
	}
	return result, nil
}

// SetStatus changes an order's status. Admin only.
func (s *OrderService) SetStatus(ctx context.Context, caller models.Principal, orderID uuid.UUID, status string) (*models.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "order.SetStatus")
	defer span.End()

	if !caller.IsAdmin() {
		return nil, apperrors.Forbidden("Forbidden")
	}

	next, ok := models.ParseOrderStatus(status)
	if !ok {
		return nil, apperrors.Validation("Invalid order status")
	}

	current, err := s.orders.FindOrder(ctx, orderID)
	if err != nil {
		return nil, orderLookupError(err)
	}
	if s.cfg.EnforceTransitions && !current.Status.CanTransitionTo(next) {
		return nil, apperrors.Validation(fmt.Sprintf("Cannot change status from %s to %s", current.Status, next))
	}

	updated, err := s.orders.UpdateOrderStatus(ctx, orderID, next)
	if err != nil {
		return nil, orderLookupError(err)
	}

	telemetry.OrderStatusUpdatesTotal.WithLabelValues(string(next)).Inc()
	s.logger.Info("order status updated",
		zap.String("order_id", orderID.String()),
		zap.String("from", string(current.Status)),
		zap.String("to", string(next)),
	)

	if s.events != nil {
		if err := s.events.OrderStatusChanged(ctx, *updated, current.Status); err != nil {
			s.logger.Warn("failed to publish status event", zap.String("order_id", orderID.String()), zap.Error(err))
		}
	}
	return updated, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func orderLookupError(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.NotFound("Order not found")
	}
	return apperrors.Dependency("Server error", err)
}

func failureReason(err error) string {
	if apperrors.Is(err, apperrors.KindValidation) {
		return "validation"
	}
	return "dependency"
}
