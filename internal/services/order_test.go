package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vibrantflight/internal/apperrors"
	"github.com/example/vibrantflight/internal/models"
)

var admin = models.Principal{ID: uuid.New(), Role: models.RoleAdmin}

func TestPlaceOrderRequiresItems(t *testing.T) {
	f := newFixture(OrderConfig{})

	_, err := f.orders.PlaceOrder(context.Background(), uuid.New(), PlaceOrderInput{})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
	assert.Equal(t, "No items in order", err.Error())
}

func TestPlaceOrderValidatesLines(t *testing.T) {
	f := newFixture(OrderConfig{})
	ctx := context.Background()

	_, err := f.orders.PlaceOrder(ctx, uuid.New(), PlaceOrderInput{
		Items: []OrderItemInput{{ProductID: uuid.New(), Quantity: 0}},
	})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	_, err = f.orders.PlaceOrder(ctx, uuid.New(), PlaceOrderInput{
		Items:         []OrderItemInput{{ProductID: uuid.New(), Quantity: 1}},
		PaymentMethod: "bitcoin",
	})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestOrderSnapshotIsIsolatedFromCatalog(t *testing.T) {
	f := newFixture(OrderConfig{RepriceFromCatalog: false})
	ctx := context.Background()
	userID := uuid.New()
	shirt := f.product("shirt", 999)

	total := 1998.0
	order, err := f.orders.PlaceOrder(ctx, userID, PlaceOrderInput{
		Items: []OrderItemInput{{ProductID: shirt.ID, Name: "Shirt", UnitPrice: 999, Quantity: 2}},
		Total: &total,
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentCOD, order.PaymentMethod)

	shirt.Price = 1299
	require.NoError(t, f.store.SaveProduct(ctx, &shirt))

	mine, err := f.orders.ListMine(ctx, userID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, 999.0, mine[0].Items[0].UnitPrice)
	assert.Equal(t, "Shirt", mine[0].Items[0].Name)
	assert.Equal(t, 1998.0, mine[0].Total)
}

func TestPlaceOrderComputesMissingTotal(t *testing.T) {
	f := newFixture(OrderConfig{RepriceFromCatalog: false})

	order, err := f.orders.PlaceOrder(context.Background(), uuid.New(), PlaceOrderInput{
		Items: []OrderItemInput{
			{ProductID: uuid.New(), Name: "a", UnitPrice: 0.1, Quantity: 3},
			{ProductID: uuid.New(), Name: "b", UnitPrice: 0.2, Quantity: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.5, order.Total)
}

func TestPlaceOrderRepricesFromCatalog(t *testing.T) {
	f := newFixture(OrderConfig{RepriceFromCatalog: true})
	ctx := context.Background()
	shirt := f.product("shirt", 999)

	forged := 1.0
	order, err := f.orders.PlaceOrder(ctx, uuid.New(), PlaceOrderInput{
		Items: []OrderItemInput{{ProductID: shirt.ID, Name: "Cheap", UnitPrice: 1, Quantity: 2}},
		Total: &forged,
	})
	require.NoError(t, err)
	assert.Equal(t, 999.0, order.Items[0].UnitPrice)
	assert.Equal(t, "shirt", order.Items[0].Name)
	assert.Equal(t, "shirt.jpg", order.Items[0].Image)
	assert.Equal(t, 1998.0, order.Total)

	_, err = f.orders.PlaceOrder(ctx, uuid.New(), PlaceOrderInput{
		Items: []OrderItemInput{{ProductID: uuid.New(), Quantity: 1}},
	})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestPlaceOrderClearsCart(t *testing.T) {
	f := newFixture(OrderConfig{RepriceFromCatalog: true})
	ctx := context.Background()
	userID := uuid.New()
	shirt := f.product("shirt", 999)

	_, err := f.carts.AddItem(ctx, userID, shirt.ID, 2)
	require.NoError(t, err)

	_, err = f.orders.PlaceOrder(ctx, userID, PlaceOrderInput{
		Items: []OrderItemInput{{ProductID: shirt.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	view, err := f.carts.Get(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestPlaceOrderSurvivesFollowUpFailures(t *testing.T) {
	f := newFixture(OrderConfig{RepriceFromCatalog: true})
	f.events.err = errors.New("kafka down")
	f.notifier.err = errors.New("telegram down")
	ctx := context.Background()
	res := register(t, f, "asha@example.com", "secret1")
	shirt := f.product("shirt", 999)

	order, err := f.orders.PlaceOrder(ctx, res.User.ID, PlaceOrderInput{
		Items: []OrderItemInput{{ProductID: shirt.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	require.Len(t, f.events.placed, 1)
	assert.Equal(t, order.ID, f.events.placed[0].ID)
	require.Len(t, f.notifier.orders, 1)
	assert.Equal(t, "asha@example.com", f.notifier.orders[0].Email)
}

func TestPlaceOrderFallsBackToSavedAddress(t *testing.T) {
	f := newFixture(OrderConfig{RepriceFromCatalog: true})
	ctx := context.Background()
	res := register(t, f, "asha@example.com", "secret1")
	shirt := f.product("shirt", 999)
	saved := models.Address{City: "Pune", Pincode: "411001"}
	_, err := f.identity.UpdateAddress(ctx, res.User.ID, saved)
	require.NoError(t, err)

	order, err := f.orders.PlaceOrder(ctx, res.User.ID, PlaceOrderInput{
		Items: []OrderItemInput{{ProductID: shirt.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, saved, order.Address)

	given := models.Address{City: "Mumbai"}
	order, err = f.orders.PlaceOrder(ctx, res.User.ID, PlaceOrderInput{
		Items:   []OrderItemInput{{ProductID: shirt.ID, Quantity: 1}},
		Address: given,
	})
	require.NoError(t, err)
	assert.Equal(t, given, order.Address)
}

func placeSimpleOrder(t *testing.T, f *fixture, userID uuid.UUID) *models.Order {
	t.Helper()
	order, err := f.orders.PlaceOrder(context.Background(), userID, PlaceOrderInput{
		Items: []OrderItemInput{{ProductID: uuid.New(), Name: "x", UnitPrice: 10, Quantity: 1}},
	})
	require.NoError(t, err)
	return order
}

func TestListMineNewestFirst(t *testing.T) {
	f := newFixture(OrderConfig{})
	userID := uuid.New()
	first := placeSimpleOrder(t, f, userID)
	second := placeSimpleOrder(t, f, userID)
	placeSimpleOrder(t, f, uuid.New())

	mine, err := f.orders.ListMine(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)
}

func TestUserRoleIsForbiddenFromAdminOperations(t *testing.T) {
	f := newFixture(OrderConfig{})
	ctx := context.Background()
	userID := uuid.New()
	own := placeSimpleOrder(t, f, userID)
	caller := models.Principal{ID: userID, Role: models.RoleUser}

	_, err := f.orders.ListAll(ctx, caller)
	assert.True(t, apperrors.Is(err, apperrors.KindForbidden))

	_, err = f.orders.SetStatus(ctx, caller, own.ID, "Shipped")
	assert.True(t, apperrors.Is(err, apperrors.KindForbidden))

	_, err = f.orders.SetStatus(ctx, caller, uuid.New(), "Shipped")
	assert.True(t, apperrors.Is(err, apperrors.KindForbidden))
}

func TestListAllEnrichesOwner(t *testing.T) {
	f := newFixture(OrderConfig{})
	res := register(t, f, "asha@example.com", "secret1")
	placeSimpleOrder(t, f, res.User.ID)

	all, err := f.orders.ListAll(context.Background(), admin)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.OwnerSummary{ID: res.User.ID, Name: "Asha", Email: "asha@example.com"}, all[0].User)
}

func TestSetStatus(t *testing.T) {
	f := newFixture(OrderConfig{})
	ctx := context.Background()
	order := placeSimpleOrder(t, f, uuid.New())

	updated, err := f.orders.SetStatus(ctx, admin, order.ID, "shipped")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, updated.Status)
	assert.Equal(t, []models.OrderStatus{models.OrderStatusPending, models.OrderStatusShipped}, f.events.changed)

	// without enforcement any status in the set is accepted
	updated, err = f.orders.SetStatus(ctx, admin, order.ID, "Pending")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, updated.Status)

	_, err = f.orders.SetStatus(ctx, admin, order.ID, "Lost")
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	_, err = f.orders.SetStatus(ctx, admin, uuid.New(), "Shipped")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestSetStatusEnforcesTransitions(t *testing.T) {
	f := newFixture(OrderConfig{EnforceTransitions: true})
	ctx := context.Background()
	order := placeSimpleOrder(t, f, uuid.New())

	_, err := f.orders.SetStatus(ctx, admin, order.ID, "Shipped")
	require.NoError(t, err)

	_, err = f.orders.SetStatus(ctx, admin, order.ID, "Pending")
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	_, err = f.orders.SetStatus(ctx, admin, order.ID, "Cancelled")
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	_, err = f.orders.SetStatus(ctx, admin, order.ID, "Delivered")
	require.NoError(t, err)
}

func TestPlaceOrderRejectsNonFiniteAmounts(t *testing.T) {
	f := newFixture(OrderConfig{RepriceFromCatalog: false})
	ctx := context.Background()
	userID := uuid.New()
	shirt := f.product("shirt", 999)

	for _, price := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := f.orders.PlaceOrder(ctx, userID, PlaceOrderInput{
			Items: []OrderItemInput{{ProductID: shirt.ID, Name: "Shirt", UnitPrice: price, Quantity: 1}},
		})
		assert.True(t, apperrors.Is(err, apperrors.KindValidation), "price %v: %v", price, err)
	}

	for _, total := range []float64{math.NaN(), math.Inf(1)} {
		total := total
		_, err := f.orders.PlaceOrder(ctx, userID, PlaceOrderInput{
			Items: []OrderItemInput{{ProductID: shirt.ID, Name: "Shirt", UnitPrice: 999, Quantity: 1}},
			Total: &total,
		})
		assert.True(t, apperrors.Is(err, apperrors.KindValidation), "total %v: %v", total, err)
	}

	orders, err := f.orders.ListMine(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestPlaceOrderRejectsOversizedQuantity(t *testing.T) {
	f := newFixture(OrderConfig{RepriceFromCatalog: true})
	shirt := f.product("shirt", 999)

	_, err := f.orders.PlaceOrder(context.Background(), uuid.New(), PlaceOrderInput{
		Items: []OrderItemInput{{ProductID: shirt.ID, Quantity: models.MaxLineQuantity + 1}},
	})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}
