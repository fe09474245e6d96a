package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vibrantflight/internal/models"
)

func runBackendSuite(t *testing.T, newBackend func(t *testing.T) Backend) {
	t.Run("users", func(t *testing.T) { testUsers(t, newBackend(t)) })
	t.Run("admins", func(t *testing.T) { testAdmins(t, newBackend(t)) })
	t.Run("products", func(t *testing.T) { testProducts(t, newBackend(t)) })
	t.Run("carts", func(t *testing.T) { testCarts(t, newBackend(t)) })
	t.Run("orders", func(t *testing.T) { testOrders(t, newBackend(t)) })
}

func testUsers(t *testing.T, s Backend) {
	ctx := context.Background()

	user := &models.User{Name: "Asha", Email: " Asha@Example.com ", PasswordHash: "hash"}
	require.NoError(t, s.CreateUser(ctx, user))
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "asha@example.com", user.Email)

	err := s.CreateUser(ctx, &models.User{Name: "Other", Email: "ASHA@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrDuplicate)

	found, err := s.FindUserByEmail(ctx, "asha@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, "hash", found.PasswordHash)

	_, err = s.FindUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	found.Address = models.Address{City: "Pune", Pincode: "411001"}
	require.NoError(t, s.SaveUser(ctx, found))

	reloaded, err := s.FindUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pune", reloaded.Address.City)

	summaries, err := s.FindUserSummaries(ctx, []uuid.UUID{user.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, models.OwnerSummary{ID: user.ID, Name: "Asha", Email: "asha@example.com"}, summaries[user.ID])
}

func testAdmins(t *testing.T, s Backend) {
	ctx := context.Background()

	require.NoError(t, s.ReplaceAdmin(ctx, &models.Admin{Name: "Root", Email: "Admin@Example.com", PasswordHash: "one"}))
	require.NoError(t, s.ReplaceAdmin(ctx, &models.Admin{Name: "Root", Email: "admin@example.com", PasswordHash: "two"}))

	admin, err := s.FindAdminByEmail(ctx, "ADMIN@example.com")
	require.NoError(t, err)
	assert.Equal(t, "two", admin.PasswordHash)

	_, err = s.FindAdminByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func testProducts(t *testing.T, s Backend) {
	ctx := context.Background()

	shirt := &models.Product{Name: "Linen Shirt", Description: "breathable", Price: 999, Category: "men", Images: []string{"a.jpg"}}
	dress := &models.Product{Name: "Summer Dress", Description: "floral print", Price: 1499, Category: "women"}
	scarf := &models.Product{Name: "Silk Scarf", Description: "linen blend", Price: 499, Category: "women"}
	for _, p := range []*models.Product{shirt, dress, scarf} {
		require.NoError(t, s.SaveProduct(ctx, p))
	}

	women, total, err := s.ListProducts(ctx, models.ProductFilter{Category: "women"}, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, women, 2)

	linen, total, err := s.ListProducts(ctx, models.ProductFilter{Search: "LINEN"}, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, linen, 2)

	page, total, err := s.ListProducts(ctx, models.ProductFilter{}, 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, page, 1)

	found, err := s.FindProduct(ctx, shirt.ID)
	require.NoError(t, err)
	assert.Equal(t, "a.jpg", found.PrimaryImage())

	_, err = s.FindProduct(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	many, err := s.FindProducts(ctx, []uuid.UUID{shirt.ID, uuid.New(), scarf.ID})
	require.NoError(t, err)
	assert.Len(t, many, 2)

	shirt.Price = 1299
	require.NoError(t, s.SaveProduct(ctx, shirt))
	found, err = s.FindProduct(ctx, shirt.ID)
	require.NoError(t, err)
	assert.Equal(t, 1299.0, found.Price)
}

func testCarts(t *testing.T, s Backend) {
	ctx := context.Background()
	userID := uuid.New()
	productID := uuid.New()

	_, err := s.FindCart(ctx, userID)
	assert.ErrorIs(t, err, ErrNotFound)

	cart := models.NewCart(userID).WithQuantityDelta(productID, 2)
	require.NoError(t, s.SaveCart(ctx, &cart))
	assert.Equal(t, 1, cart.Version)

	loaded, err := s.FindCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, 2, loaded.Items[0].Quantity)

	second, err := s.FindCart(ctx, userID)
	require.NoError(t, err)

	next := loaded.WithQuantityDelta(productID, 3)
	require.NoError(t, s.SaveCart(ctx, &next))
	assert.Equal(t, 2, next.Version)

	stale := second.Cleared()
	assert.ErrorIs(t, s.SaveCart(ctx, &stale), ErrStale)

	duplicate := models.NewCart(userID)
	assert.ErrorIs(t, s.SaveCart(ctx, &duplicate), ErrStale)

	final, err := s.FindCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, final.Items, 1)
	assert.Equal(t, 5, final.Items[0].Quantity)
}

func testOrders(t *testing.T, s Backend) {
	ctx := context.Background()
	userID := uuid.New()

	first := &models.Order{
		UserID:        userID,
		Items:         models.OrderLines{{ProductID: uuid.New(), Name: "Shirt", UnitPrice: 999, Quantity: 2}},
		PaymentMethod: models.PaymentCOD,
		Status:        models.OrderStatusPending,
		Total:         1998,
	}
	require.NoError(t, s.CreateOrder(ctx, first))

	second := &models.Order{
		UserID:        userID,
		Items:         models.OrderLines{{ProductID: uuid.New(), Name: "Dress", UnitPrice: 1499, Quantity: 1}},
		PaymentMethod: models.PaymentUPI,
		Status:        models.OrderStatusPending,
		Total:         1499,
	}
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	require.NoError(t, s.CreateOrder(ctx, second))

	other := &models.Order{
		UserID:        uuid.New(),
		Items:         models.OrderLines{{ProductID: uuid.New(), Name: "Scarf", UnitPrice: 499, Quantity: 1}},
		PaymentMethod: models.PaymentCard,
		Status:        models.OrderStatusPending,
		Total:         499,
	}
	other.CreatedAt = second.CreatedAt.Add(time.Second)
	require.NoError(t, s.CreateOrder(ctx, other))

	mine, err := s.ListOrdersByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)
	assert.Equal(t, "Shirt", mine[1].Items[0].Name)

	all, err := s.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, other.ID, all[0].ID)

	updated, err := s.UpdateOrderStatus(ctx, first.ID, models.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, updated.Status)
	assert.Equal(t, 999.0, updated.Items[0].UnitPrice)

	_, err = s.UpdateOrderStatus(ctx, uuid.New(), models.OrderStatusShipped)
	assert.ErrorIs(t, err, ErrNotFound)
}
