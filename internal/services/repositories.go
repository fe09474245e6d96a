package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/example/vibrantflight/internal/models"
)

// UserRepository stores customer identities. Implementations return
// store.ErrNotFound and store.ErrDuplicate.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	FindUserSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.OwnerSummary, error)
}

// AdminRepository stores back-office identities.
type AdminRepository interface {
	FindAdminByEmail(ctx context.Context, email string) (*models.Admin, error)
	ReplaceAdmin(ctx context.Context, admin *models.Admin) error
}

// ProductRepository is the read side of the catalog plus the seeding write.
type ProductRepository interface {
	ListProducts(ctx context.Context, filter models.ProductFilter, limit, offset int) ([]models.Product, int64, error)
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindProducts(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	SaveProduct(ctx context.Context, product *models.Product) error
}

// CartRepository persists one cart document per user. SaveCart returns
// store.ErrStale when the stored version moved since the cart was read.
type CartRepository interface {
	FindCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	SaveCart(ctx context.Context, cart *models.Cart) error
}

// OrderRepository persists order snapshots.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error)
}

// ProductCache is an optional read-through cache in front of the catalog.
type ProductCache interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, bool, error)
	SetProduct(ctx context.Context, product models.Product) error
}

// OrderEvents publishes order lifecycle events.
type OrderEvents interface {
	OrderPlaced(ctx context.Context, order models.Order) error
	OrderStatusChanged(ctx context.Context, order models.Order, previous models.OrderStatus) error
}

// Notifier pushes short operational messages to staff.
type Notifier interface {
	NotifyNewOrder(ctx context.Context, order models.Order, owner models.OwnerSummary) error
	NotifyContact(ctx context.Context, msg models.ContactMessage) error
}
