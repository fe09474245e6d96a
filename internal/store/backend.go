package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/example/vibrantflight/internal/config"
	"github.com/example/vibrantflight/internal/database"
	"github.com/example/vibrantflight/internal/models"
)

// Backend is the method set shared by Gorm and Memory.
type Backend interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	FindUserSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.OwnerSummary, error)
	FindAdminByEmail(ctx context.Context, email string) (*models.Admin, error)
	ReplaceAdmin(ctx context.Context, admin *models.Admin) error
	ListProducts(ctx context.Context, filter models.ProductFilter, limit, offset int) ([]models.Product, int64, error)
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindProducts(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	SaveProduct(ctx context.Context, product *models.Product) error
	FindCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	SaveCart(ctx context.Context, cart *models.Cart) error
	CreateOrder(ctx context.Context, order *models.Order) error
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error)
	Ping(ctx context.Context) error
}

var (
	_ Backend = (*Gorm)(nil)
	_ Backend = (*Memory)(nil)
)

// Open returns the backend selected by driver and a function releasing it.
func Open(ctx context.Context, driver, dsn string, verbose bool) (Backend, func() error, error) {
	switch driver {
	case config.StorageDriverMemory:
		return NewMemory(), func() error { return nil }, nil
	case config.StorageDriverPostgres:
		conn, err := database.Connect(ctx, dsn, verbose)
		if err != nil {
			return nil, nil, err
		}
		return NewGorm(conn), func() error { return database.Close(conn) }, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", driver)
}
