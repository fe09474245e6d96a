package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/vibrantflight/internal/models"
)

// Gorm is the PostgreSQL-backed store.
type Gorm struct {
	db *gorm.DB
}

// NewGorm wraps an opened and migrated gorm connection.
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (s *Gorm) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Users

func (s *Gorm) CreateUser(ctx context.Context, user *models.User) error {
	user.Email = models.NormalizeEmail(user.Email)
	return translate(s.db.WithContext(ctx).Create(user).Error)
}

func (s *Gorm) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ?", models.NormalizeEmail(email)).
		First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Gorm) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Gorm) SaveUser(ctx context.Context, user *models.User) error {
	return translate(s.db.WithContext(ctx).Save(user).Error)
}

// FindUserSummaries loads name and email for the given ids. Missing ids are
// absent from the result.
func (s *Gorm) FindUserSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.OwnerSummary, error) {
	summaries := make(map[uuid.UUID]models.OwnerSummary, len(ids))
	if len(ids) == 0 {
		return summaries, nil
	}

	var rows []models.OwnerSummary
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Select("id", "name", "email").
		Where("id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}

	for _, row := range rows {
		summaries[row.ID] = row
	}
	return summaries, nil
}

// Admins

func (s *Gorm) FindAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	err := s.db.WithContext(ctx).
		Where("email = ?", models.NormalizeEmail(email)).
		First(&admin).Error
	if err != nil {
		return nil, translate(err)
	}
	return &admin, nil
}

// ReplaceAdmin deletes any admin sharing the email and inserts the new record.
func (s *Gorm) ReplaceAdmin(ctx context.Context, admin *models.Admin) error {
	admin.Email = models.NormalizeEmail(admin.Email)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", admin.Email).Delete(&models.Admin{}).Error; err != nil {
			return err
		}
		return tx.Create(admin).Error
	})
	return translate(err)
}

// Products

func (s *Gorm) ListProducts(ctx context.Context, filter models.ProductFilter, limit, offset int) ([]models.Product, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Product{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		like := "%" + term + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var products []models.Product
	err := query.
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&products).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return products, total, nil
}

func (s *Gorm) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (s *Gorm) FindProducts(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var products []models.Product
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, translate(err)
	}
	return products, nil
}

// SaveProduct inserts the product, or overwrites it when the id already exists.
func (s *Gorm) SaveProduct(ctx context.Context, product *models.Product) error {
	product.EnsureID()
	return translate(s.db.WithContext(ctx).Save(product).Error)
}

// Carts

func (s *Gorm) FindCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	if err := s.db.WithContext(ctx).First(&cart, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err)
	}
	return &cart, nil
}

// SaveCart writes the whole line-item document. A cart with Version 0 is
// inserted; otherwise the row is only updated when its stored version still
// matches, and ErrStale is returned when another write got there first.
func (s *Gorm) SaveCart(ctx context.Context, cart *models.Cart) error {
	db := s.db.WithContext(ctx)

	if cart.Version == 0 {
		cart.Version = 1
		if err := translate(db.Create(cart).Error); err != nil {
			cart.Version = 0
			if err == ErrDuplicate {
				return ErrStale
			}
			return err
		}
		return nil
	}

	now := time.Now()
	res := db.Model(&models.Cart{}).
		Where("id = ? AND version = ?", cart.ID, cart.Version).
		Updates(map[string]any{
			"items":      cart.Items,
			"version":    cart.Version + 1,
			"updated_at": now,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}

	cart.Version++
	cart.UpdatedAt = now
	return nil
}

// Orders

func (s *Gorm) CreateOrder(ctx context.Context, order *models.Order) error {
	return translate(s.db.WithContext(ctx).Create(order).Error)
}

func (s *Gorm) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (s *Gorm) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		return nil, translate(err)
	}
	return orders, nil
}

func (s *Gorm) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.WithContext(ctx).Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, translate(err)
	}
	return orders, nil
}

// UpdateOrderStatus overwrites the status and returns the stored order.
func (s *Gorm) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now()})
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.FindOrder(ctx, id)
}
