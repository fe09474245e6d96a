package store

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/vibrantflight/internal/models"
)

// Memory keeps every record in process maps. It backs STORAGE_DRIVER=memory
// and the service tests. Values are copied in and out so callers never share
// slices with the stored state.
type Memory struct {
	mu sync.RWMutex

	users      map[uuid.UUID]models.User
	userEmails map[string]uuid.UUID
	admins     map[string]models.Admin
	products   map[uuid.UUID]models.Product
	carts      map[uuid.UUID]models.Cart
	orders     map[uuid.UUID]models.Order

	// insertion order, oldest first
	productOrder []uuid.UUID
	orderOrder   []uuid.UUID

	now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		users:      make(map[uuid.UUID]models.User),
		userEmails: make(map[string]uuid.UUID),
		admins:     make(map[string]models.Admin),
		products:   make(map[uuid.UUID]models.Product),
		carts:      make(map[uuid.UUID]models.Cart),
		orders:     make(map[uuid.UUID]models.Order),
		now:        time.Now,
	}
}

func (s *Memory) Ping(context.Context) error { return nil }

// Users

func (s *Memory) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.Email = models.NormalizeEmail(user.Email)
	if _, taken := s.userEmails[user.Email]; taken {
		return ErrDuplicate
	}

	user.EnsureID()
	user.Touch(s.now())
	s.users[user.ID] = *user
	s.userEmails[user.Email] = user.ID
	return nil
}

func (s *Memory) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.userEmails[models.NormalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	user := s.users[id]
	return &user, nil
}

func (s *Memory) FindUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (s *Memory) SaveUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return ErrNotFound
	}

	user.Email = models.NormalizeEmail(user.Email)
	if owner, taken := s.userEmails[user.Email]; taken && owner != user.ID {
		return ErrDuplicate
	}

	delete(s.userEmails, existing.Email)
	user.Touch(s.now())
	s.users[user.ID] = *user
	s.userEmails[user.Email] = user.ID
	return nil
}

func (s *Memory) FindUserSummaries(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]models.OwnerSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make(map[uuid.UUID]models.OwnerSummary, len(ids))
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			summaries[id] = models.OwnerSummary{ID: user.ID, Name: user.Name, Email: user.Email}
		}
	}
	return summaries, nil
}

// Admins

func (s *Memory) FindAdminByEmail(_ context.Context, email string) (*models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	admin, ok := s.admins[models.NormalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return &admin, nil
}

func (s *Memory) ReplaceAdmin(_ context.Context, admin *models.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	admin.Email = models.NormalizeEmail(admin.Email)
	admin.EnsureID()
	admin.Touch(s.now())
	s.admins[admin.Email] = *admin
	return nil
}

// Products

func (s *Memory) ListProducts(_ context.Context, filter models.ProductFilter, limit, offset int) ([]models.Product, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	term := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := make([]models.Product, 0)
	for i := len(s.productOrder) - 1; i >= 0; i-- {
		product := s.products[s.productOrder[i]]
		if filter.Category != "" && product.Category != filter.Category {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(product.Name), term) &&
			!strings.Contains(strings.ToLower(product.Description), term) {
			continue
		}
		matched = append(matched, product)
	}

	total := int64(len(matched))
	if offset >= len(matched) {
		return []models.Product{}, total, nil
	}
	end := len(matched)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	page := make([]models.Product, 0, end-offset)
	for _, product := range matched[offset:end] {
		page = append(page, cloneProduct(product))
	}
	return page, total, nil
}

func (s *Memory) FindProduct(_ context.Context, id uuid.UUID) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	product = cloneProduct(product)
	return &product, nil
}

func (s *Memory) FindProducts(_ context.Context, ids []uuid.UUID) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if product, ok := s.products[id]; ok {
			products = append(products, cloneProduct(product))
		}
	}
	return products, nil
}

func (s *Memory) SaveProduct(_ context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	product.EnsureID()
	product.Touch(s.now())
	if _, exists := s.products[product.ID]; !exists {
		s.productOrder = append(s.productOrder, product.ID)
	}
	s.products[product.ID] = cloneProduct(*product)
	return nil
}

// Carts

func (s *Memory) FindCart(_ context.Context, userID uuid.UUID) (*models.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cart, ok := s.carts[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cart.Items = slices.Clone(cart.Items)
	return &cart, nil
}

func (s *Memory) SaveCart(_ context.Context, cart *models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.carts[cart.UserID]
	switch {
	case cart.Version == 0 && exists:
		return ErrStale
	case cart.Version != 0 && (!exists || stored.Version != cart.Version):
		return ErrStale
	}

	cart.EnsureID()
	cart.Touch(s.now())
	cart.Version++

	next := *cart
	next.Items = slices.Clone(cart.Items)
	if next.Items == nil {
		next.Items = models.CartLines{}
	}
	s.carts[cart.UserID] = next
	return nil
}

// Orders

func (s *Memory) CreateOrder(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order.EnsureID()
	order.Touch(s.now())
	stored := *order
	stored.Items = slices.Clone(order.Items)
	s.orders[order.ID] = stored
	s.orderOrder = append(s.orderOrder, order.ID)
	return nil
}

func (s *Memory) FindOrder(_ context.Context, id uuid.UUID) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	order.Items = slices.Clone(order.Items)
	return &order, nil
}

func (s *Memory) ListOrdersByUser(_ context.Context, userID uuid.UUID) ([]models.Order, error) {
	return s.listOrders(func(o models.Order) bool { return o.UserID == userID }), nil
}

func (s *Memory) ListOrders(_ context.Context) ([]models.Order, error) {
	return s.listOrders(func(models.Order) bool { return true }), nil
}

func (s *Memory) listOrders(keep func(models.Order) bool) []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]models.Order, 0)
	for i := len(s.orderOrder) - 1; i >= 0; i-- {
		order := s.orders[s.orderOrder[i]]
		if !keep(order) {
			continue
		}
		order.Items = slices.Clone(order.Items)
		orders = append(orders, order)
	}
	return orders
}

func (s *Memory) UpdateOrderStatus(_ context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	order.Status = status
	order.Touch(s.now())
	s.orders[id] = order

	order.Items = slices.Clone(order.Items)
	return &order, nil
}

func cloneProduct(p models.Product) models.Product {
	p.Sizes = slices.Clone(p.Sizes)
	p.Images = slices.Clone(p.Images)
	p.Reviews = slices.Clone(p.Reviews)
	p.Suggestions = slices.Clone(p.Suggestions)
	if p.OriginalPrice != nil {
		price := *p.OriginalPrice
		p.OriginalPrice = &price
	}
	return p
}
