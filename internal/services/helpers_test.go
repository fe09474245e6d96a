package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/vibrantflight/internal/models"
	"github.com/example/vibrantflight/internal/store"
)

type sentMail struct {
	mu    sync.Mutex
	mails []Mail
	err   error
}

func (m *sentMail) Send(_ context.Context, mail Mail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.mails = append(m.mails, mail)
	return nil
}

func (m *sentMail) last() Mail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mails[len(m.mails)-1]
}

type recordedEvents struct {
	placed  []models.Order
	changed []models.OrderStatus
	err     error
}

func (r *recordedEvents) OrderPlaced(_ context.Context, order models.Order) error {
	r.placed = append(r.placed, order)
	return r.err
}

func (r *recordedEvents) OrderStatusChanged(_ context.Context, order models.Order, previous models.OrderStatus) error {
	r.changed = append(r.changed, previous, order.Status)
	return r.err
}

type recordedNotifier struct {
	orders   []models.OwnerSummary
	contacts []models.ContactMessage
	err      error
}

func (n *recordedNotifier) NotifyNewOrder(_ context.Context, _ models.Order, owner models.OwnerSummary) error {
	n.orders = append(n.orders, owner)
	return n.err
}

func (n *recordedNotifier) NotifyContact(_ context.Context, msg models.ContactMessage) error {
	n.contacts = append(n.contacts, msg)
	return n.err
}

// fixture wires every service over one in-memory store.
type fixture struct {
	store    *store.Memory
	mailer   *sentMail
	events   *recordedEvents
	notifier *recordedNotifier

	identity *IdentityService
	catalog  *CatalogService
	carts    *CartService
	orders   *OrderService
}

func newFixture(cfg OrderConfig) *fixture {
	logger := zap.NewNop()
	mem := store.NewMemory()
	f := &fixture{
		store:    mem,
		mailer:   &sentMail{},
		events:   &recordedEvents{},
		notifier: &recordedNotifier{},
	}

	f.identity = NewIdentityService(mem, mem, f.mailer, IdentityConfig{
		JWTSecret:     "test-secret",
		TokenTTL:      time.Hour,
		ResetTokenTTL: time.Hour,
		PublicBaseURL: "http://shop.test",
	}, logger)
	f.catalog = NewCatalogService(mem, nil, logger)
	f.carts = NewCartService(mem, f.catalog, logger)
	f.orders = NewOrderService(mem, mem, f.carts, f.catalog, f.events, f.notifier, cfg, logger)
	return f
}

func (f *fixture) product(name string, price float64) models.Product {
	p := models.Product{Name: name, Price: price, Images: []string{name + ".jpg"}, Stock: "In Stock"}
	if err := f.store.SaveProduct(context.Background(), &p); err != nil {
		panic(err)
	}
	return p
}
