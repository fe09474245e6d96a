package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/vibrantflight/internal/apperrors"
	"github.com/example/vibrantflight/internal/models"
	"github.com/example/vibrantflight/internal/store"
	"github.com/example/vibrantflight/internal/telemetry"
	"github.com/example/vibrantflight/internal/utils"
)

// CatalogService serves product reads, optionally through a cache.
type CatalogService struct {
	products ProductRepository
	cache    ProductCache
	logger   *zap.Logger
}

// NewCatalogService builds the catalog. cache may be nil.
func NewCatalogService(products ProductRepository, cache ProductCache, logger *zap.Logger) *CatalogService {
	return &CatalogService{products: products, cache: cache, logger: logger}
}

// List returns one page of products matching filter.
func (s *CatalogService) List(ctx context.Context, filter models.ProductFilter, page utils.Pagination) ([]models.Product, utils.PageMeta, error) {
	products, total, err := s.products.ListProducts(ctx, filter, page.Limit, page.Offset)
	if err != nil {
		return nil, utils.PageMeta{}, apperrors.Dependency("Server error", err)
	}
	return products, page.Meta(total), nil
}

// Get returns one product.
func (s *CatalogService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if product, ok := s.cached(ctx, id); ok {
		return product, nil
	}

	product, err := s.products.FindProduct(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("Product not found")
		}
		return nil, apperrors.Dependency("Server error", err)
	}

	s.remember(ctx, *product)
	return product, nil
}

// Resolve loads the current catalog entries for ids. Unknown ids are absent
// from the result.
func (s *CatalogService) Resolve(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	resolved := make(map[uuid.UUID]models.Product, len(ids))

	missing := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, seen := resolved[id]; seen {
			continue
		}
		if product, ok := s.cached(ctx, id); ok {
			resolved[id] = *product
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return resolved, nil
	}

	products, err := s.products.FindProducts(ctx, missing)
	if err != nil {
		return nil, apperrors.Dependency("Server error", err)
	}
	for _, product := range products {
		resolved[product.ID] = product
		s.remember(ctx, product)
	}
	return resolved, nil
}

// Save inserts or overwrites a product. Only the seed command writes products.
func (s *CatalogService) Save(ctx context.Context, product *models.Product) error {
	if product.Name == "" || product.Price < 0 {
		return apperrors.Validation("Product name and a non-negative price are required")
	}
	if err := s.products.SaveProduct(ctx, product); err != nil {
		return apperrors.Dependency("Failed to store product", err)
	}
	s.remember(ctx, *product)
	return nil
}

func (s *CatalogService) cached(ctx context.Context, id uuid.UUID) (*models.Product, bool) {
	if s.cache == nil {
		return nil, false
	}

	product, ok, err := s.cache.GetProduct(ctx, id)
	switch {
	case err != nil:
		telemetry.ProductCacheRequestsTotal.WithLabelValues("error").Inc()
		s.logger.Warn("product cache read failed", zap.String("product_id", id.String()), zap.Error(err))
		return nil, false
	case !ok:
		telemetry.ProductCacheRequestsTotal.WithLabelValues("miss").Inc()
		return nil, false
	}

	telemetry.ProductCacheRequestsTotal.WithLabelValues("hit").Inc()
	return product, true
}

func (s *CatalogService) remember(ctx context.Context, product models.Product) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetProduct(ctx, product); err != nil {
		s.logger.Warn("product cache write failed", zap.String("product_id", product.ID.String()), zap.Error(err))
	}
}
