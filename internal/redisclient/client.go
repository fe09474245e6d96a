package redisclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/example/vibrantflight/internal/models"
)

const productKeyPrefix = "product:"

type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewClient connects to Redis and verifies the connection with a ping.
func NewClient(addr, password string, db int, ttl time.Duration) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb, ttl: ttl}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetProduct returns the cached product. A miss is reported as ok=false with a nil error.
func (c *Client) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, bool, error) {
	raw, err := c.rdb.Get(ctx, productKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var product models.Product
	if err := json.Unmarshal(raw, &product); err != nil {
		return nil, false, fmt.Errorf("decode cached product: %w", err)
	}
	return &product, true, nil
}

// SetProduct caches the product under product:<id> for the configured TTL.
func (c *Client) SetProduct(ctx context.Context, product models.Product) error {
	raw, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, productKey(product.ID), raw, c.ttl).Err()
}

// DeleteProduct drops a cached product.
func (c *Client) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return c.rdb.Del(ctx, productKey(id)).Err()
}

func productKey(id uuid.UUID) string {
	return productKeyPrefix + id.String()
}
