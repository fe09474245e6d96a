//go:build integration

package redisclient

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/example/vibrantflight/internal/models"
)

func TestProductCacheRoundTrip(t *testing.T) {
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	addr, err := container.PortEndpoint(ctx, "6379/tcp", "")
	require.NoError(t, err)

	client, err := NewClient(addr, "", 0, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	product := models.Product{Name: "Linen Shirt", Price: 999, Images: []string{"a.jpg"}}
	product.ID = uuid.New()

	_, ok, err := client.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, client.SetProduct(ctx, product))

	cached, ok, err := client.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Linen Shirt", cached.Name)
	assert.Equal(t, "a.jpg", cached.PrimaryImage())

	require.NoError(t, client.DeleteProduct(ctx, product.ID))
	_, ok, err = client.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
