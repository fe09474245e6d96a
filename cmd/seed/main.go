package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/example/vibrantflight/internal/config"
	"github.com/example/vibrantflight/internal/models"
	"github.com/example/vibrantflight/internal/services"
	"github.com/example/vibrantflight/internal/store"
	"github.com/example/vibrantflight/internal/telemetry"
)

// seed replaces the configured admin account and optionally loads catalog products.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := telemetry.InitLogger(cfg.AppEnv)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer telemetry.SyncLogger()

	ctx := context.Background()

	backend, closeStore, err := store.Open(ctx, cfg.StorageDriver, cfg.DatabaseURL, false)
	if err != nil {
		logger.Fatal("Failed to open store", zap.Error(err))
	}
	defer closeStore()

	identity := services.NewIdentityService(backend, backend, nil, services.IdentityConfig{
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenExpires,
	}, logger)

	admin, err := identity.SeedAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		logger.Fatal("Failed to seed admin", zap.Error(err))
	}
	logger.Info("Admin created", zap.String("email", admin.Email))

	if cfg.SeedProductsFile == "" {
		return
	}

	products, err := readProducts(cfg.SeedProductsFile)
	if err != nil {
		logger.Fatal("Failed to read products", zap.String("file", cfg.SeedProductsFile), zap.Error(err))
	}

	catalog := services.NewCatalogService(backend, nil, logger)
	for i := range products {
		if err := catalog.Save(ctx, &products[i]); err != nil {
			logger.Fatal("Failed to save product", zap.String("name", products[i].Name), zap.Error(err))
		}
	}
	logger.Info("Products seeded", zap.Int("count", len(products)))
}

func readProducts(path string) ([]models.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, err
	}
	return products, nil
}
