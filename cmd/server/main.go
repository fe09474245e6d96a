package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/vibrantflight/internal/broker"
	"github.com/example/vibrantflight/internal/config"
	"github.com/example/vibrantflight/internal/redisclient"
	"github.com/example/vibrantflight/internal/routes"
	"github.com/example/vibrantflight/internal/services"
	"github.com/example/vibrantflight/internal/store"
	"github.com/example/vibrantflight/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server: %v", err)
	}
}

// run owns every resource so deferred closers execute before the process exits.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := telemetry.InitLogger(cfg.AppEnv)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer telemetry.SyncLogger()

	logger.Info("Starting storefront backend", zap.String("env", cfg.AppEnv), zap.String("storage", cfg.StorageDriver))

	ctx := context.Background()

	shutdownTracer, err := telemetry.InitTracer(ctx, "vibrantflight", cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("initialize tracer: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(ctx); err != nil {
			logger.Warn("Error shutting down tracer", zap.Error(err))
		}
	}()

	backend, closeStore, err := store.Open(ctx, cfg.StorageDriver, cfg.DatabaseURL, !cfg.IsProduction())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("Error closing store", zap.Error(err))
		}
	}()

	// Optional collaborators stay nil interfaces when unconfigured.
	var cache services.ProductCache
	if cfg.RedisAddr != "" {
		redisClient, err := redisclient.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.ProductCacheTTL)
		if err != nil {
			logger.Warn("Redis unavailable, product cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			cache = redisClient
			logger.Info("Redis connected")
		}
	}

	var events services.OrderEvents
	if len(cfg.KafkaBrokers) > 0 {
		producer := broker.NewProducer(cfg.KafkaBrokers, cfg.KafkaOrderEventsTopic, logger)
		defer producer.Close()
		events = broker.NewEventPublisher(producer)
		logger.Info("Kafka producer initialized", zap.String("topic", cfg.KafkaOrderEventsTopic))
	}

	var notifier services.Notifier
	if cfg.TelegramBotToken != "" && cfg.TelegramAdminChat != "" {
		notifier = services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat, logger)
	}

	mailer := services.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)

	identity := services.NewIdentityService(backend, backend, mailer, services.IdentityConfig{
		JWTSecret:     cfg.JWTSecret,
		TokenTTL:      cfg.TokenExpires,
		ResetTokenTTL: cfg.ResetTokenTTL,
		PublicBaseURL: cfg.PublicBaseURL,
	}, logger)
	catalog := services.NewCatalogService(backend, cache, logger)
	carts := services.NewCartService(backend, catalog, logger)
	orders := services.NewOrderService(backend, backend, carts, catalog, events, notifier, services.OrderConfig{
		RepriceFromCatalog: cfg.RepriceFromCatalog,
		EnforceTransitions: cfg.EnforceTransitions,
	}, logger)
	contact := services.NewContactService(mailer, notifier, cfg.ContactEmail, logger)

	app := routes.NewApp(logger)
	routes.Register(app, cfg.JWTSecret, routes.Services{
		Identity: identity,
		Catalog:  catalog,
		Carts:    carts,
		Orders:   orders,
		Contact:  contact,
		Store:    backend,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	return serve(app, ":"+cfg.AppPort, quit, logger)
}

// serve blocks until the listener fails or a signal arrives, then drains the app.
func serve(app *fiber.App, addr string, quit <-chan os.Signal, logger *zap.Logger) error {
	listenErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		listenErr <- app.Listen(addr)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("fiber.Listen: %w", err)
	case <-quit:
	}

	logger.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited")
	return nil
}
