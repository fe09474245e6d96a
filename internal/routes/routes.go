package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/example/vibrantflight/internal/handlers"
	"github.com/example/vibrantflight/internal/middleware"
	"github.com/example/vibrantflight/internal/models"
	"github.com/example/vibrantflight/internal/services"
)

// Services are the domain services the HTTP layer dispatches to.
type Services struct {
	Identity *services.IdentityService
	Catalog  *services.CatalogService
	Carts    *services.CartService
	Orders   *services.OrderService
	Contact  *services.ContactService
	Store    handlers.Pinger
}

// NewApp builds the fiber app with the JSON error handler and shared middleware.
func NewApp(logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Vibrant Flight Backend",
		ErrorHandler: middleware.ErrorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(middleware.RequestLogger(logger))
	app.Use(middleware.Metrics())

	return app
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, jwtSecret string, svc Services) {
	authHandler := handlers.NewAuthHandler(svc.Identity)
	productHandler := handlers.NewProductHandler(svc.Catalog)
	cartHandler := handlers.NewCartHandler(svc.Carts)
	orderHandler := handlers.NewOrderHandler(svc.Orders)
	contactHandler := handlers.NewContactHandler(svc.Contact)
	healthHandler := handlers.NewHealthHandler(svc.Store)

	requireAuth := middleware.AuthMiddleware(jwtSecret)
	requireAdmin := middleware.RequireRole(models.RoleAdmin)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")
	api.Get("/health", healthHandler.Health)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/forgot", authHandler.ForgotPassword)
	auth.Post("/reset", authHandler.ResetPassword)
	auth.Get("/me", requireAuth, authHandler.Me)
	auth.Put("/address", requireAuth, authHandler.UpdateAddress)
	auth.Put("/password", requireAuth, authHandler.ChangePassword)

	// Products
	products := api.Group("/products")
	productHandler.RegisterProductRoutes(products)

	// Cart
	cart := api.Group("/cart", requireAuth)
	cart.Get("/", cartHandler.GetCart)
	cart.Post("/", cartHandler.AddItem)
	cart.Delete("/", cartHandler.ClearCart)
	cart.Delete("/:productId", cartHandler.RemoveItem)

	// Orders
	orders := api.Group("/orders", requireAuth)
	orders.Post("/", orderHandler.CreateOrder)
	orders.Get("/my-orders", orderHandler.MyOrders)
	orders.Get("/all", requireAdmin, orderHandler.AllOrders)
	orders.Put("/:id/status", requireAdmin, orderHandler.UpdateStatus)

	api.Post("/contact", contactHandler.Submit)
}
