package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/vibrantflight/internal/models"
	"github.com/example/vibrantflight/internal/services"
	"github.com/example/vibrantflight/internal/utils"
)

// ProductHandler serves catalog reads.
type ProductHandler struct {
	catalog *services.CatalogService
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(catalog *services.CatalogService) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// RegisterProductRoutes attaches catalog endpoints to router.
func (h *ProductHandler) RegisterProductRoutes(router fiber.Router) {
	router.Get("/", h.ListProducts)
	router.Get("/:id", h.GetProduct)
}

// ListProducts returns paginated products with optional filters.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	filter := models.ProductFilter{
		Category: strings.TrimSpace(c.Query("category")),
		Search:   strings.TrimSpace(c.Query("search")),
	}

	products, meta, err := h.catalog.List(c.UserContext(), filter, pg)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data":       products,
		"pagination": meta,
	})
}

// GetProduct returns one product.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"), "Invalid product ID")
	if err != nil {
		return err
	}

	product, err := h.catalog.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": product})
}
