package handler

import (
	"go-pos-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type InventoryHandler struct {
	service service.InventoryService
}

func NewInventoryHandler(s service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: s}
}

// GetProducts lists products
// GET /api/v1/products?search=
func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext(), c.Query("search"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

func (h *InventoryHandler) GetProduct(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid product ID")
	}
	product, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.ProductInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	product, err := h.service.CreateProduct(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Product created", "data": product})
}

func (h *InventoryHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid product ID")
	}
	var req service.ProductInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	updated, err := h.service.UpdateProduct(c.UserContext(), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

func (h *InventoryHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid product ID")
	}
	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}
