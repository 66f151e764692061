package handler

import (
	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SaleRequest is the body of POST and PUT /sales
type SaleRequest struct {
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Date        string `json:"date"` // YYYY-MM-DD
}

func (r SaleRequest) input() (service.SaleInput, bool) {
	in := service.SaleInput{ProductName: r.ProductName, Quantity: r.Quantity}
	if r.Date == "" {
		return in, true
	}
	date, err := model.ParseDate(r.Date)
	if err != nil {
		return in, false
	}
	in.Date = date
	return in, true
}

// parseSale decodes the body. A non-empty message means a 400 response.
func parseSale(c *fiber.Ctx) (service.SaleInput, string) {
	var req SaleRequest
	if err := c.BodyParser(&req); err != nil {
		return service.SaleInput{}, "Invalid JSON"
	}
	in, ok := req.input()
	if !ok {
		return in, "Invalid date, use YYYY-MM-DD"
	}
	return in, ""
}

// GetSales lists sales, optionally narrowed by product name and date range
// GET /api/v1/sales?search=&start=&end=
func (h *InventoryHandler) GetSales(c *fiber.Ctx) error {
	start, err := parseDateQuery(c, "start")
	if err != nil {
		return badRequest(c, "Invalid start date, use YYYY-MM-DD")
	}
	end, err := parseDateQuery(c, "end")
	if err != nil {
		return badRequest(c, "Invalid end date, use YYYY-MM-DD")
	}
	search := c.Query("search")

	if start.IsZero() && end.IsZero() {
		sales, err := h.service.ListSales(c.UserContext(), search)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(sales)
	}

	sales, err := h.service.ListSalesByDateRange(c.UserContext(), start, end)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(service.FilterSales(sales, search))
}

func (h *InventoryHandler) GetSale(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid sale ID")
	}
	sale, err := h.service.GetSale(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sale)
}

// RecordSale books a sale
// POST /api/v1/sales
func (h *InventoryHandler) RecordSale(c *fiber.Ctx) error {
	in, msg := parseSale(c)
	if msg != "" {
		return badRequest(c, msg)
	}

	result, err := h.service.RecordSale(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Sale recorded", "data": result})
}

func (h *InventoryHandler) EditSale(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid sale ID")
	}
	in, msg := parseSale(c)
	if msg != "" {
		return badRequest(c, msg)
	}

	result, err := h.service.EditSale(c.UserContext(), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Sale updated", "data": result})
}

func (h *InventoryHandler) DeleteSale(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return badRequest(c, "Invalid sale ID")
	}
	if err := h.service.DeleteSale(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Sale deleted"})
}
