package handler

import (
	"errors"
	"time"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// respondError maps service error kinds to HTTP statuses.
func respondError(c *fiber.Ctx, err error) error {
	var (
		validationErr *service.ValidationError
		stockErr      *service.InsufficientStockError
		persistErr    *service.PersistenceError
	)
	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": validationErr.Error(),
			"field": validationErr.Field,
		})
	case errors.As(err, &stockErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":     stockErr.Error(),
			"requested": stockErr.Requested,
			"available": stockErr.Available,
		})
	case errors.Is(err, service.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &persistErr):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":                   "Storage failure",
			"reconciliation_required": persistErr.NeedsReconciliation(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func parseID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	return id, err == nil
}

// parseDateQuery reads a YYYY-MM-DD query parameter. An absent parameter
// yields the zero time.
func parseDateQuery(c *fiber.Ctx, name string) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, nil
	}
	return model.ParseDate(raw)
}
