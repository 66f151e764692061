package middleware

import (
	"context"
	"errors"
	"log/slog"

	"go-pos-inventory/internal/idempotency"

	"github.com/gofiber/fiber/v2"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"
)

// Idempotency replays the first response for requests that repeat an
// Idempotency-Key. Requests without the header pass straight through. When
// Redis fails the request is served without protection.
func Idempotency(store *idempotency.Store, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(HeaderIdempotencyKey)
		if key == "" || store == nil {
			return c.Next()
		}
		scoped := c.Method() + ":" + c.Path() + ":" + key
		ctx := c.UserContext()

		stored, err := store.Reserve(ctx, scoped)
		switch {
		case errors.Is(err, idempotency.ErrInProgress):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A request with this Idempotency-Key is still in progress"})
		case err != nil:
			logger.Warn("idempotency store unavailable", "error", err)
			return c.Next()
		case stored != nil:
			c.Set(HeaderReplayed, "true")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Status(stored.Status).Send(stored.Body)
		}

		err = c.Next()
		status := c.Response().StatusCode()
		// Keep outcomes that a retry would reproduce; release the rest.
		if err != nil || status >= fiber.StatusInternalServerError {
			if relErr := store.Release(context.WithoutCancel(ctx), scoped); relErr != nil {
				logger.Warn("idempotency release failed", "error", relErr)
			}
			return err
		}
		body := append([]byte(nil), c.Response().Body()...)
		if err := store.Complete(context.WithoutCancel(ctx), scoped, idempotency.Response{Status: status, Body: body}); err != nil {
			logger.Warn("idempotency complete failed", "error", err)
		}
		return nil
	}
}
