package middleware

import (
	"context"
	"strings"

	"go-pos-inventory/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// Context keys set by RequireAuth
const (
	LocalUserID   = "user_id"
	LocalUsername = "username"
	LocalUserName = "user_name"
	LocalRole     = "user_role"
)

// TokenValidator resolves a bearer token to its claims.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*jwt.Claims, error)
}

// RequireAuth is middleware that validates JWT token and sets user info in context
func RequireAuth(tokens TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get Authorization header
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		claims, err := tokens.ValidateToken(c.UserContext(), parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		// Set user info in context for downstream handlers
		c.Locals(LocalUserID, claims.UserID.String())
		c.Locals(LocalUsername, claims.Username)
		c.Locals(LocalUserName, claims.Name)
		c.Locals(LocalRole, claims.Role)

		return c.Next()
	}
}

// RequireRole lets the request through when the authenticated user holds one
// of roles.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(LocalRole).(string)
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "No role found"})
		}

		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Forbidden: requires one of " + strings.Join(roles, ", ") + " roles",
		})
	}
}
