package handler

import (
	"errors"

	"go-pos-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ResetPasswordRequest represents the reset password request body
type ResetPasswordRequest struct {
	Username    string `json:"username"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Login handles user authentication
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	if req.Username == "" || req.Password == "" {
		return badRequest(c, "Username and password are required")
	}

	response, err := h.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		}
		return respondError(c, err)
	}

	return c.JSON(response)
}

// Register creates a user account (admin only)
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req service.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	user, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "User created", "data": user.ToResponse()})
}

// ResetPassword handles password change
// POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	if req.Username == "" || req.OldPassword == "" || req.NewPassword == "" {
		return badRequest(c, "username, old_password, and new_password are required")
	}

	if err := h.authService.ResetPassword(c.UserContext(), req.Username, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrWrongPassword) {
			return badRequest(c, err.Error())
		}
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}

// Me returns the identity carried by the bearer token
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"user_id":  c.Locals("user_id"),
		"username": c.Locals("username"),
		"name":     c.Locals("user_name"),
		"role":     c.Locals("user_role"),
	})
}
