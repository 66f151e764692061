package handler

import (
	"log/slog"

	"go-pos-inventory/internal/idempotency"
	"go-pos-inventory/internal/middleware"
	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/observability"
	"go-pos-inventory/internal/service"
	"go-pos-inventory/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// RouterParams groups dependencies for registering the HTTP routes.
type RouterParams struct {
	Logger      *slog.Logger
	Inventory   service.InventoryService
	Summary     service.SummaryService
	Auth        service.AuthService
	Idempotency *idempotency.Store
	Hub         *ws.Hub
	Metrics     *observability.Metrics
}

// RegisterRoutes mounts /api/v1, /ws and /metrics on app.
func RegisterRoutes(app *fiber.App, p RouterParams) {
	if p.Logger == nil {
		p.Logger = slog.New(slog.DiscardHandler)
	}
	invHandler := NewInventoryHandler(p.Inventory)
	summaryHandler := NewSummaryHandler(p.Summary)
	authHandler := NewAuthHandler(p.Auth)

	app.Get("/metrics", adaptor.HTTPHandler(p.Metrics.Handler()))

	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(p.Auth))
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	protected.Get("/auth/me", authHandler.Me)
	protected.Post("/auth/register", adminOnly, authHandler.Register)

	// Product Routes
	protected.Get("/products", invHandler.GetProducts)
	protected.Get("/products/:id", invHandler.GetProduct)
	protected.Post("/products", invHandler.CreateProduct)
	protected.Put("/products/:id", invHandler.UpdateProduct)
	protected.Delete("/products/:id", adminOnly, invHandler.DeleteProduct)

	// Sale Routes
	protected.Get("/sales", invHandler.GetSales)
	protected.Get("/sales/:id", invHandler.GetSale)
	protected.Post("/sales", middleware.Idempotency(p.Idempotency, p.Logger), invHandler.RecordSale)
	protected.Put("/sales/:id", invHandler.EditSale)
	protected.Delete("/sales/:id", invHandler.DeleteSale)

	// Summary Routes
	protected.Get("/summary", summaryHandler.GetSummary)
	protected.Get("/summary/totals", summaryHandler.GetTotals)
	protected.Get("/summary/stock-alerts", summaryHandler.GetStockAlerts)
	protected.Get("/dashboard/stats", summaryHandler.GetDashboardStats)

	// WebSocket Route
	if p.Hub != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return c.SendStatus(fiber.StatusUpgradeRequired)
		})
		app.Get("/ws", websocket.New(func(c *websocket.Conn) {
			if !p.Hub.Attach(c) {
				return
			}
			defer p.Hub.Detach(c)

			for {
				// Keep alive loop
				if _, _, err := c.ReadMessage(); err != nil {
					break
				}
			}
		}))
	}
}
