package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-pos-inventory/internal/config"
	"go-pos-inventory/internal/handler"
	"go-pos-inventory/internal/idempotency"
	"go-pos-inventory/internal/observability"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/internal/service"
	"go-pos-inventory/internal/ws"
	"go-pos-inventory/pkg/cache"
	"go-pos-inventory/pkg/jwt"
	"go-pos-inventory/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		logger.New("text", "info").Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogFormat, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Setup store
	stores, err := repository.OpenStores(ctx, cfg.StoreOptions(true), log)
	if err != nil {
		log.Error("store unavailable", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer stores.Close(context.Background())

	// 3. Optional Redis for idempotent sale posting
	var idem *idempotency.Store
	if cfg.RedisAddr != "" {
		rdb, err := cache.New(ctx, cfg.RedisAddr, 0)
		if err != nil {
			log.Error("redis unavailable", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		idem = idempotency.NewStore(rdb, cfg.IdempotencyTTL)
	} else {
		log.Warn("REDIS_ADDR not set, Idempotency-Key is ignored")
	}

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub(log)
	go wsHub.Run(ctx)

	// 5. Dependency Injection (Wiring Layers)
	metrics := observability.NewMetrics()
	tokens := jwt.NewManager(cfg.JWTSecret, cfg.JWTTTL)

	invService := service.NewInventoryService(stores.Products, stores.Transactions, wsHub, metrics, log)
	summaryService := service.NewSummaryService(stores.Products, stores.Transactions,
		service.Thresholds{Critical: cfg.LowStockCritical, Warning: cfg.LowStockWarning}, nil)
	authService := service.NewAuthService(stores.Users, tokens, log)

	// 6. Seed default admin user
	if err := authService.SeedAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Warn("failed to seed admin user", "error", err)
	}

	// 7. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "POS Inventory v1.0",
	})

	// Middleware
	app.Use(fiberlogger.New()) // Logging request
	app.Use(recover.New())     // Panic recovery
	app.Use(cors.New())        // CORS
	app.Use(metrics.Middleware())

	// 8. Routes
	handler.RegisterRoutes(app, handler.RouterParams{
		Logger:      log,
		Inventory:   invService,
		Summary:     summaryService,
		Auth:        authService,
		Idempotency: idem,
		Hub:         wsHub,
		Metrics:     metrics,
	})

	// 9. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("server stopped", "error", err)
			stop()
		}
	}()
	log.Info("server started", "port", cfg.Port, "store", cfg.StoreDriver, "env", cfg.AppEnv)

	<-ctx.Done()

	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}
