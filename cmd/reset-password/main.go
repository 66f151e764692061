package main

import (
	"context"
	"flag"
	"os"

	"go-pos-inventory/internal/config"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/pkg/logger"
)

func main() {
	username := flag.String("username", "admin", "user whose password is reset")
	password := flag.String("password", "admin123", "new password")
	flag.Parse()

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		logger.New("text", "info").Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogFormat, cfg.LogLevel)
	ctx := context.Background()

	// 2. Setup store
	stores, err := repository.OpenStores(ctx, cfg.StoreOptions(false), log)
	if err != nil {
		log.Error("store unavailable", "error", err)
		os.Exit(1)
	}
	defer stores.Close(ctx)

	// 3. Find user
	user, err := stores.Users.FindByUsername(ctx, *username)
	if err != nil {
		log.Error("user not found", "username", *username, "error", err)
		os.Exit(1)
	}

	// 4. Hash new password
	if err := user.SetPassword(*password); err != nil {
		log.Error("failed to hash password", "error", err)
		os.Exit(1)
	}

	// 5. Update
	if err := stores.Users.Update(ctx, user); err != nil {
		log.Error("failed to update password", "error", err)
		os.Exit(1)
	}

	log.Info("password reset", "username", user.Username)
}
