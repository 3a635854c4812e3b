// Command invitegen mints a single-use staff invite code and prints it.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"
	_ "time/tzdata"

	"resource-booking-backend/config"
	"resource-booking-backend/internal/db"
	"resource-booking-backend/internal/service"
	"resource-booking-backend/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil)).With("app", "invitegen")

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	code, err := run(configPath, logger)
	if err != nil {
		logger.Error("failed to mint invite code", "error", err)
		os.Exit(1)
	}
	fmt.Println(code)
}

func run(configPath string, logger *slog.Logger) (string, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return "", fmt.Errorf("load configuration from %s: %w", configPath, err)
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	invite, err := service.NewInviteService(store.NewGormStore(gormDB), logger).MintCode(ctx)
	if err != nil {
		return "", err
	}
	return invite.Code, nil
}
