package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"resource-booking-backend/config"
	"resource-booking-backend/internal/api"
	"resource-booking-backend/internal/auth"
	"resource-booking-backend/internal/db"
	"resource-booking-backend/internal/notification"
	"resource-booking-backend/internal/realtime"
	"resource-booking-backend/internal/service"
	"resource-booking-backend/internal/store"
)

func main() {
	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("app", "bookingd")
	slog.SetDefault(logger)

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("failed to load configuration", "path", configPath, "error", err)
		os.Exit(1)
	}
	logger.Info("configuration loaded", "path", configPath)

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	logger.Info("database initialized", "driver", cfg.Database.Driver)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	hub := realtime.NewHub(cfg.Server.AllowedOrigins, logger)

	var mailer notification.Mailer = notification.LogMailer{Logger: logger}
	if cfg.Mail.Enabled {
		mailer = notification.NewSMTPMailer(cfg.Mail)
	}

	var webpushOptions *webpush.Options
	var push *notification.PushChannel
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		push = notification.NewPushChannel(appStore, webpushOptions)
	} else {
		logger.Warn("VAPID keys are not configured; web push is disabled")
	}

	pool := notification.NewWorkerPool(notification.Options{
		Workers:   cfg.Notification.WorkerPoolSize,
		QueueSize: cfg.Notification.QueueSize,
		Group:     cfg.Notification.BroadcastGroup,
		Location:  cfg.Server.Location,
		Policy: notification.Policy{
			EmailMaintenance:     cfg.Notification.EmailMaintenance,
			BroadcastMaintenance: cfg.Notification.BroadcastMaintenance,
		},
	}, mailer, hub, push, logger)
	pool.Start(ctx)

	issuer := auth.NewIssuer(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL, nil)
	accounts := service.NewAccountService(appStore, issuer, nil, logger)
	handler := api.NewHandler(api.Deps{
		Accounts:      accounts,
		Resources:     service.NewResourceService(appStore, logger),
		Reservations:  service.NewReservationService(appStore, pool, cfg.Server.Location, nil, logger),
		Invites:       service.NewInviteService(appStore, logger),
		Subscriptions: appStore,
		Hub:           hub,
		WebPush:       webpushOptions,
		Location:      cfg.Server.Location,
		Group:         cfg.Notification.BroadcastGroup,
		Logger:        logger,
	})

	// Initialize router
	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(handler, accounts, api.RouterOptions{
		RateLimit: rate.Limit(cfg.Server.RateLimitPerSec),
		Burst:     cfg.Server.RateLimitBurst,
		CacheTTL:  cfg.Server.CacheTTL,
		Logger:    logger,
	})
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("HTTP server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server ListenAndServe", "error", err)
			os.Exit(1)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Info("shutdown signal received, stopping services")

	// Create a deadline to wait for.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server Shutdown", "error", err)
	}

	cancel()
	pool.Wait()
	logger.Info("server gracefully stopped")
}
