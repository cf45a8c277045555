package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "courtslot/docs"

	"courtslot/internal/availability"
	"courtslot/internal/booking"
	"courtslot/internal/config"
	"courtslot/internal/conflict"
	"courtslot/internal/db"
	"courtslot/internal/logger"
	"courtslot/internal/payment"
	"courtslot/internal/resource"
	"courtslot/internal/schedule"
	"courtslot/internal/server"

	"github.com/redis/go-redis/v9"
)

// @title CourtSlot API
// @version 1.0
// @description Time-slot reservation API for courts and coach calendars.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()
	logger.Info("Starting CourtSlot application")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if cfg.PaymentWebhookSecret == "" {
		logger.Error("PAYMENT_WEBHOOK_SECRET is not set; gateway callbacks will be rejected")
	}

	logger.Info("Connecting to database...")
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, "migrations"); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	cache := availability.NewCache(rdb, cfg.AvailabilityCacheTTL)

	resourceRepo := resource.NewRepository(database)
	resourceSvc := resource.NewService(resourceRepo)

	scheduleRepo := schedule.NewRepository(database)
	scheduleSvc := schedule.NewService(scheduleRepo)

	bookingRepo := booking.NewRepository(database)
	guard := conflict.NewGuard()
	bookingSvc := booking.NewService(bookingRepo, resourceRepo, scheduleSvc, guard, cache, cfg.PaymentDeadline)
	defer bookingSvc.Close()

	availabilitySvc := availability.NewService(resourceRepo, scheduleSvc, bookingRepo, cache)

	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := bookingSvc.Start(startCtx); err != nil {
		startCancel()
		logger.Fatalf("Failed to restore booking state: %v", err)
	}
	startCancel()

	srv := server.New(cfg, server.Dependencies{
		DB:           database,
		Redis:        rdb,
		Resources:    resource.NewHandler(resourceSvc),
		Schedules:    schedule.NewHandler(scheduleSvc),
		Availability: availability.NewHandler(availabilitySvc),
		Bookings:     booking.NewHandler(bookingSvc),
		Payments:     payment.NewHandler(bookingSvc, cfg.PaymentWebhookSecret),
	})

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(cfg.Port); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}
