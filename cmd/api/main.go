package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pesokrava/catalog/internal/config"
	"github.com/pesokrava/catalog/internal/delivery/events"
	httpDelivery "github.com/pesokrava/catalog/internal/delivery/http"
	"github.com/pesokrava/catalog/internal/delivery/http/handler"
	"github.com/pesokrava/catalog/internal/pkg/database"
	"github.com/pesokrava/catalog/internal/pkg/logger"
	postgresRepo "github.com/pesokrava/catalog/internal/repository/postgres"
	redisRepo "github.com/pesokrava/catalog/internal/repository/redis"
	"github.com/pesokrava/catalog/internal/usecase/catalog"

	_ "github.com/pesokrava/catalog/docs"
)

// @title Product Catalog API
// @version 1.0
// @description A product catalog service with per-product view logging and a view report endpoint.

// @contact.name API Support
// @contact.url http://github.com/pesokrava/catalog

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @tag.name Products
// @tag.description Product management and view reporting endpoints

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Env)
	appLogger.Info("Starting Product Catalog API...")

	appLogger.Info("Connecting to PostgreSQL...")
	db, err := database.WaitForDB(cfg, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL successfully")

	if err := database.RunMigrations(db); err != nil {
		appLogger.Fatal("Failed to run migrations", err)
	}

	appLogger.Info("Connecting to Redis...")
	redisClient, err := database.WaitForRedis(cfg, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", err)
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis successfully")

	appLogger.Info("Connecting to NATS...")
	publisher, err := events.NewPublisher(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create NATS publisher", err)
	}
	defer publisher.Close()

	productRepo := postgresRepo.NewProductRepository(db)
	viewLogRepo := redisRepo.NewViewLogRepository(redisClient, cfg.ViewLog.KeyPrefix)

	catalogService := catalog.NewService(productRepo, viewLogRepo, publisher, appLogger)
	productHandler := handler.NewProductHandler(catalogService, appLogger)

	router := httpDelivery.NewRouter(productHandler, cfg, appLogger)
	httpHandler := router.Setup()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      httpHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Infof("HTTP server listening on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("HTTP server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", err)
	}

	appLogger.Info("Server stopped gracefully")
}
