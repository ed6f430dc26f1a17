package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/marcos020499/booker/api-server/internal/database"
	"github.com/marcos020499/booker/api-server/internal/handlers"
	"github.com/marcos020499/booker/api-server/internal/router"
	"github.com/marcos020499/booker/api-server/internal/service"
	"github.com/marcos020499/booker/api-server/internal/validator"
	"github.com/marcos020499/booker/api-server/internal/websocket"
	"github.com/marcos020499/booker/shared/catalog"
	"github.com/marcos020499/booker/shared/config"
	"github.com/marcos020499/booker/shared/logger"
	"go.temporal.io/sdk/client"
	sdklog "go.temporal.io/sdk/log"
)

func main() {
	ctx := context.Background()

	cfg, loadedDotenv, err := config.Load()
	if err != nil {
		logger.New(logger.Config{Service: "api-server"}).Fatal("Invalid configuration", "error", err)
	}
	log := cfg.Logger("api-server")
	if loadedDotenv {
		log.Info("Loaded .env file")
	}

	var directory service.Directory
	if cfg.DatabaseURL != "" {
		log.Info("Connecting to database...")
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("Failed to connect to database", "error", err)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			log.Fatal("Failed to ping database", "error", err)
		}
		log.Info("Connected to database")
		directory = database.NewRepository(pool)
	} else {
		c, err := catalog.New(time.Now())
		if err != nil {
			log.Fatal("Failed to load catalog", "error", err)
		}
		log.Info("DATABASE_URL not set, serving the embedded catalog")
		directory = c
	}

	// Create Temporal client
	temporalClient, err := client.Dial(client.Options{
		HostPort:  cfg.TemporalHost,
		Namespace: cfg.TemporalNamespace,
		Logger:    sdklog.NewStructuredLogger(log.Logger),
	})
	if err != nil {
		log.Fatal("Failed to create Temporal client", "error", err)
	}
	defer temporalClient.Close()

	// Initialize services
	sessionService := service.NewSessionService(temporalClient, directory, service.Options{
		TaskQueue:     cfg.TaskQueue,
		MaxPassengers: cfg.MaxPassengers,
		IdleTimeout:   cfg.SessionIdleTimeout,
		SearchTimeout: cfg.SearchTimeout,
		ActionTimeout: cfg.ActionWaitTimeout,
	})

	hubDone := make(chan struct{})
	hub := websocket.NewHub(log)
	go hub.Run(hubDone)

	h := handlers.NewHandler(sessionService, hub, validator.NewRequestValidator(log), log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router.NewRouter(h, hub),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("API Server starting", "port", cfg.APIPort, "temporalHost", cfg.TemporalHost, "taskQueue", cfg.TaskQueue)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}
	close(hubDone)

	log.Info("Server stopped")
}
