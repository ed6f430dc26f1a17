package main

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/marcos020499/booker/shared/catalog"
	"github.com/marcos020499/booker/shared/config"
	"github.com/marcos020499/booker/shared/flow"
	"github.com/marcos020499/booker/shared/logger"
	"github.com/marcos020499/booker/temporal-worker/internal/activities"
	"github.com/marcos020499/booker/temporal-worker/internal/repository"
	"github.com/marcos020499/booker/temporal-worker/internal/workflows"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	sdklog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
)

func main() {
	ctx := context.Background()

	cfg, loadedDotenv, err := config.Load()
	if err != nil {
		logger.New(logger.Config{Service: "temporal-worker"}).Fatal("Invalid configuration", "error", err)
	}
	log := cfg.Logger("temporal-worker")
	if loadedDotenv {
		log.Info("Loaded .env file")
	}

	seed, err := catalog.New(time.Now())
	if err != nil {
		log.Fatal("Failed to load seed catalog", "error", err)
	}

	var source flow.FlightSource = seed
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

		repo := repository.NewRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatal("Failed to prepare schema", "error", err)
		}
		if cfg.SeedCatalog {
			if err := repo.SeedCatalog(ctx, seed.Airports(), seed.Flights()); err != nil {
				log.Fatal("Failed to seed catalog", "error", err)
			}
			log.Info("Seeded catalog", "airports", len(seed.Airports()), "flights", len(seed.Flights()))
		}
		source = repo
	} else {
		log.Info("DATABASE_URL not set, searching the embedded catalog")
	}

	log.Info("Connecting to Temporal", "host", cfg.TemporalHost, "namespace", cfg.TemporalNamespace)
	c, err := client.Dial(client.Options{
		HostPort:  cfg.TemporalHost,
		Namespace: cfg.TemporalNamespace,
		Logger:    sdklog.NewStructuredLogger(log.Logger),
	})
	if err != nil {
		log.Fatal("Failed to connect to Temporal", "error", err)
	}
	defer c.Close()
	log.Info("Connected to Temporal")

	w := worker.New(c, cfg.TaskQueue, worker.Options{})

	w.RegisterWorkflowWithOptions(workflows.BookingSessionWorkflow, workflow.RegisterOptions{Name: "BookingSessionWorkflow"})

	acts := activities.NewActivities(source, cfg.SearchLatency)
	w.RegisterActivityWithOptions(acts.SearchFlights, activity.RegisterOptions{Name: "SearchFlights"})

	log.Info("Starting Temporal worker", "taskQueue", cfg.TaskQueue, "searchLatency", cfg.SearchLatency)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatal("Worker failed", "error", err)
	}
}
