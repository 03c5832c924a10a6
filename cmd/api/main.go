package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/enosefelix/job-finder-sub000/internal/api/dto"
	httptransport "github.com/enosefelix/job-finder-sub000/internal/api/http"
	"github.com/enosefelix/job-finder-sub000/internal/api/http/handlers"
	"github.com/enosefelix/job-finder-sub000/internal/auth"
	"github.com/enosefelix/job-finder-sub000/internal/config"
	"github.com/enosefelix/job-finder-sub000/internal/events"
	"github.com/enosefelix/job-finder-sub000/internal/mailqueue"
	"github.com/enosefelix/job-finder-sub000/internal/observability"
	"github.com/enosefelix/job-finder-sub000/internal/persistence"
	"github.com/enosefelix/job-finder-sub000/internal/repository"
	"github.com/enosefelix/job-finder-sub000/internal/service"
	"github.com/enosefelix/job-finder-sub000/internal/storage"
	"github.com/enosefelix/job-finder-sub000/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.App, cfg.Tracing)
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracer shutdown", zap.Error(err))
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)
	prom := fiberprometheus.NewWithRegistry(registry, cfg.App.Name, "fiber", "", nil)

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	var store repository.Store
	if pool := pg.PoolHandle(); pool != nil {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pool, cfg.Postgres.MigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		store = repository.NewPostgresStore(pool)
	} else {
		logger.Warn("POSTGRES_DSN not set, using in-memory store")
		store = repository.NewMemoryStore()
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()
	queue := mailqueue.New(redis.Client, cfg.Notification.QueueKey)

	blobs, err := newBlobStorage(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal("failed to init blob storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher(logger)
	listingService := service.NewListingService(service.ListingDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	deletionService := service.NewDeletionService(service.DeletionDependencies{
		Store:           store,
		Blobs:           blobs,
		Dispatcher:      dispatcher,
		Metrics:         metrics,
		Logger:          logger,
		BlobConcurrency: cfg.Storage.DeleteConcurrency,
		ClaimLease:      cfg.Sweeper.Lease(),
	})
	userService := service.NewUserService(service.UserDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	sweeper := service.NewBlobSweeper(service.BlobSweeperDependencies{
		Store:       store,
		Blobs:       blobs,
		Metrics:     metrics,
		Logger:      logger,
		BatchSize:   cfg.Sweeper.BatchSize,
		MaxAttempts: cfg.Sweeper.MaxAttempts,
		Concurrency: cfg.Storage.DeleteConcurrency,
		ClaimLease:  cfg.Sweeper.Lease(),
	})

	notificationService := service.NewNotificationService(dispatcher, queue, store.Repos().Users, logger, cfg.Notification)
	workersDone := worker.Start(ctx, worker.Workers{
		Notifications: notificationService,
		Sweeper:       sweeper,
		SweepInterval: cfg.Sweeper.Interval(),
		Logger:        logger,
	})

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	validate := dto.NewValidator()

	deps := map[string]handlers.Pinger{"redis": redis}
	if pg.PoolHandle() != nil {
		deps["postgres"] = pg
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, prom, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps),
		Listings:       handlers.NewListingsHandler(listingService, deletionService, validate),
		Admin:          handlers.NewAdminHandler(userService, sweeper, validate),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, store.Repos().Users),
		Prometheus:     prom,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	cancel()
	<-workersDone
}

func newBlobStorage(ctx context.Context, cfg config.StorageConfig) (storage.BlobStorage, error) {
	if cfg.Driver == config.StorageDriverS3 {
		return storage.NewS3Storage(ctx, storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
			Timeout:         cfg.Timeout(),
		})
	}
	return storage.NewLocalStorage(cfg.LocalDir)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
