// Command seed populates Postgres with demo users, listings and applications
// and prints an admin token for trying the API.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/enosefelix/job-finder-sub000/internal/auth"
	"github.com/enosefelix/job-finder-sub000/internal/config"
	"github.com/enosefelix/job-finder-sub000/internal/observability"
	"github.com/enosefelix/job-finder-sub000/internal/persistence"
	"github.com/enosefelix/job-finder-sub000/internal/repository"
	"github.com/enosefelix/job-finder-sub000/internal/seed"
)

func main() {
	users := flag.Int("users", 10, "members to create")
	listings := flag.Int("listings", 3, "listings per member")
	applications := flag.Int("applications", 2, "applications per listing")
	seedValue := flag.Int64("seed", 0, "faker seed, 0 for random")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Postgres.DSN == "" {
		logger.Fatal("POSTGRES_DSN is required for seeding")
	}

	ctx := context.Background()
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	summary, err := seed.NewFactory(repository.NewPostgresStore(pg.PoolHandle()), seed.Options{
		Users:                  *users,
		ListingsPerUser:        *listings,
		ApplicationsPerListing: *applications,
		Seed:                   *seedValue,
	}).Run(ctx)
	if err != nil {
		logger.Fatal("seeding failed", zap.Error(err))
	}

	// Placeholder attachments give listing deletion something to clean up.
	if cfg.Storage.Driver == config.StorageDriverLocal {
		for _, key := range summary.BlobKeys {
			path := filepath.Join(cfg.Storage.LocalDir, filepath.FromSlash(key))
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				logger.Fatal("create blob dir", zap.Error(err))
			}
			if err := os.WriteFile(path, []byte("seeded attachment\n"), 0o644); err != nil {
				logger.Fatal("write blob", zap.String("key", key), zap.Error(err))
			}
		}
	}

	token, expires, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes).
		GenerateToken(summary.Admin.ID, summary.Admin.Role)
	if err != nil {
		logger.Fatal("issue admin token", zap.Error(err))
	}

	logger.Info("seed complete",
		zap.String("admin_email", summary.Admin.Email),
		zap.Int("users", len(summary.Users)),
		zap.Int("listings", len(summary.Listings)),
		zap.Int("applications", summary.Applications),
		zap.Int("blobs", len(summary.BlobKeys)),
		zap.String("admin_token", token),
		zap.Time("admin_token_expires", expires))
}
