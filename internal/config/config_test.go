package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"APP_PORT", "POSTGRES_DSN", "REDIS_DB", "STORAGE_DRIVER", "S3_BUCKET", "BLOB_SWEEP_INTERVAL_SECONDS", "BLOB_SWEEP_LEASE_SECONDS", "LOG_LEVEL", "TRACING_EXPORTER", "TRACING_SAMPLE_RATIO"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Empty(t, cfg.Postgres.DSN)
	assert.True(t, cfg.Postgres.RunMigrations)
	assert.Equal(t, "migrations", cfg.Postgres.MigrationsDir)
	assert.Equal(t, StorageDriverLocal, cfg.Storage.Driver)
	assert.Equal(t, 10*time.Second, cfg.Storage.Timeout())
	assert.Equal(t, "mail:queue", cfg.Notification.QueueKey)
	assert.Equal(t, 5*time.Minute, cfg.Sweeper.Interval())
	assert.Equal(t, 5*time.Minute, cfg.Sweeper.Lease())
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "none", cfg.Tracing.Exporter)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRatio)
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("APP_PORT", "3000")
	t.Setenv("STORAGE_DRIVER", "s3")
	t.Setenv("S3_BUCKET", "attachments")
	t.Setenv("S3_REGION", "eu-west-1")
	t.Setenv("STORAGE_DELETE_CONCURRENCY", "8")
	t.Setenv("BLOB_SWEEP_MAX_ATTEMPTS", "3")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.App.Port)
	assert.Equal(t, "attachments", cfg.Storage.S3Bucket)
	assert.Equal(t, "eu-west-1", cfg.Storage.S3Region)
	assert.Equal(t, 8, cfg.Storage.DeleteConcurrency)
	assert.Equal(t, 3, cfg.Sweeper.MaxAttempts)
	assert.False(t, cfg.Postgres.RunMigrations)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Run("bad redis db", func(t *testing.T) {
		t.Setenv("REDIS_DB", "one")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("s3 without bucket", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "s3")
		t.Setenv("S3_BUCKET", "")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "S3_BUCKET")
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "gcs")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("unknown trace exporter", func(t *testing.T) {
		t.Setenv("TRACING_EXPORTER", "jaeger")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("sample ratio out of range", func(t *testing.T) {
		t.Setenv("TRACING_SAMPLE_RATIO", "1.5")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("unparsable int falls back", func(t *testing.T) {
		t.Setenv("BLOB_SWEEP_BATCH_SIZE", "many")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 100, cfg.Sweeper.BatchSize)
	})
}

func TestSweeperConfig_IntervalFloor(t *testing.T) {
	assert.Equal(t, time.Second, SweeperConfig{IntervalSeconds: 0}.Interval())
	assert.Zero(t, SweeperConfig{LeaseSeconds: -1}.Lease())
}
