package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers.
const (
	StorageDriverLocal = "local"
	StorageDriverS3    = "s3"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Storage      StorageConfig
	Notification NotificationConfig
	Sweeper      SweeperConfig
	Tracing      TracingConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines bearer token parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
}

// StorageConfig selects and configures the blob store holding resumes and
// cover letters.
type StorageConfig struct {
	Driver            string
	LocalDir          string
	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	AccessKeyID       string
	SecretAccessKey   string
	TimeoutSeconds    int
	DeleteConcurrency int
}

// NotificationConfig holds mail queue settings.
type NotificationConfig struct {
	EmailFrom string
	QueueKey  string
}

// SweeperConfig controls the pending blob deletion sweep.
type SweeperConfig struct {
	IntervalSeconds int
	BatchSize       int
	MaxAttempts     int
	LeaseSeconds    int
}

// TracingConfig selects the span exporter.
type TracingConfig struct {
	Exporter     string
	OTLPEndpoint string
	Insecure     bool
	SampleRatio  float64
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "job-finder"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
		},
		Storage: StorageConfig{
			Driver:            getEnv("STORAGE_DRIVER", StorageDriverLocal),
			LocalDir:          getEnv("STORAGE_LOCAL_DIR", "uploads"),
			S3Bucket:          os.Getenv("S3_BUCKET"),
			S3Region:          getEnv("S3_REGION", "us-east-1"),
			S3Endpoint:        os.Getenv("S3_ENDPOINT"),
			AccessKeyID:       os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey:   os.Getenv("AWS_SECRET_ACCESS_KEY"),
			TimeoutSeconds:    getEnvAsInt("STORAGE_TIMEOUT_SECONDS", 10),
			DeleteConcurrency: getEnvAsInt("STORAGE_DELETE_CONCURRENCY", 4),
		},
		Notification: NotificationConfig{
			EmailFrom: getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			QueueKey:  getEnv("MAIL_QUEUE_KEY", "mail:queue"),
		},
		Sweeper: SweeperConfig{
			IntervalSeconds: getEnvAsInt("BLOB_SWEEP_INTERVAL_SECONDS", 300),
			BatchSize:       getEnvAsInt("BLOB_SWEEP_BATCH_SIZE", 100),
			MaxAttempts:     getEnvAsInt("BLOB_SWEEP_MAX_ATTEMPTS", 10),
			LeaseSeconds:    getEnvAsInt("BLOB_SWEEP_LEASE_SECONDS", 300),
		},
		Tracing: TracingConfig{
			Exporter:     getEnv("TRACING_EXPORTER", "none"),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			Insecure:     getEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", true),
			SampleRatio:  getEnvAsFloat("TRACING_SAMPLE_RATIO", 1),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverLocal:
	case StorageDriverS3:
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when STORAGE_DRIVER=%s", StorageDriverS3)
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	switch c.Tracing.Exporter {
	case "none", "stdout", "otlp":
	default:
		return fmt.Errorf("unknown TRACING_EXPORTER %q", c.Tracing.Exporter)
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("TRACING_SAMPLE_RATIO must be within [0,1], got %v", c.Tracing.SampleRatio)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout bounds a single call into blob storage.
func (s StorageConfig) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// Interval returns the sweep period, never below one second.
func (s SweeperConfig) Interval() time.Duration {
	if s.IntervalSeconds <= 0 {
		return time.Second
	}
	return time.Duration(s.IntervalSeconds) * time.Second
}

// Lease is how long a purge holds its outbox rows. Zero leaves the choice to
// the services.
func (s SweeperConfig) Lease() time.Duration {
	if s.LeaseSeconds <= 0 {
		return 0
	}
	return time.Duration(s.LeaseSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
