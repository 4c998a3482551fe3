// Package config loads application configuration from environment variables.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	BackendMinio  = "minio"
	BackendMemory = "memory"
)

// Config holds all runtime configuration for the service.
type Config struct {
	Port      string
	AppEnv    string
	LogLevel  string
	LogFormat string

	// DatabaseURL is optional. When set, ingestions are recorded and uploads are
	// serialised across replicas with a Postgres advisory lock.
	DatabaseURL string

	JWTSecret   string
	RequireAuth bool

	// Object storage (S3-compatible: MinIO locally and in production)
	StorageBackend   string
	StorageEndpoint  string
	StorageAccessKey string
	StorageSecretKey string
	StorageBucket    string
	StorageUseSSL    bool
	StorageTimeout   time.Duration

	// Canonical raw dataset layout inside the bucket.
	RawFolder     string
	ArchiveFolder string
	RawFileName   string

	PipelineURL     string
	PipelineTimeout time.Duration

	LockTimeout    time.Duration
	MaxUploadBytes int64
}

// Load reads configuration from a .env file (if present) and environment variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	return &Config{
		Port:      getEnv("PORT", "8080"),
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret:   getEnv("JWT_SECRET", "change_me_in_production"),
		RequireAuth: getBool("REQUIRE_AUTH", true),

		StorageBackend:   strings.ToLower(getEnv("STORAGE_BACKEND", BackendMinio)),
		StorageEndpoint:  getEnv("STORAGE_ENDPOINT", "localhost:9000"),
		StorageAccessKey: getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
		StorageSecretKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
		StorageBucket:    getEnv("STORAGE_BUCKET", "geotechnical-data"),
		StorageUseSSL:    getBool("STORAGE_USE_SSL", false),
		StorageTimeout:   getDuration("STORAGE_TIMEOUT", 15*time.Second),

		RawFolder:     getEnv("RAW_FOLDER", "raw"),
		ArchiveFolder: getEnv("ARCHIVE_FOLDER", "old_raw_files"),
		RawFileName:   getEnv("RAW_FILE_NAME", "Raw_Data.xlsx"),

		PipelineURL:     getEnv("PYTHON_SERVICE_URL", "http://localhost:8000"),
		PipelineTimeout: getDuration("PIPELINE_TIMEOUT", 30*time.Second),

		LockTimeout:    getDuration("LOCK_TIMEOUT", 30*time.Second),
		MaxUploadBytes: getInt64("MAX_UPLOAD_BYTES", 50<<20),
	}
}

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config: invalid boolean, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("config: invalid duration, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}

func getInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		slog.Warn("config: invalid integer, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}
