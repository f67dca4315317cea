// Package config loads all runtime configuration from environment variables.
// A .env file in the working directory is applied first when present.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the HR portal.
type Config struct {
	HTTP   HTTPConfig
	DB     DBConfig
	Log    LogConfig
	JWT    JWTConfig
	CORS   CORSConfig
	SLA    SLAConfig
	Upload UploadConfig
	Worker WorkerConfig
	OTel   OTelConfig
	Seed   SeedConfig
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int
}

// DBConfig holds database connection configuration.
type DBConfig struct {
	Driver   string // "sqlite" (default) or "postgres"
	DSN      string // required when Driver == "postgres"
	File     string // SQLite database file path (default: "hrportal.db")
	MaxConns int    // Postgres only
}

// LogConfig controls structured logging output.
type LogConfig struct {
	Level  string
	Format string
}

// JWTConfig holds JSON Web Token signing and expiry settings.
type JWTConfig struct {
	Secret     string //nolint:gosec // intentional: holds JWT signing secret loaded from env
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// CORSConfig holds the cross-origin allow-list, parsed and validated at
// startup rather than re-split from the raw env string per request.
type CORSConfig struct {
	AllowedOrigins []string
	AllowAll       bool
}

// AllowsOrigin reports whether the given Origin header value is allow-listed.
func (c CORSConfig) AllowsOrigin(origin string) bool {
	if origin == "" {
		return false
	}
	for _, o := range c.AllowedOrigins {
		if o == origin {
			return true
		}
	}
	return false
}

// SLAConfig holds feedback and vendor SLA thresholds.
type SLAConfig struct {
	UrgentHours     int // URGENT feedback stuck in SUBMITTED breaches after this
	UnderReviewDays int // UNDER_REVIEW feedback goes stale after this
	VendorWarnDays  int // warn this many days before a vendor due date
	SweepInterval   time.Duration
}

// UploadConfig holds file upload limits and storage location.
type UploadConfig struct {
	Dir          string
	MaxSizeBytes int64
}

// WorkerConfig holds background worker settings.
type WorkerConfig struct {
	Concurrency int
}

// OTelConfig holds OpenTelemetry exporter settings.
type OTelConfig struct {
	OTLPEndpoint string
}

// SeedConfig holds demo-data bootstrap settings.
type SeedConfig struct {
	Demo          bool
	AdminEmail    string
	AdminPassword string
}

// Load reads configuration from environment variables, applies defaults,
// and returns an error if any required field is absent.
func Load() (*Config, error) {
	// Best effort: absence of a .env file is not an error.
	_ = godotenv.Load()

	cfg := &Config{}

	// HTTP
	cfg.HTTP.Port = envInt("HTTP_PORT", 8080)

	// DB
	cfg.DB.Driver = envStr("DB_DRIVER", "sqlite")
	cfg.DB.File = envStr("DB_FILE", "hrportal.db")
	cfg.DB.DSN = os.Getenv("DB_DSN")
	if cfg.DB.Driver == "postgres" && cfg.DB.DSN == "" {
		return nil, errors.New("DB_DSN is required when DB_DRIVER=postgres")
	}
	cfg.DB.MaxConns = envInt("DB_MAX_CONNS", 25)

	// Log
	cfg.Log.Level = envStr("LOG_LEVEL", "info")
	cfg.Log.Format = envStr("LOG_FORMAT", "json")

	// JWT (required)
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	if cfg.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	var err error
	cfg.JWT.AccessTTL, err = envDuration("JWT_ACCESS_TTL", 30*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("JWT_ACCESS_TTL: %w", err)
	}
	cfg.JWT.RefreshTTL, err = envDuration("JWT_REFRESH_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("JWT_REFRESH_TTL: %w", err)
	}

	// CORS
	for _, o := range strings.Split(envStr("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000"), ",") {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if o == "*" {
			cfg.CORS.AllowAll = true
			continue
		}
		cfg.CORS.AllowedOrigins = append(cfg.CORS.AllowedOrigins, o)
	}
	if !cfg.CORS.AllowAll && len(cfg.CORS.AllowedOrigins) == 0 {
		return nil, errors.New("CORS_ORIGINS must list at least one origin or '*'")
	}

	// SLA
	cfg.SLA.UrgentHours = envInt("URGENT_SLA_HOURS", 12)
	cfg.SLA.UnderReviewDays = envInt("UNDER_REVIEW_SLA_DAYS", 3)
	cfg.SLA.VendorWarnDays = envInt("VENDOR_WARN_DAYS", 5)
	cfg.SLA.SweepInterval, err = envDuration("VENDOR_SLA_SWEEP_INTERVAL", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("VENDOR_SLA_SWEEP_INTERVAL: %w", err)
	}

	// Upload
	cfg.Upload.Dir = envStr("UPLOAD_DIR", "uploads")
	cfg.Upload.MaxSizeBytes = int64(envInt("UPLOAD_MAX_SIZE_MB", 10)) * 1024 * 1024

	// Worker
	cfg.Worker.Concurrency = envInt("WORKER_CONCURRENCY", 10)

	// OTel
	cfg.OTel.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")

	// Seed
	cfg.Seed.Demo = envBool("SEED_DEMO_DATA", false)
	cfg.Seed.AdminEmail = envStr("SEED_ADMIN_EMAIL", "admin@hrportal.local")
	cfg.Seed.AdminPassword = os.Getenv("SEED_ADMIN_PASSWORD")

	return cfg, nil
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "true" || v == "1"
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", v, err)
	}
	return d, nil
}
