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

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Addr                      string
	DatabaseURL               string
	StoreDriver               string
	JWTSecret                 string
	DataEncryptionKey         string
	TokenTTL                  time.Duration
	Environment               string
	Timezone                  string
	AreasFile                 string
	Areas                     []Area
	AvailabilityHorizonDays   int
	AvailabilityRetentionDays int
	RetentionInterval         time.Duration
	StandardLeaveHours        float64
	SeedOwnerEmail            string
	SeedOwnerPassword         string
	SeedOwnerName             string
	EmailFrom                 string
	EmailEnabled              bool
	SMTPHost                  string
	SMTPPort                  int
	SMTPUser                  string
	SMTPPassword              string
	SMTPUseTLS                bool
	RunMigrations             bool
	RunSeed                   bool
	RequestTimeout            time.Duration
	MaxBodyBytes              int64
	RateLimitPerMinute        int
	MetricsEnabled            bool
}

// Load reads an optional .env file, then the environment, then the areas file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	cfg := FromEnv()
	areas, err := LoadAreas(cfg.AreasFile)
	if err != nil {
		return Config{}, err
	}
	cfg.Areas = areas
	return cfg, nil
}

func FromEnv() Config {
	return Config{
		Addr:                      getEnv("APP_ADDR", ":8080"),
		DatabaseURL:               getEnv("DATABASE_URL", ""),
		StoreDriver:               strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
		JWTSecret:                 getEnv("JWT_SECRET", ""),
		DataEncryptionKey:         getEnv("DATA_ENCRYPTION_KEY", ""),
		TokenTTL:                  getEnvDuration("TOKEN_TTL", 12*time.Hour),
		Environment:               getEnv("APP_ENV", "development"),
		Timezone:                  getEnv("TIMEZONE", "UTC"),
		AreasFile:                 getEnv("AREAS_FILE", ""),
		Areas:                     DefaultAreas(),
		AvailabilityHorizonDays:   getEnvInt("AVAILABILITY_HORIZON_DAYS", 14),
		AvailabilityRetentionDays: getEnvInt("AVAILABILITY_RETENTION_DAYS", 90),
		RetentionInterval:         getEnvDuration("RETENTION_INTERVAL", 24*time.Hour),
		StandardLeaveHours:        getEnvFloat("STANDARD_LEAVE_HOURS", 8),
		SeedOwnerEmail:            getEnv("SEED_OWNER_EMAIL", "owner@example.com"),
		SeedOwnerPassword:         getEnv("SEED_OWNER_PASSWORD", ""),
		SeedOwnerName:             getEnv("SEED_OWNER_NAME", "Store Owner"),
		EmailFrom:                 getEnv("EMAIL_FROM", "no-reply@example.com"),
		EmailEnabled:              getEnvBool("EMAIL_ENABLED", false),
		SMTPHost:                  getEnv("SMTP_HOST", ""),
		SMTPPort:                  getEnvInt("SMTP_PORT", 587),
		SMTPUser:                  getEnv("SMTP_USER", ""),
		SMTPPassword:              getEnv("SMTP_PASSWORD", ""),
		SMTPUseTLS:                getEnvBool("SMTP_USE_TLS", true),
		RunMigrations:             getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:                   getEnvBool("RUN_SEED", true),
		RequestTimeout:            getEnvDuration("REQUEST_TIMEOUT", 15*time.Second),
		MaxBodyBytes:              int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		RateLimitPerMinute:        getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		MetricsEnabled:            getEnvBool("METRICS_ENABLED", true),
	}
}

func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER is postgres")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q", StoreDriverPostgres, StoreDriverMemory)
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedOwnerPassword) == "" {
			return fmt.Errorf("SEED_OWNER_PASSWORD must be set or RUN_SEED disabled in production")
		}
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("TIMEZONE is invalid: %w", err)
	}
	if c.AvailabilityHorizonDays <= 0 {
		return fmt.Errorf("AVAILABILITY_HORIZON_DAYS must be positive")
	}
	if c.AvailabilityRetentionDays <= 0 {
		return fmt.Errorf("AVAILABILITY_RETENTION_DAYS must be positive")
	}
	if c.StandardLeaveHours <= 0 {
		return fmt.Errorf("STANDARD_LEAVE_HOURS must be positive")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.EmailEnabled && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST must be set when EMAIL_ENABLED is true")
	}
	if len(c.Areas) == 0 {
		return fmt.Errorf("at least one area must be configured")
	}
	return nil
}
