// Package config loads storefront settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/example/ec-storefront/internal/checkout"
)

var ErrInvalidConfig = errors.New("invalid configuration")

const minSecretLength = 32

type Config struct {
	HTTPAddr string

	// Empty DatabaseURL keeps everything in memory.
	DatabaseURL string
	// Empty KafkaBrokers disables event publishing.
	KafkaBrokers []string
	KafkaTopic   string

	JWTSecret            string
	SessionTTL           time.Duration
	SessionIdleTimeout   time.Duration
	SessionSweepSchedule string
	SecureCookie         bool

	AdminEmail  string
	StockPolicy checkout.StockPolicy
	SeedCatalog bool

	RateLimitRPS   float64
	RateLimitBurst int

	LogLevel  string
	LogFormat string

	SMTPHost string
	SMTPPort string
	SMTPFrom string
}

// Load reads the environment and validates the result
func Load() (*Config, error) {
	var errs []error

	policy, err := checkout.ParseStockPolicy(getEnv("STOCK_POLICY", string(checkout.StockIgnore)))
	if err != nil {
		errs = append(errs, err)
	}

	cfg := &Config{
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		KafkaBrokers:         getList("KAFKA_BROKERS"),
		KafkaTopic:           getEnv("KAFKA_TOPIC", "storefront-events"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		SessionTTL:           getDuration("SESSION_TTL", 7*24*time.Hour, &errs),
		SessionIdleTimeout:   getDuration("SESSION_IDLE_TIMEOUT", 2*time.Hour, &errs),
		SessionSweepSchedule: getEnv("SESSION_SWEEP_SCHEDULE", "@every 5m"),
		SecureCookie:         getBool("SECURE_COOKIE", false, &errs),
		AdminEmail:           strings.ToLower(getEnv("ADMIN_EMAIL", "admin@example.com")),
		StockPolicy:          policy,
		SeedCatalog:          getBool("SEED_CATALOG", true, &errs),
		RateLimitRPS:         getFloat("RATE_LIMIT_RPS", 10, &errs),
		RateLimitBurst:       getInt("RATE_LIMIT_BURST", 20, &errs),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "text"),
		SMTPHost:             getEnv("SMTP_HOST", "localhost"),
		SMTPPort:             getEnv("SMTP_PORT", "1025"),
		SMTPFrom:             getEnv("SMTP_FROM", "noreply@example.com"),
	}

	if cfg.JWTSecret == "" {
		errs = append(errs, fmt.Errorf("%w: JWT_SECRET is required", ErrInvalidConfig))
	} else if len(cfg.JWTSecret) < minSecretLength {
		errs = append(errs, fmt.Errorf("%w: JWT_SECRET must be at least %d characters long", ErrInvalidConfig, minSecretLength))
	}
	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst <= 0 {
		errs = append(errs, fmt.Errorf("%w: rate limit must be positive", ErrInvalidConfig))
	}
	if cfg.SessionIdleTimeout <= 0 || cfg.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("%w: session durations must be positive", ErrInvalidConfig))
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("%w: LOG_FORMAT must be text or json", ErrInvalidConfig))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadNotifier reads the subset the email notifier needs. Kafka brokers are
// required since the notifier has nothing else to do.
func LoadNotifier() (*Config, error) {
	cfg := &Config{
		KafkaBrokers: getList("KAFKA_BROKERS"),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "storefront-events"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "text"),
		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
	}
	if !cfg.EventsEnabled() {
		return nil, fmt.Errorf("%w: KAFKA_BROKERS is required", ErrInvalidConfig)
	}
	return cfg, nil
}

// EventsEnabled reports whether events go to Kafka
func (c *Config) EventsEnabled() bool { return len(c.KafkaBrokers) > 0 }

// PersistenceEnabled reports whether Postgres backs the stores
func (c *Config) PersistenceEnabled() bool { return c.DatabaseURL != "" }

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err))
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int, errs *[]error) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err))
		return defaultValue
	}
	return n
}

func getFloat(key string, defaultValue float64, errs *[]error) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err))
		return defaultValue
	}
	return f
}

func getBool(key string, defaultValue bool, errs *[]error) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err))
		return defaultValue
	}
	return b
}
