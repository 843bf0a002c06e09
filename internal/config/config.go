package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const PROD_STRING = "prod"

// Config holds all API server configuration loaded from environment.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	HTTPAddr     string
	DBDSN        string
	JWTSecret    string
	JWTTTL       time.Duration

	StripeSecretKey     string
	StripeWebhookSecret string
	PublicOrigin        string
	DepositCents        int64
	Currency            string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	FleetCacheTTL time.Duration

	Kafka KafkaConfig

	MediaDir string

	LogLevel  string
	LogFormat string
}

// KafkaConfig is shared by the API (producer side) and the notifier worker.
type KafkaConfig struct {
	Brokers            []string
	NotificationsTopic string
	GroupID            string
}

// Enabled reports whether any broker is configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// NotifierConfig holds the settings of the notification worker.
type NotifierConfig struct {
	Kafka              KafkaConfig
	OperatorWebhookURL string
	DeliveryTimeout    time.Duration
	LogLevel           string
	LogFormat          string
}

// SeedConfig holds what cmd/seed needs: the database and token signing.
type SeedConfig struct {
	DBDSN         string
	JWTSecret     string
	JWTTTL        time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{}

	// Production origin (default: empty)
	cfg.ProdOrigins = getEnv("PROD_ORIGINS", "")

	// Application environment (default: dev)
	appEnvStr := getEnv("APP_ENV", "dev")
	cfg.IsProduction = appEnvStr == PROD_STRING

	// HTTP listen address (default: :8080)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	// Database DSN is required
	cfg.DBDSN = os.Getenv("DB_DSN")
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}

	// JWT secret is required to verify tokens from the identity provider
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	// Lifetime of tokens issued by this service (seed tooling only)
	var err error
	cfg.JWTTTL, err = getEnvAsDuration("JWT_TTL", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}

	// Webhook secret is always required: the endpoint is public.
	cfg.StripeWebhookSecret = os.Getenv("STRIPE_WEBHOOK_SECRET")
	if cfg.StripeWebhookSecret == "" {
		return nil, fmt.Errorf("STRIPE_WEBHOOK_SECRET is required")
	}

	cfg.StripeSecretKey = os.Getenv("STRIPE_SECRET_KEY")
	if cfg.StripeSecretKey == "" && cfg.IsProduction {
		return nil, fmt.Errorf("STRIPE_SECRET_KEY is required in production")
	}

	cfg.PublicOrigin = strings.TrimRight(getEnv("PUBLIC_ORIGIN", "http://localhost:3000"), "/")
	cfg.Currency = strings.ToLower(getEnv("RENTAL_CURRENCY", "usd"))

	deposit, err := getEnvAsInt("RENTAL_DEPOSIT_CENTS", 25000)
	if err != nil {
		return nil, fmt.Errorf("invalid RENTAL_DEPOSIT_CENTS: %w", err)
	}
	if deposit < 0 {
		return nil, fmt.Errorf("RENTAL_DEPOSIT_CENTS must not be negative")
	}
	cfg.DepositCents = int64(deposit)

	// Redis is optional; an empty address disables the fleet cache.
	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.RedisDB, err = getEnvAsInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cfg.FleetCacheTTL, err = getEnvAsDuration("FLEET_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid FLEET_CACHE_TTL: %w", err)
	}

	cfg.Kafka = loadKafka()

	// Uploaded vehicle photos
	cfg.MediaDir = getEnv("MEDIA_DIR", "data/media")

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

// LoadNotifier loads the configuration of the notification worker.
func LoadNotifier() (*NotifierConfig, error) {
	loadDotEnv()

	cfg := &NotifierConfig{
		Kafka:              loadKafka(),
		OperatorWebhookURL: getEnv("OPERATOR_WEBHOOK_URL", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
	}
	if !cfg.Kafka.Enabled() {
		return nil, fmt.Errorf("KAFKA_BROKERS is required")
	}

	var err error
	cfg.DeliveryTimeout, err = getEnvAsDuration("DELIVERY_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid DELIVERY_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// LoadSeed loads the configuration of the seed tool.
func LoadSeed() (*SeedConfig, error) {
	loadDotEnv()

	cfg := &SeedConfig{
		DBDSN:         os.Getenv("DB_DSN"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
	}
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}

	var err error
	cfg.RedisDB, err = getEnvAsInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cfg.JWTTTL, err = getEnvAsDuration("JWT_TTL", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	return cfg, nil
}

func loadDotEnv() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("failed to load .env file: %v", err)
	}
}

func loadKafka() KafkaConfig {
	return KafkaConfig{
		Brokers:            getEnvAsList("KAFKA_BROKERS"),
		NotificationsTopic: getEnv("NOTIFICATIONS_TOPIC", "operator-notifications"),
		GroupID:            getEnv("KAFKA_GROUP_ID", "operator-notifier"),
	}
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer.
// It returns the default value if the variable is not set.
// It returns an error if the variable is set but is not a valid integer.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}

	return val, nil
}

// getEnvAsDuration parses values like "15m" or "1h".
func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid duration: %w", key, valStr, err)
	}
	return val, nil
}

// getEnvAsList splits a comma separated variable, dropping empty items.
func getEnvAsList(key string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, ""), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
