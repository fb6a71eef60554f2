package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPPort string

	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	MigrationsDir    string

	RedisAddr  string
	SessionTTL time.Duration

	KafkaBrokers []string
	OrderTopic   string

	SessionCartKey    string
	SessionAddressKey string
	SessionPersonKey  string

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	RateLimit       int
	RateLimitWindow time.Duration

	CheckoutDecrementStock bool
}

func Load() *Config {
	return &Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnvInt("POSTGRES_PORT", 5432),
		PostgresUser:     getEnv("POSTGRES_USER", "storefront"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "storefront"),
		PostgresDB:       getEnv("POSTGRES_DB", "storefront"),
		MigrationsDir:    getEnv("MIGRATIONS_DIR", "./migrations"),

		RedisAddr:  getEnv("REDIS_ADDR", "localhost:6379"),
		SessionTTL: getEnvDuration("SESSION_TTL", 24*time.Hour),

		KafkaBrokers: []string{getEnv("KAFKA_BROKER", "localhost:9092")},
		OrderTopic:   getEnv("ORDER_TOPIC", "order-events"),

		SessionCartKey:    getEnv("SESSION_CART_KEY", "SESSION_CART"),
		SessionAddressKey: getEnv("SESSION_ADDRESS_KEY", "SESSION_ADDRESS"),
		SessionPersonKey:  getEnv("SESSION_PERSON_KEY", "SESSION_PERSON"),

		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		RateLimit:       getEnvInt("RATE_LIMIT", 100),
		RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),

		CheckoutDecrementStock: getEnvBool("CHECKOUT_DECREMENT_STOCK", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
