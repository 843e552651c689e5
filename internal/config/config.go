package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	DatabaseURL    string
	DBMaxOpenConns int
	DBMaxIdleConns int
	DBConnLifetime time.Duration

	RedisURL      string
	RedisRequired bool

	JWTSecret       string
	JWTAccessExpiry time.Duration

	CORSOrigins string

	ResendAPIKey string
	FromEmail    string
	Domain       string

	NotificationFetchLimit int
	DeleteConfirmTTL       time.Duration
	BoardIdleTTL           time.Duration
	UnreadCountCacheTTL    time.Duration
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", ""),

		DatabaseURL:    getEnv("DATABASE_URL", ""),
		DBMaxOpenConns: getIntEnv("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getIntEnv("DB_MAX_IDLE_CONNS", 5),
		DBConnLifetime: getDurationEnv("DB_CONN_LIFETIME", time.Hour),

		RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379"),
		RedisRequired: getBoolEnv("REDIS_REQUIRED", false),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTAccessExpiry: getDurationEnv("JWT_ACCESS_EXPIRY", 15*time.Minute),

		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),

		ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		FromEmail:    getEnv("FROM_EMAIL", "noreply@example.com"),
		Domain:       getEnv("DOMAIN", "localhost:3000"),

		NotificationFetchLimit: getIntEnv("NOTIFICATION_FETCH_LIMIT", 100),
		DeleteConfirmTTL:       getDurationEnv("DELETE_CONFIRM_TTL", 5*time.Minute),
		BoardIdleTTL:           getDurationEnv("BOARD_IDLE_TTL", 30*time.Minute),
		UnreadCountCacheTTL:    getDurationEnv("UNREAD_COUNT_CACHE_TTL", 30*time.Second),
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
