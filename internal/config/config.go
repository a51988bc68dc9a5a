package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	App       AppConfig
	Provider  ProviderConfig
	Cache     CacheConfig
	Database  DatabaseConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Host      string
	Port      int
	StaticDir string
}

type AppConfig struct {
	Name        string
	Environment string
	LogLevel    string
}

// ProviderConfig configures the Google Cloud Translation v3 client
type ProviderConfig struct {
	// Path to a service account JSON key
	CredentialsFile string
	// Falls back to the project_id of the credentials when empty
	ProjectID           string
	Location            string
	Endpoint            string
	DisplayLanguageCode string
	RequestTimeout      time.Duration
}

// CacheConfig configures the optional Redis cache. An empty URL disables it.
type CacheConfig struct {
	RedisURL string
	// Bounds every cache call, including connection acquisition
	ConnectTimeout time.Duration
	// Zero keeps entries without expiry
	TTL time.Duration
}

// DatabaseConfig configures the optional stats store. An empty DSN disables it.
type DatabaseConfig struct {
	DSN string
}

// RateLimitConfig configures per-client limits on /translate. Zero rps disables it.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Host:      getEnv("SERVER_HOST", "0.0.0.0"),
			Port:      getEnvAsInt("SERVER_PORT", 8080),
			StaticDir: getEnv("STATIC_DIR", "./dist"),
		},
		App: AppConfig{
			Name:        getEnv("APP_NAME", "cloud-translate-service"),
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Provider: ProviderConfig{
			CredentialsFile:     getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
			ProjectID:           getEnv("GOOGLE_PROJECT_ID", ""),
			Location:            getEnv("GOOGLE_LOCATION", "global"),
			Endpoint:            getEnv("GOOGLE_TRANSLATE_ENDPOINT", "https://translation.googleapis.com"),
			DisplayLanguageCode: getEnv("DISPLAY_LANGUAGE_CODE", "en"),
			RequestTimeout:      getEnvAsDuration("PROVIDER_TIMEOUT", 0),
		},
		Cache: CacheConfig{
			RedisURL:       getEnv("REDIS_URL", ""),
			ConnectTimeout: getEnvAsDuration("CACHE_CONNECT_TIMEOUT", 100*time.Millisecond),
			TTL:            getEnvAsDuration("CACHE_TTL", 0),
		},
		Database: DatabaseConfig{
			DSN: getEnv("DATABASE_URL", ""),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsFloat("RATE_LIMIT_RPS", 0),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 20),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
