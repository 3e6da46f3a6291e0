package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

type Config struct {
	// Server
	Port         string
	Env          string
	MaxBodyBytes int64

	// Frontend
	FrontendURL string

	// Gemini AI
	GeminiAPIKey          string
	GeminiModel           string
	GeminiTemperature     float64
	GeminiMaxOutputTokens int
	GeminiConcurrentReqs  int
	GeminiTimeout         time.Duration

	// Message log
	StorageType        string
	MessageLogCapacity int
	DatabaseURL        string
	MigrationsPath     string

	// Redis
	RedisURL        string
	ExplainCacheTTL time.Duration

	// Tracing
	OTelEnabled      bool
	OTelExporter     string
	OTelOTLPEndpoint string
	OTelSampleRatio  float64
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                  getEnvOrDefault("PORT", "8080"),
		Env:                   getEnvOrDefault("ENV", "development"),
		MaxBodyBytes:          int64(getEnvAsIntOrDefault("MAX_BODY_BYTES", 8<<20)),
		FrontendURL:           getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
		GeminiAPIKey:          mustGetEnv("GEMINI_API_KEY"),
		GeminiModel:           getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-pro"),
		GeminiTemperature:     getEnvAsFloatOrDefault("GEMINI_TEMPERATURE", 0.7),
		GeminiMaxOutputTokens: getEnvAsIntOrDefault("GEMINI_MAX_OUTPUT_TOKENS", 8192),
		GeminiConcurrentReqs:  getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		GeminiTimeout:         time.Duration(getEnvAsIntOrDefault("GEMINI_TIMEOUT_SECONDS", 60)) * time.Second,
		StorageType:           strings.ToLower(getEnvOrDefault("STORAGE_TYPE", StorageMemory)),
		MessageLogCapacity:    getEnvAsIntOrDefault("MESSAGE_LOG_CAPACITY", 500),
		DatabaseURL:           getEnvOrDefault("DATABASE_URL", ""),
		MigrationsPath:        getEnvOrDefault("MIGRATIONS_PATH", "./migrations"),
		RedisURL:              getEnvOrDefault("REDIS_URL", ""),
		ExplainCacheTTL:       time.Duration(getEnvAsIntOrDefault("EXPLAIN_CACHE_TTL_MINUTES", 1440)) * time.Minute,
		OTelEnabled:           getEnvAsBoolOrDefault("OTEL_ENABLED", false),
		OTelExporter:          strings.ToLower(getEnvOrDefault("OTEL_EXPORTER", "stdout")),
		OTelOTLPEndpoint:      getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTelSampleRatio:       getEnvAsFloatOrDefault("OTEL_SAMPLE_RATIO", 1.0),
	}

	return cfg
}

// Validate checks combinations that single-key defaults cannot catch.
func (c *Config) Validate() error {
	switch c.StorageType {
	case StorageMemory:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORAGE_TYPE=%s", c.StorageType)
		}
	case StorageRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when STORAGE_TYPE=%s", c.StorageType)
		}
	default:
		return fmt.Errorf("unsupported STORAGE_TYPE %q", c.StorageType)
	}

	if c.MessageLogCapacity < 0 {
		return fmt.Errorf("MESSAGE_LOG_CAPACITY must not be negative")
	}
	if c.GeminiConcurrentReqs < 1 {
		return fmt.Errorf("GEMINI_CONCURRENT_REQUESTS must be at least 1")
	}
	if c.GeminiTimeout <= 0 {
		return fmt.Errorf("GEMINI_TIMEOUT_SECONDS must be positive")
	}
	if c.OTelEnabled && c.OTelExporter != "stdout" && c.OTelExporter != "otlp" {
		return fmt.Errorf("unsupported OTEL_EXPORTER %q", c.OTelExporter)
	}
	if c.OTelSampleRatio < 0 || c.OTelSampleRatio > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATIO must be between 0 and 1")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}
