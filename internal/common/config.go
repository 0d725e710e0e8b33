package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Compare CompareConfig
	Export  ExportConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr               string
	MaxUploadSizeBytes int64
	ShutdownTimeout    time.Duration
	RunTTL             time.Duration
	Workers            int
	QueueSize          int
	CompareTimeout     time.Duration
	RateLimitPerSec    float64
	RateLimitBurst     int
}

// CompareConfig holds extraction and reconciliation configuration
type CompareConfig struct {
	ProfilePath string // optional layout profile JSON; empty = built-in default
}

// ExportConfig holds report formatting configuration
type ExportConfig struct {
	CurrencySymbol string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:               getEnv("HTTP_ADDR", ":8080"),
			MaxUploadSizeBytes: getEnvAsInt64("MAX_UPLOAD_SIZE_BYTES", 20<<20),
			ShutdownTimeout:    getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
			RunTTL:             getEnvAsDuration("RUN_TTL", 30*time.Minute),
			Workers:            getEnvAsInt("COMPARE_WORKERS", 4),
			QueueSize:          getEnvAsInt("COMPARE_QUEUE_SIZE", 64),
			CompareTimeout:     getEnvAsDuration("COMPARE_TIMEOUT", 2*time.Minute),
			RateLimitPerSec:    getEnvAsFloat64("RATE_LIMIT_PER_SEC", 10),
			RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 30),
		},
		Compare: CompareConfig{
			ProfilePath: getEnv("LAYOUT_PROFILE", ""),
		},
		Export: ExportConfig{
			CurrencySymbol: getEnv("CURRENCY_SYMBOL", "₹"),
		},
	}
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Server.MaxUploadSizeBytes <= 0 {
		return NewAppError("CONFIG_ERROR", "MAX_UPLOAD_SIZE_BYTES must be positive", ErrInvalidInput)
	}
	if c.Server.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "COMPARE_WORKERS must be positive", ErrInvalidInput)
	}
	return nil
}

// Helper functions for environment variable parsing
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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
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
