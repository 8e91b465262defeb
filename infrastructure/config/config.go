package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// Graph service configuration
	GraphServiceURL     string
	GraphFetchTimeout   time.Duration
	GraphBreakerTimeout time.Duration
	GraphMaxRetries     int

	// Exploration defaults
	DefaultHopDepth int

	// Tuning file (hot reloaded)
	TuningFile string

	// Logging
	LogLevel string

	// Feature flags
	EnableMetrics bool
	EnableCORS    bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		GraphServiceURL:     getEnv("GRAPH_SERVICE_URL", "http://localhost:9090"),
		GraphFetchTimeout:   getEnvDuration("GRAPH_FETCH_TIMEOUT", 10*time.Second),
		GraphBreakerTimeout: getEnvDuration("GRAPH_BREAKER_TIMEOUT", 30*time.Second),
		GraphMaxRetries:     getEnvInt("GRAPH_MAX_RETRIES", 2),

		DefaultHopDepth: getEnvInt("DEFAULT_HOP_DEPTH", 1),

		TuningFile: getEnv("TUNING_FILE", ""),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", true),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.GraphServiceURL == "" {
		return fmt.Errorf("GRAPH_SERVICE_URL is required")
	}
	if c.GraphFetchTimeout <= 0 {
		return fmt.Errorf("GRAPH_FETCH_TIMEOUT must be positive")
	}
	if c.DefaultHopDepth < 1 {
		return fmt.Errorf("DEFAULT_HOP_DEPTH must be at least 1")
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
