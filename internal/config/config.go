// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir           string // Base directory for the cache database (always absolute)
	Port              int
	LogLevel          string
	DevMode           bool
	ReferenceCurrency string  // Currency all values are normalized to before aggregation
	RiskFreeRatePct   float64 // Default annual risk-free rate in percent
	ExchangeRateURL   string  // Base URL of the exchange rate API
	YahooChartURL     string  // Base URL of the Yahoo Finance chart API
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("VANTAGE_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:           absDataDir,
		Port:              getEnvAsInt("VANTAGE_PORT", 8080),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		DevMode:           getEnvAsBool("DEV_MODE", false),
		ReferenceCurrency: getEnv("REFERENCE_CURRENCY", "USD"),
		RiskFreeRatePct:   getEnvAsFloat("RISK_FREE_RATE_PCT", 3.0),
		ExchangeRateURL:   getEnv("EXCHANGE_RATE_URL", "https://api.exchangerate-api.com/v4/latest"),
		YahooChartURL:     getEnv("YAHOO_CHART_URL", "https://query1.finance.yahoo.com/v8/finance/chart"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.ReferenceCurrency == "" {
		return fmt.Errorf("reference currency must not be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	return nil
}

// Helper functions
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
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
