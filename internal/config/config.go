package config

import (
	"os"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Market  MarketConfig
	Trading TradingConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port  string
	Env   string
	Debug bool
}

// MarketConfig holds price simulation parameters.
type MarketConfig struct {
	// Volatility is the standard deviation of the per-refresh price step.
	Volatility float64
}

// TradingConfig holds paper-trading account parameters.
type TradingConfig struct {
	// InitialBalance is the virtual cash every new account starts with.
	InitialBalance float64
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:  getEnv("PORT", "8080"),
			Env:   getEnv("ENV", "development"),
			Debug: getEnv("DEBUG", "") == "true",
		},
		Market: MarketConfig{
			Volatility: getEnvFloat("PRICE_VOLATILITY", 0.02),
		},
		Trading: TradingConfig{
			InitialBalance: getEnvFloat("INITIAL_BALANCE", 100000),
		},
	}
}

// getEnv retrieves an environment variable with a fallback default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable with a fallback default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
