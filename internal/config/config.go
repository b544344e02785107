// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/jomolabs/jomo/internal/modules/settings"
)

// Config holds application configuration
type Config struct {
	DataDir      string // Base directory for the database (always absolute)
	RubricPath   string // Optional path to a YAML rubric override
	GeminiAPIKey string // Google Gemini API key for the advisor
	GeminiModel  string // Gemini model name
	LogLevel     string
	Port         int
	DevMode      bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Determine data directory with fallback logic:
	// 1. Check JOMO_DATA_DIR environment variable
	// 2. If not set, default to ./data
	// 3. Always resolve to absolute path and ensure it exists
	dataDir := getEnv("JOMO_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:      absDataDir,
		RubricPath:   getEnv("JOMO_RUBRIC_PATH", ""),
		GeminiAPIKey: getEnv("GOOGLE_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Port:         getEnvAsInt("PORT", 8000),
		DevMode:      getEnvAsBool("DEV_MODE", false),
	}

	return cfg, nil
}

// UpdateFromSettings updates configuration from the settings database.
// This should be called after the database is initialized.
// Settings DB values take precedence over environment variables, which
// allows rotating the Gemini API key via the UI without a restart.
func (c *Config) UpdateFromSettings(settingsRepo *settings.Repository) error {
	apiKey, err := settingsRepo.Get("gemini_api_key")
	if err != nil {
		return fmt.Errorf("failed to get gemini_api_key from settings: %w", err)
	}
	// Only use the settings DB value if it's not empty,
	// otherwise keep the env var value (if any) as fallback
	if apiKey != nil && *apiKey != "" {
		c.GeminiAPIKey = *apiKey
	}

	model, err := settingsRepo.Get("gemini_model")
	if err != nil {
		return fmt.Errorf("failed to get gemini_model from settings: %w", err)
	}
	if model != nil && *model != "" {
		c.GeminiModel = *model
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
