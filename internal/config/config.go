package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration, loaded once from the
// environment at process start.
type Config struct {
	// Server
	Port string

	// Database
	DBPath string

	// Logging
	Env string
}

var appConfig *Config

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Port:   getEnv("PORT", "8080"),
		DBPath: getEnv("BUDGETWISE_DB_PATH", "budgetwise.db"),
		Env:    getEnv("BUDGETWISE_ENV", "development"),
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration, loading it on first use.
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
