package database

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds database configuration.
type Config struct {
	Path string
}

// NewConfig creates a new database configuration.
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// It's okay if .env doesn't exist, we'll use defaults or environment variables
	}

	return &Config{
		Path: getEnv("BUDGETWISE_DB_PATH", "budgetwise.db"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
