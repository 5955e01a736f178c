// Package config provides configuration management for beanrender.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	Ledger LedgerConfig
	Debug  bool
	AppEnv string
}

// LedgerConfig represents ledger output configuration.
type LedgerConfig struct {
	Root   string
	DBPath string
}

// Load loads configuration from environment variables.
// It automatically loads .env file from the current directory if available.
// You can optionally specify a custom .env file path.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Try to load .env from current directory (ignore error if not found)
		_ = godotenv.Load()
	}

	return &Config{
		Ledger: LedgerConfig{
			Root:   getEnvOrDefault("BEANCOUNT_ROOT", "./beancount"),
			DBPath: os.Getenv("BEANCOUNT_DB_PATH"),
		},
		Debug:  os.Getenv("DEBUG") == "true",
		AppEnv: getEnvOrDefault("APP_ENV", "development"),
	}, nil
}

// Validate validates the configuration.
// Each argument is a path such as []string{"ledger", "root"} naming a required field.
func (c *Config) Validate(required ...[]string) error {
	var missing []string

	for _, path := range required {
		if len(path) < 2 {
			continue
		}

		var value string
		switch path[0] {
		case "ledger":
			switch path[1] {
			case "root":
				value = c.Ledger.Root
			case "dbPath":
				value = c.Ledger.DBPath
			}
		case "app":
			if path[1] == "env" {
				value = c.AppEnv
			}
		}

		if value == "" {
			missing = append(missing, strings.Join(path, "."))
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v\nPlease check your .env file or environment variables", missing)
	}

	return nil
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
