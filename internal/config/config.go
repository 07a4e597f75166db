// internal/config/config.go
package config

import (
	"fmt"
	"os"
)

// Config is the application configuration, loaded from the environment.
type Config struct {
	Port        string
	DatabaseURL string
	AMQPURL     string

	OpenAIKey   string
	OpenAIModel string

	// DefaultSenderNumber is the fallback outbound number when a campaign has
	// no number of its own provisioned.
	DefaultSenderNumber string

	Debug bool
}

// Load reads configuration from environment variables. Individual DB_* parts
// are assembled into a DSN unless DATABASE_URL is set directly.
func Load() *Config {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=disable",
			getEnv("DB_USER", "leadrail"),
			getEnv("DB_PASSWORD", "leadrail"),
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_PORT", "5432"),
			getEnv("DB_NAME", "leadrail"),
		)
	}

	return &Config{
		Port:                getEnv("PORT", "8080"),
		DatabaseURL:         dsn,
		// Empty AMQP_URL puts the server into in-process dispatch mode.
		AMQPURL:             os.Getenv("AMQP_URL"),
		OpenAIKey:           os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:         getEnv("OPENAI_MODEL", ""),
		DefaultSenderNumber: getEnv("DEFAULT_SENDER_NUMBER", ""),
		Debug:               getEnv("APP_ENV", "development") != "production",
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
