package config

import (
	"os"

	"github.com/joho/godotenv"
)

const (
	WelcomeMessage      = "Welcome to the Data Query Bot!"
	WaitingMessage      = "Querying Genie for results..."
	SwitchingMessage    = "switch to @"
	TokenExpiredMessage = "Oops, your token seems to have expired, please complete login process again."
)

// Config holds the server settings, read from the environment.
type Config struct {
	Port        string
	Env         string
	RedisURL    string
	CORSOrigins string
	TrustProxy  bool // take the client IP from X-Forwarded-For / X-Real-IP

	DatabricksHost         string
	DatabricksClientID     string
	DatabricksClientSecret string
	GenieSpaceID           string
	AuthMethod             string // "service_principal" ignores tokens sent by clients
}

// Load reads configuration from environment variables, loading .env first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:                   getEnv("PORT", "8080"),
		Env:                    getEnv("ENV", "development"),
		RedisURL:               os.Getenv("REDIS_URL"),
		CORSOrigins:            getEnv("CORS_ORIGINS", "*"),
		TrustProxy:             getEnv("TRUST_PROXY", "false") == "true",
		DatabricksHost:         os.Getenv("DATABRICKS_HOST"),
		DatabricksClientID:     os.Getenv("DATABRICKS_CLIENT_ID"),
		DatabricksClientSecret: os.Getenv("DATABRICKS_CLIENT_SECRET"),
		GenieSpaceID:           os.Getenv("GENIE_SPACE_ID"),
		AuthMethod:             getEnv("AUTH_METHOD", "oauth"),
	}
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerURL is where the chat client finds the server.
func ServerURL() string {
	_ = godotenv.Load()
	return getEnv("GENIE_SERVER_URL", "http://localhost:8080")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
