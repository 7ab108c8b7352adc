package configs

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Queue      QueueConfig
	Scheduler  SchedulerConfig
	Auth       AuthConfig
	Settlement SettlementConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// QueueConfig holds message broker configuration.
// An empty URL means the in-process settlement fallback is used.
type QueueConfig struct {
	URL             string
	SettlementQueue string
}

// SchedulerConfig holds cron schedules
type SchedulerConfig struct {
	SIPCron string
}

// AuthConfig holds the shared secret used to verify tokens minted by the
// external identity provider. Empty disables the auth middleware.
type AuthConfig struct {
	JWTSecret string
}

// SettlementConfig holds withdrawal settlement tuning
type SettlementConfig struct {
	Delay time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("GO_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Queue: QueueConfig{
			URL:             getEnv("AMQP_URL", ""),
			SettlementQueue: getEnv("SETTLEMENT_QUEUE", "withdrawal_settlements"),
		},
		Scheduler: SchedulerConfig{
			// Daily SIP sweep at 09:00 IST by default
			SIPCron: getEnv("SIP_CRON", "0 9 * * *"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("AUTH_JWT_SECRET", ""),
		},
		Settlement: SettlementConfig{
			Delay: getEnvDuration("SETTLEMENT_DELAY", 2*time.Second),
		},
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration parses a duration env var, accepting Go duration strings or
// plain seconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
