// Package config centralizes the environment variables read by the binaries.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config carries every parameter the API needs.
type Config struct {
	HTTPAddress string

	// DBDriver selects the relational backend: "sqlite" (default, a single
	// file next to the binary) or "postgres".
	DBDriver   string
	SQLitePath string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	TallyKeyPrefix     string
	VotedNamesKey      string
	RateLimitEnabled   bool
	RateLimitMax       int
	RateLimitWindowSec int
	RateLimitKeyPrefix string

	AutoMigrate bool

	// StoreTimeoutSec bounds every storage round-trip started by the service.
	StoreTimeoutSec int

	// AdminToken gates the destructive endpoints and the admin page. Empty
	// disables the gate (local use only).
	AdminToken string
}

func Load() (Config, error) {
	// Defaults favour running on the cafeteria laptop; env vars override for
	// anything fancier.
	cfg := Config{
		HTTPAddress:        getEnv("HTTP_ADDRESS", ":3001"),
		DBDriver:           getEnv("DB_DRIVER", "sqlite"),
		SQLitePath:         getEnv("SQLITE_PATH", "votes.db"),
		PostgresHost:       getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:       getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:       getEnv("POSTGRES_USER", "mcw"),
		PostgresPassword:   getEnv("POSTGRES_PASSWORD", "mcw"),
		PostgresDB:         getEnv("POSTGRES_DB", "mcw_votes"),
		PostgresSSLMode:    getEnv("POSTGRES_SSLMODE", "disable"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		TallyKeyPrefix:     getEnv("REDIS_TALLY_PREFIX", "tally"),
		VotedNamesKey:      getEnv("REDIS_VOTED_NAMES_KEY", "voted_names"),
		RateLimitEnabled:   getEnv("RATE_LIMIT_ENABLED", "false") == "true",
		RateLimitMax:       getEnvAsInt("RATE_LIMIT_MAX", 30),
		RateLimitWindowSec: getEnvAsInt("RATE_LIMIT_WINDOW", 60),
		RateLimitKeyPrefix: getEnv("RATE_LIMIT_PREFIX", "ratelimit"),
		AutoMigrate:        getEnvAsBool("DB_AUTO_MIGRATE", true),
		StoreTimeoutSec:    getEnvAsInt("STORE_TIMEOUT_SECONDS", 5),
		AdminToken:         os.Getenv("ADMIN_TOKEN"),
	}

	switch cfg.DBDriver {
	case "sqlite", "postgres":
	default:
		return Config{}, fmt.Errorf("config: unknown DB_DRIVER %q", cfg.DBDriver)
	}

	dbStr := getEnv("REDIS_DB", "0")
	dbInt, err := strconv.Atoi(dbStr)
	if err != nil {
		return Config{}, fmt.Errorf("config: invalid REDIS_DB: %w", err)
	}
	cfg.RedisDB = dbInt

	return cfg, nil
}

func (c Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.PostgresUser,
		c.PostgresPassword,
		c.PostgresHost,
		c.PostgresPort,
		c.PostgresDB,
		c.PostgresSSLMode,
	)
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvAsInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func getEnvAsBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	switch value {
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return true
	}
}
