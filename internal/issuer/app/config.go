package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseFile    string        // Optional: path to SQLite database file (default: ./grantd.db)
	DefaultCodeTTL  time.Duration // Optional: default authorization code lifetime (default: 10m)
	SeedClientsFile string        // Optional: JSON file of clients to register at startup

	CacheEnabled   bool   // Optional: enable the Redis code cache (default: false)
	CacheAddr      string // Redis address (default: localhost:6379)
	CachePassword  string // Optional: Redis password
	CacheDB        int    // Optional: Redis database number
	CacheKeyPrefix string // Optional: key prefix for cached codes

	NotifySink    string // Notification sink (log, redis) (default: log)
	NotifyChannel string // Redis pub/sub channel for the redis sink
	NotifyBuffer  int    // Dispatcher queue depth (default: 256)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		DatabaseFile:    getEnvOrDefault("GRANTD_DATABASE_FILE", "grantd.db"),
		DefaultCodeTTL:  getEnvDurationOrDefault("GRANTD_CODE_TTL", 10*time.Minute),
		SeedClientsFile: os.Getenv("GRANTD_SEED_CLIENTS_FILE"),

		CacheEnabled:   getEnvBoolOrDefault("GRANTD_CACHE_ENABLED", false),
		CacheAddr:      getEnvOrDefault("GRANTD_CACHE_ADDR", "localhost:6379"),
		CachePassword:  os.Getenv("GRANTD_CACHE_PASSWORD"),
		CacheDB:        getEnvIntOrDefault("GRANTD_CACHE_DB", 0),
		CacheKeyPrefix: os.Getenv("GRANTD_CACHE_KEY_PREFIX"),

		NotifySink:    getEnvOrDefault("GRANTD_NOTIFY_SINK", "log"),
		NotifyChannel: os.Getenv("GRANTD_NOTIFY_CHANNEL"),
		NotifyBuffer:  getEnvIntOrDefault("GRANTD_NOTIFY_BUFFER", 256),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
