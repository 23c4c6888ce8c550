package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseFile string // Optional: path to SQLite database file (default: ./slate.db)

	PingInterval         time.Duration // Heartbeat ping cadence (default: 30s)
	PongTimeout          time.Duration // Evict after this long without a pong (default: 90s)
	QRTokenTTL           time.Duration // Pairing token lifetime (default: 60s)
	StatsInterval        time.Duration // System stats push cadence (default: 1s)
	HousekeepingInterval time.Duration // Expired QR token sweep cadence (default: 1m)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8000)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		DatabaseFile: getEnvOrDefault("SLATE_DATABASE_FILE", "slate.db"),

		PingInterval:         getEnvSecondsOrDefault("SLATE_PING_INTERVAL_SECONDS", 30*time.Second),
		PongTimeout:          getEnvSecondsOrDefault("SLATE_PONG_TIMEOUT_SECONDS", 90*time.Second),
		QRTokenTTL:           getEnvSecondsOrDefault("SLATE_QR_TTL_SECONDS", 60*time.Second),
		StatsInterval:        getEnvDurationOrDefault("SLATE_STATS_INTERVAL", time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("SLATE_HOUSEKEEPING_INTERVAL", time.Minute),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8000),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
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

// getEnvSecondsOrDefault reads a whole-seconds value, the unit the protocol
// has always used for its timing knobs.
func getEnvSecondsOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
