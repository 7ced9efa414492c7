// Package config loads runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the demo host needs to wire the engine
type Config struct {
	// RedisAddr is the address of the backing Redis
	RedisAddr string

	// RedisPassword is empty for local development
	RedisPassword string

	// JoinBaseURL is the page the phone opens from the QR code
	JoinBaseURL string

	// HeartbeatInterval is how often connected clients write liveness
	HeartbeatInterval time.Duration

	// DisconnectTimeout is the staleness bound for presence checks
	DisconnectTimeout time.Duration
}

// Load reads the environment, first loading .env if present
func Load() *Config {
	// Missing .env is fine; the environment may carry everything
	_ = godotenv.Load()

	return &Config{
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		JoinBaseURL:       getEnv("JOIN_BASE_URL", "http://localhost:3000/join"),
		HeartbeatInterval: getDuration("HEARTBEAT_INTERVAL", 2500*time.Millisecond),
		DisconnectTimeout: getDuration("DISCONNECT_TIMEOUT", 10*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
