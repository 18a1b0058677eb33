package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds environment-driven settings for the trading backend.
type Config struct {
	Port      string
	DBPath    string
	JWTSecret string
	Debug     bool

	// SweepInterval is how often the background processor retries
	// pending limit orders.
	SweepInterval time.Duration

	// TickInterval is how often the market ticker perturbs instrument
	// prices and broadcasts them.
	TickInterval time.Duration
}

// Load reads environment variables (optionally via .env) into Config.
func Load() *Config {
	// Ignore error so the app still starts when .env is missing.
	_ = godotenv.Load()

	return &Config{
		Port:          getEnv("PORT", "8080"),
		DBPath:        getEnv("DB_PATH", "trading.db"),
		JWTSecret:     getEnv("JWT_SECRET", "broker-secret-key"),
		Debug:         getEnv("DEBUG", "false") == "true",
		SweepInterval: getDuration("SWEEP_INTERVAL", 30*time.Second),
		TickInterval:  getDuration("TICK_INTERVAL", 5*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
