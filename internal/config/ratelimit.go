package config

import (
	"strconv"
	"time"
)

// RateLimitConfig defines the fixed-window limiter applied to the
// auth endpoints.  When Enabled is false or no Redis client is
// available the limiter becomes a pass-through.
type RateLimitConfig struct {
	Enabled bool
	Limit   int           // requests allowed per window
	Window  time.Duration // window length
	Prefix  string        // Redis key namespace
}

// LoadRateLimitConfig reads the limiter settings from the
// environment, with defaults tuned for credential endpoints.
func LoadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled: getenv("RATE_LIMIT_ENABLED", "true") == "true",
		Limit:   envInt("RATE_LIMIT_LIMIT", 20),
		Window:  envDur("RATE_LIMIT_WINDOW", time.Minute),
		Prefix:  getenv("RATE_LIMIT_PREFIX", "rl"),
	}
}

func envInt(key string, def int) int {
	s := getenv(key, "")
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
