package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr             string
	APIBaseURL       string
	APITimeout       time.Duration
	APIRateLimit     float64
	APIRateBurst     int
	LogLevel         string
	Locale           string
	Timezone         string
	TimerTick        time.Duration
	SessionTTL       time.Duration
	SessionSweep     time.Duration
	SubmitRatePerMin int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:             envOr("ADDR", ":3000"),
		APIBaseURL:       envOr("API_BASE_URL", envOr("NEXT_PUBLIC_API_URL", "http://localhost:8000")),
		APITimeout:       envDurationOr("API_TIMEOUT", 15*time.Second),
		APIRateLimit:     envFloatOr("API_RATE_LIMIT", 20),
		APIRateBurst:     envIntOr("API_RATE_BURST", 10),
		LogLevel:         envOr("LOG_LEVEL", "INFO"),
		Locale:           strings.ToLower(envOr("LOCALE", "th")),
		Timezone:         envOr("TIMEZONE", "Local"),
		TimerTick:        envDurationOr("TIMER_TICK", 250*time.Millisecond),
		SessionTTL:       envDurationOr("SESSION_TTL", 2*time.Hour),
		SessionSweep:     envDurationOr("SESSION_SWEEP_EVERY", time.Minute),
		SubmitRatePerMin: envIntOr("SUBMIT_RATE_PER_MIN", 30),
	}
}

// Validate checks every setting and reports all problems at once.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, fmt.Errorf("ADDR cannot be empty"))
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("API_BASE_URL must be an absolute http(s) URL, got %q", c.APIBaseURL))
	}
	if c.APITimeout <= 0 {
		errs = append(errs, fmt.Errorf("API_TIMEOUT must be positive, got %v", c.APITimeout))
	}
	if c.APIRateLimit <= 0 {
		errs = append(errs, fmt.Errorf("API_RATE_LIMIT must be positive, got %v", c.APIRateLimit))
	}
	if c.APIRateBurst <= 0 {
		errs = append(errs, fmt.Errorf("API_RATE_BURST must be positive, got %d", c.APIRateBurst))
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR, got %q", c.LogLevel))
	}
	switch c.Locale {
	case "th", "en":
	default:
		errs = append(errs, fmt.Errorf("LOCALE must be one of th, en, got %q", c.Locale))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("TIMEZONE: %w", err))
	}
	if c.TimerTick <= 0 {
		errs = append(errs, fmt.Errorf("TIMER_TICK must be positive, got %v", c.TimerTick))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive, got %v", c.SessionTTL))
	}
	if c.SessionSweep <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_SWEEP_EVERY must be positive, got %v", c.SessionSweep))
	}
	if c.SubmitRatePerMin <= 0 {
		errs = append(errs, fmt.Errorf("SUBMIT_RATE_PER_MIN must be positive, got %d", c.SubmitRatePerMin))
	}
	return errors.Join(errs...)
}

// Location resolves Timezone. "Local" and "" mean the host zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envFloatOr(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("invalid value for %s=%q, using default %v", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %v", key, v, def)
	}
	return def
}
