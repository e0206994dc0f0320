// Package config loads service configuration from the environment, with
// .env support for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"bitebot/internal/utils"
)

const (
	defaultPort       = 5000
	defaultModel      = "gpt-4o"
	defaultAPITimeout = 120 * time.Second
)

// Config holds everything the server needs at startup.
type Config struct {
	// OpenAIAPIKey authenticates against the model provider. When empty
	// the server still starts but refuses chat turns.
	OpenAIAPIKey string
	// OpenAIBaseURL overrides the provider endpoint for compatible APIs.
	OpenAIBaseURL string
	// Model is the model identifier.
	Model string

	// Port is the HTTP listen port.
	Port int
	// Debug enables debug logging and gin debug mode.
	Debug bool

	// SessionSecret signs the session cookie. Empty means a random
	// per-process secret.
	SessionSecret []byte
	// SessionDir enables file-backed sessions when non-empty.
	SessionDir string
	// SecureCookies marks the session cookie Secure. Leave off for
	// plain-HTTP deployments or the browser drops the cookie.
	SecureCookies bool

	// RestaurantAPIURL is the base URL of the restaurant platform.
	RestaurantAPIURL string

	// MetricsEnabled toggles the Prometheus exporter.
	MetricsEnabled bool
}

// Load reads configuration from .env (if present) and the environment.
func Load() *Config {
	logger := utils.NewComponentLogger("Config")

	// Real env vars win over .env entries; godotenv never overwrites.
	if err := godotenv.Load(); err == nil {
		logger.Debug("Loaded configuration from .env")
	}

	cfg := &Config{
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:    os.Getenv("OPENAI_BASE_URL"),
		Model:            envOr("BITEBOT_MODEL", defaultModel),
		Port:             envInt("PORT", defaultPort),
		Debug:            envBool("BITEBOT_DEBUG"),
		SessionDir:       os.Getenv("BITEBOT_SESSION_DIR"),
		SecureCookies:    envBool("BITEBOT_SECURE_COOKIES"),
		RestaurantAPIURL: os.Getenv("RESTAURANT_API_URL"),
		MetricsEnabled:   !envBool("BITEBOT_METRICS_DISABLED"),
	}

	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		cfg.SessionSecret = []byte(secret)
	} else {
		logger.Warn("SESSION_SECRET not set; using a random secret, sessions will not survive restarts")
	}

	if cfg.OpenAIAPIKey == "" {
		logger.Error("OPENAI_API_KEY not set; chat will be unavailable until it is configured")
	}
	if cfg.RestaurantAPIURL == "" {
		logger.Warn("RESTAURANT_API_URL not set; restaurant tools will fail")
	}

	return cfg
}

// Validate reports configuration problems that should stop startup outright.
// A missing API key is deliberately not one of them; the server serves
// /health in that state.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Model == "" {
		return fmt.Errorf("model must not be empty")
	}
	return nil
}

// Ready reports whether chat turns can be served.
func (c *Config) Ready() bool {
	return c.OpenAIAPIKey != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}
