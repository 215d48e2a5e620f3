package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the portal
type Config struct {
	// HTTP listener configuration
	HTTP HTTPConfig

	// Backend API configuration
	Backend BackendConfig

	// Browser session configuration
	Session SessionConfig

	// Logging Configuration
	Logging LoggingConfig
}

// HTTPConfig holds the portal listener configuration
type HTTPConfig struct {
	Addr           string
	AllowedOrigins []string
}

// BackendConfig holds the external authentication backend configuration
type BackendConfig struct {
	URL          string        // Backend origin, e.g. http://localhost:8080
	BasePath     string        // API root relative to the origin
	Timeout      time.Duration // Blanket request timeout
	ProxyEnabled bool          // Expose BasePath on the portal as a reverse proxy
}

// APIBaseURL returns the backend origin joined with the API root
func (b BackendConfig) APIBaseURL() string {
	return strings.TrimRight(b.URL, "/") + "/" + strings.Trim(b.BasePath, "/")
}

// SessionConfig holds browser session configuration
type SessionConfig struct {
	CookieName         string
	CookieSecure       bool
	IdleTimeout        time.Duration
	SweepSchedule      string        // Cron spec for idle session eviction
	RevalidateInterval time.Duration // 0 disables server-side revalidation
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	timeout, err := getEnvDuration("API_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	idleTimeout, err := getEnvDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute)
	if err != nil {
		return nil, err
	}

	revalidate, err := getEnvDuration("SESSION_REVALIDATE_INTERVAL", 0)
	if err != nil {
		return nil, err
	}

	proxyEnabled, err := getEnvBool("API_PROXY_ENABLED", true)
	if err != nil {
		return nil, err
	}

	cookieSecure, err := getEnvBool("COOKIE_SECURE", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTP: HTTPConfig{
			Addr:           getEnv("LISTEN_ADDR", ":3000"),
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		},
		Backend: BackendConfig{
			URL:          getEnv("BACKEND_URL", "http://localhost:8080"),
			BasePath:     getEnv("API_BASE_PATH", "/api"),
			Timeout:      timeout,
			ProxyEnabled: proxyEnabled,
		},
		Session: SessionConfig{
			CookieName:         getEnv("SESSION_COOKIE_NAME", "lifecycle_session"),
			CookieSecure:       cookieSecure,
			IdleTimeout:        idleTimeout,
			SweepSchedule:      getEnv("SESSION_SWEEP_SCHEDULE", "@every 5m"),
			RevalidateInterval: revalidate,
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.Backend.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("BACKEND_URL must be an absolute URL, got %q", c.Backend.URL)
	}
	if !strings.HasPrefix(c.Backend.BasePath, "/") {
		return fmt.Errorf("API_BASE_PATH must start with '/', got %q", c.Backend.BasePath)
	}
	if c.Backend.ProxyEnabled && strings.Trim(c.Backend.BasePath, "/") == "" {
		return fmt.Errorf("API_BASE_PATH must not be '/' while API_PROXY_ENABLED is set")
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be > 0")
	}
	if c.Session.CookieName == "" {
		return fmt.Errorf("SESSION_COOKIE_NAME must not be empty")
	}
	if c.Session.IdleTimeout <= 0 {
		return fmt.Errorf("SESSION_IDLE_TIMEOUT must be > 0")
	}
	if c.Session.RevalidateInterval < 0 {
		return fmt.Errorf("SESSION_REVALIDATE_INTERVAL must be >= 0")
	}
	return nil
}

func getEnv(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	return val
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, val, err)
	}
	return d, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, val, err)
	}
	return b, nil
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
