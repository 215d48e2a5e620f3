package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.HTTP.Addr)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, "http://localhost:8080", cfg.Backend.URL)
	assert.Equal(t, "http://localhost:8080/api", cfg.Backend.APIBaseURL())
	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)
	assert.True(t, cfg.Backend.ProxyEnabled)
	assert.Equal(t, "lifecycle_session", cfg.Session.CookieName)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTimeout)
	assert.Equal(t, "@every 5m", cfg.Session.SweepSchedule)
	assert.Zero(t, cfg.Session.RevalidateInterval)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BACKEND_URL", "https://hr.example.com/")
	t.Setenv("API_BASE_PATH", "/backend/api/")
	t.Setenv("API_TIMEOUT", "5s")
	t.Setenv("API_PROXY_ENABLED", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("SESSION_REVALIDATE_INTERVAL", "1m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://hr.example.com/backend/api", cfg.Backend.APIBaseURL())
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.False(t, cfg.Backend.ProxyEnabled)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, time.Minute, cfg.Session.RevalidateInterval)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "relative backend url", key: "BACKEND_URL", val: "localhost"},
		{name: "bad timeout", key: "API_TIMEOUT", val: "soon"},
		{name: "zero timeout", key: "API_TIMEOUT", val: "0s"},
		{name: "bad bool", key: "COOKIE_SECURE", val: "maybe"},
		{name: "base path without slash", key: "API_BASE_PATH", val: "api"},
		{name: "proxy on root path", key: "API_BASE_PATH", val: "/"},
		{name: "negative revalidate", key: "SESSION_REVALIDATE_INTERVAL", val: "-1s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
