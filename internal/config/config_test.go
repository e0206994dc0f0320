package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("PORT", "")
	t.Setenv("BITEBOT_MODEL", "")
	t.Setenv("BITEBOT_DEBUG", "")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("BITEBOT_SECURE_COOKIES", "")

	cfg := Load()
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.False(t, cfg.Debug)
	assert.False(t, cfg.SecureCookies)
	assert.False(t, cfg.Ready())
	assert.Empty(t, cfg.SessionSecret)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("PORT", "8080")
	t.Setenv("BITEBOT_MODEL", "gpt-4o-mini")
	t.Setenv("BITEBOT_DEBUG", "true")
	t.Setenv("SESSION_SECRET", "super-secret")
	t.Setenv("RESTAURANT_API_URL", "https://api.example.com/v1")
	t.Setenv("BITEBOT_SECURE_COOKIES", "true")

	cfg := Load()
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.True(t, cfg.Debug)
	assert.True(t, cfg.SecureCookies)
	assert.True(t, cfg.Ready())
	assert.Equal(t, []byte("super-secret"), cfg.SessionSecret)
	assert.Equal(t, "https://api.example.com/v1", cfg.RestaurantAPIURL)
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := &Config{Port: -1, Model: "gpt-4o"}
	require.Error(t, cfg.Validate())

	cfg = &Config{Port: 70000, Model: "gpt-4o"}
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsEmptyModel(t *testing.T) {
	cfg := &Config{Port: 5000}
	require.Error(t, cfg.Validate())
}

func TestInvalidPortEnvFallsBack(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	cfg := Load()
	assert.Equal(t, 5000, cfg.Port)
}
