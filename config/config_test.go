package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, AuthLocal, cfg.Auth.Mode)
	assert.Equal(t, StoreBolt, cfg.Store.Driver)
	assert.Equal(t, ProviderOpenAI, cfg.Completion.Provider)
	assert.Equal(t, 8*time.Second, cfg.Editor.AutosaveInterval.Duration)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
}

func TestLoadConfig_File(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	path := writeConfig(t, `
[server]
port = 8080

[auth]
mode = "hosted"
token_ttl = "2h"

[hosted]
url = "https://project.example.co"
anon_key = "anon"

[store]
driver = "hosted"

[completion]
provider = "gemini"
model = "gemini-2.0-flash"

[editor]
autosave_interval = "5s"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, AuthHosted, cfg.Auth.Mode)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL.Duration)
	assert.Equal(t, StoreHosted, cfg.Store.Driver)
	assert.Equal(t, "gemini-2.0-flash", cfg.Completion.Model)
	assert.Equal(t, 5*time.Second, cfg.Editor.AutosaveInterval.Duration)
	// untouched sections keep their defaults
	assert.Equal(t, 100, cfg.Server.RateLimit)
}

func TestLoadConfig_BadTOML(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "[server\nport = "))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("provider key follows provider", func(t *testing.T) {
		t.Setenv("COMPLETION_PROVIDER", "gemini")
		t.Setenv("OPENAI_API_KEY", "oa-key")
		t.Setenv("GEMINI_API_KEY", "gm-key")

		cfg := Default()
		cfg.applyEnvOverrides()
		assert.Equal(t, ProviderGemini, cfg.Completion.Provider)
		assert.Equal(t, "gm-key", cfg.Completion.APIKey)
	})

	t.Run("port", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		cfg := Default()
		cfg.applyEnvOverrides()
		assert.Equal(t, 9090, cfg.Server.Port)
	})

	t.Run("invalid port is ignored", func(t *testing.T) {
		t.Setenv("PORT", "http")
		cfg := Default()
		cfg.applyEnvOverrides()
		assert.Equal(t, 3000, cfg.Server.Port)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"local with secret", func(c *Config) { c.Auth.JWTSecret = "x" }, true},
		{"local without secret", func(c *Config) {}, false},
		{"hosted store needs hosted auth", func(c *Config) {
			c.Auth.JWTSecret = "x"
			c.Store.Driver = StoreHosted
		}, false},
		{"hosted auth needs url", func(c *Config) { c.Auth.Mode = AuthHosted }, false},
		{"hosted auth with bolt store", func(c *Config) {
			c.Auth.Mode = AuthHosted
			c.Hosted.URL = "https://p.example.co"
			c.Hosted.AnonKey = "anon"
		}, true},
		{"unknown provider", func(c *Config) {
			c.Auth.JWTSecret = "x"
			c.Completion.Provider = "llama"
		}, false},
		{"rate limits off", func(c *Config) {
			c.Auth.JWTSecret = "x"
			c.Server.RateLimit = 0
			c.Server.AIRateLimit = 0
		}, true},
		{"negative rate limit", func(c *Config) {
			c.Auth.JWTSecret = "x"
			c.Server.AIRateLimit = -1
		}, false},
		{"zero autosave", func(c *Config) {
			c.Auth.JWTSecret = "x"
			c.Editor.AutosaveInterval.Duration = 0
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
