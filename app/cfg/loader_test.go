package cfg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetVersion(t *testing.T) {
	assert.NotEmpty(t, GetVersion(), "GetVersion should never return empty string")
}

func TestLoadArgs_Defaults(t *testing.T) {
	cfg, err := LoadArgs([]string{"--jwt-secret", "s3cret"})
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 60*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, "local", cfg.DefaultProvider)
	assert.Equal(t, "http://localhost:11434", cfg.OllamaURL)
	assert.Equal(t, "mistral", cfg.OllamaModel)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, 20, cfg.SearchRateLimit)
}

func TestLoadArgs_Overrides(t *testing.T) {
	cfg, err := LoadArgs([]string{
		"--jwt-secret", "s3cret",
		"--port", "8081",
		"--base-url", "https://cms.example.com/",
		"--provider-timeout", "5",
		"--default-provider", "hosted",
		"--cors-origins", "https://a.example.com, https://b.example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, "https://cms.example.com", cfg.BaseUrl)
	assert.Equal(t, 5*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, "hosted", cfg.DefaultProvider)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
}

func TestLoadArgs_EnvironmentVariables(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("OLLAMA_MODEL", "llama3")

	cfg, err := LoadArgs(nil)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, "llama3", cfg.OllamaModel)
}

func TestLoadArgs_RejectsNonPositiveTimeout(t *testing.T) {
	_, err := LoadArgs([]string{"--jwt-secret", "x", "--provider-timeout", "0"})
	assert.ErrorContains(t, err, "provider timeout must be positive")
}

func TestLoadArgs_RejectsUnknownProvider(t *testing.T) {
	_, err := LoadArgs([]string{"--jwt-secret", "x", "--default-provider", "gemini"})
	assert.Error(t, err)
}
