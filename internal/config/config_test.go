package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GEMINI_MODEL", "")
	t.Setenv("CANDIDATE_NAME", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.HealthPort)
	assert.True(t, cfg.Transports.HTTP.Enabled)
	assert.Equal(t, 8080, cfg.Transports.HTTP.Port)
	assert.Equal(t, 30, cfg.Transports.HTTP.RateLimit)
	assert.False(t, cfg.Transports.HTTP.TrustProxyHeaders)
	assert.False(t, cfg.Transports.GRPC.Enabled)
	assert.Empty(t, cfg.Provider.APIKey)
	assert.Equal(t, "gemini-2.5-flash", cfg.Provider.Model)
	assert.Equal(t, time.Duration(0), cfg.Provider.Timeout)
	assert.Equal(t, "Venu", cfg.Persona.Name)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadLegacyEnvNames(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("GEMINI_MODEL", "gemini-2.0-flash")
	t.Setenv("CANDIDATE_NAME", "Ada")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Provider.APIKey)
	assert.Equal(t, "gemini-2.0-flash", cfg.Provider.Model)
	assert.Equal(t, "Ada", cfg.Persona.Name)
}

func TestLoadFileWithEnvRef(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("MY_PROVIDER_KEY", "from-ref")

	path := filepath.Join(dir, "voicebot.yaml")
	yaml := []byte(`
provider:
  api_key: "${MY_PROVIDER_KEY}"
  timeout: 20s
persona:
  name: Grace
transports:
  http:
    port: 9090
    rate_limit: 0
`)
	require.NoError(t, os.WriteFile(path, yaml, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-ref", cfg.Provider.APIKey)
	assert.Equal(t, 20*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, "Grace", cfg.Persona.Name)
	assert.Equal(t, 9090, cfg.Transports.HTTP.Port)
	assert.Equal(t, 0, cfg.Transports.HTTP.RateLimit)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("CANDIDATE_NAME", "")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("VOICEBOT_LOGGING_LEVEL=debug\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("VOICEBOT_LOGGING_LEVEL") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadRejectsNegativeRateLimit(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("VOICEBOT_TRANSPORTS_HTTP_RATE_LIMIT", "-1")

	_, err := Load("")
	assert.ErrorContains(t, err, "rate_limit")
}

func TestResolveEnvRef(t *testing.T) {
	t.Setenv("SOME_KEY", "value")
	assert.Equal(t, "value", resolveEnvRef("${SOME_KEY}"))
	assert.Equal(t, "", resolveEnvRef("${UNSET_KEY_FOR_TEST}"))
	assert.Equal(t, "literal", resolveEnvRef("literal"))
}
