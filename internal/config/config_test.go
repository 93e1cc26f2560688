package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pactscan/pactscan/internal/config"
)

// setEnv is a helper that sets environment variables for a test and restores them after.
func setEnv(t *testing.T, env map[string]string) {
	t.Helper()
	for k, v := range env {
		t.Setenv(k, v)
	}
}

// validEnv returns the minimum set of valid environment variables.
func validEnv() map[string]string {
	return map[string]string{
		"ANTHROPIC_API_KEY": "sk-ant-test",
		"PACTSCAN_CONFIG":   "",
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	setEnv(t, validEnv())

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "sk-ant-test", cfg.AI.APIKey)
	assert.Equal(t, "https://api.anthropic.com", cfg.AI.BaseURL)
	assert.Equal(t, 2048, cfg.AI.MaxTokens)
	assert.Equal(t, "claude-3-5-haiku-20241022", cfg.AI.FastModel)
	assert.Equal(t, 60*time.Second, cfg.AI.FastTimeout)
	assert.Equal(t, 120*time.Second, cfg.AI.ThoroughTimeout)
	assert.Empty(t, cfg.Cache.RedisURL)
}

func TestLoad_MissingAPIKey(t *testing.T) {
	setEnv(t, map[string]string{
		"ANTHROPIC_API_KEY": "",
		"PACTSCAN_CONFIG":   "",
	})

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
}

func TestLoad_EnvOverrides(t *testing.T) {
	setEnv(t, validEnv())
	t.Setenv("PACTSCAN_FAST_MODEL", "claude-haiku-next")
	t.Setenv("PACTSCAN_THOROUGH_TIMEOUT_SECS", "45")
	t.Setenv("PACTSCAN_MAX_TOKENS", "4096")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "claude-haiku-next", cfg.AI.FastModel)
	assert.Equal(t, 45*time.Second, cfg.AI.ThoroughTimeout)
	assert.Equal(t, 4096, cfg.AI.MaxTokens)
}

func TestLoad_InvalidBaseURL(t *testing.T) {
	setEnv(t, validEnv())
	t.Setenv("ANTHROPIC_BASE_URL", "localhost:9000")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANTHROPIC_BASE_URL")
}

func TestLoad_InvalidTimeout(t *testing.T) {
	setEnv(t, validEnv())
	t.Setenv("PACTSCAN_FAST_TIMEOUT_SECS", "-5")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fast tier timeout")
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pactscan.yaml")
	yamlCfg := `
env: production
ai:
  apiKey: sk-ant-from-file
  fastModel: claude-file-fast
cache:
  redisUrl: redis://localhost:6379
  ttl: 1h
`
	require.NoError(t, os.WriteFile(path, []byte(yamlCfg), 0o600))

	setEnv(t, map[string]string{
		"ANTHROPIC_API_KEY": "",
		"PACTSCAN_CONFIG":   path,
	})

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "sk-ant-from-file", cfg.AI.APIKey)
	assert.Equal(t, "claude-file-fast", cfg.AI.FastModel)
	// defaults survive a partial file
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.AI.ThoroughModel)
	assert.Equal(t, "redis://localhost:6379", cfg.Cache.RedisURL)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pactscan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ai:\n  apiKey: sk-ant-from-file\n"), 0o600))

	setEnv(t, map[string]string{
		"ANTHROPIC_API_KEY": "sk-ant-from-env",
		"PACTSCAN_CONFIG":   path,
	})

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-from-env", cfg.AI.APIKey)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	setEnv(t, map[string]string{
		"ANTHROPIC_API_KEY": "sk-ant-test",
		"PACTSCAN_CONFIG":   "/nonexistent/pactscan.yaml",
	})

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}
