package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, 30, cfg.RequestTimeoutSeconds)
	assert.False(t, cfg.EagerCredentialCheck)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestRequestTimeout(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout())

	cfg.RequestTimeoutSeconds = 90
	assert.Equal(t, 90*time.Second, cfg.RequestTimeout())

	cfg.RequestTimeoutSeconds = 0
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout(), "zero falls back to default")

	cfg.RequestTimeoutSeconds = -5
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout())
}

func TestLoadFromRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := DefaultConfig()
	cfg.BaseURL = "https://proxy.internal/v1"
	cfg.RequestTimeoutSeconds = 45
	cfg.EagerCredentialCheck = true
	require.NoError(t, cfg.SaveTo(path))

	// Restrictive permissions, the file sits next to credentials config.
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "https://proxy.internal/v1", loaded.BaseURL)
	assert.Equal(t, 45, loaded.RequestTimeoutSeconds)
	assert.True(t, loaded.EagerCredentialCheck)
	assert.NotZero(t, loaded.InitTime, "first save stamps init time")
}

func TestSaveWritesToStandardLocation(t *testing.T) {
	// Cleanup order matters: the env restore registered by Setenv runs
	// before this Reload, so the package sees the original paths again.
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()

	cfg := DefaultConfig()
	cfg.BaseURL = "https://standard-path/v1"
	require.NoError(t, cfg.Save())

	path, exists := FindConfigFile()
	require.True(t, exists, "Save must create the file at the standard path")
	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "https://standard-path/v1", loaded.BaseURL)
	assert.NotZero(t, loaded.InitTime)
}

func TestLoadFromPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_url: https://other/v1\n"), 0o600))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "https://other/v1", loaded.BaseURL)
	assert.Equal(t, 30, loaded.RequestTimeoutSeconds, "unset fields keep defaults")
}

func TestLoadFromRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml: ["), 0o600))

	_, err := LoadFrom(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_BASE_URL", "https://env-proxy/v1")
	t.Setenv("VECTORMCP_TIMEOUT_SECONDS", "12")
	t.Setenv("VECTORMCP_EAGER_CREDENTIAL_CHECK", "true")
	t.Setenv("VECTORMCP_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	applyEnvOverrides(&cfg)

	assert.Equal(t, "https://env-proxy/v1", cfg.BaseURL)
	assert.Equal(t, 12, cfg.RequestTimeoutSeconds)
	assert.True(t, cfg.EagerCredentialCheck)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestApplyEnvOverridesIgnoresInvalidValues(t *testing.T) {
	t.Setenv("VECTORMCP_TIMEOUT_SECONDS", "soon")
	t.Setenv("VECTORMCP_EAGER_CREDENTIAL_CHECK", "maybe")

	cfg := DefaultConfig()
	applyEnvOverrides(&cfg)

	assert.Equal(t, 30, cfg.RequestTimeoutSeconds)
	assert.False(t, cfg.EagerCredentialCheck)
}
