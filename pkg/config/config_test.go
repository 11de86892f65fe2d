package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5*time.Second, cfg.WaitTimeout())
	assert.Equal(t, 30*time.Second, cfg.BrowserTimeout())
}

func TestLoadFromFile_TOML(t *testing.T) {
	path := writeFile(t, "golden.toml", `
golden_dir = "goldens"
output_dir = "out"
log_level = "debug"
wait_timeout_ms = 250

[browser]
headless = false
timeout_seconds = 10
`)
	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "goldens", cfg.GoldenDir)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 250*time.Millisecond, cfg.WaitTimeout())
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 10, cfg.Browser.TimeoutSeconds)
	// Unset keys keep their defaults.
	assert.Equal(t, 800, cfg.Browser.ViewportWidth)
}

func TestLoadFromFile_YAML(t *testing.T) {
	path := writeFile(t, "golden.yaml", `
golden_dir: goldens
output_dir: out
browser:
  viewport_width: 1024
  viewport_height: 768
`)
	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "goldens", cfg.GoldenDir)
	assert.Equal(t, 1024, cfg.Browser.ViewportWidth)
	assert.Equal(t, 768, cfg.Browser.ViewportHeight)
	assert.True(t, cfg.Browser.Headless)
}

func TestLoadFromFile_Errors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = LoadFromFile(writeFile(t, "golden.ini", "x=1"))
	assert.ErrorContains(t, err, "unsupported config format")

	_, err = LoadFromFile(writeFile(t, "golden.toml", "wait_timeout_ms = -1"))
	assert.ErrorContains(t, err, "wait_timeout_ms must be positive")

	_, err = LoadFromFile(writeFile(t, "golden.yaml", "golden_dir: [unterminated"))
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestFromEnv_UnsetUsesDefault(t *testing.T) {
	t.Setenv(EnvVar, "")
	cfg, err := FromEnv(EnvVar)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestFromEnv_LoadsFile(t *testing.T) {
	path := writeFile(t, "e2e.toml", `
wait_timeout_ms = 1500

[browser]
headless = false
viewport_width = 640
viewport_height = 480
`)
	t.Setenv(EnvVar, path)

	cfg, err := FromEnv(EnvVar)
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, cfg.WaitTimeout())
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 640, cfg.Browser.ViewportWidth)
	assert.Equal(t, 30*time.Second, cfg.BrowserTimeout())
}

func TestFromEnv_BadFile(t *testing.T) {
	t.Setenv(EnvVar, filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := FromEnv(EnvVar)
	assert.ErrorContains(t, err, "failed to load BROWSERTEST_CONFIG=")
}
