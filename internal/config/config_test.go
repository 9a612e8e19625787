package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	path := writeConfig(t, "api_key: from-file\nmodel: gemini-2.0-flash\nlisten_addr: 127.0.0.1:8321\n")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.APIKey)
	assert.Equal(t, "gemini-2.0-flash", cfg.Model)
	assert.Equal(t, "gemini-2.0-flash", cfg.TitleModel, "title model defaults to the main model")
	assert.Equal(t, "127.0.0.1:8321", cfg.ListenAddr)
	assert.Equal(t, filepath.Dir(path), cfg.DataDir)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-env")
	path := writeConfig(t, "api_key: from-file\n")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.APIKey)
}

func TestMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, "gemini-2.5-flash", cfg.Model)
	assert.Equal(t, "127.0.0.1:0", cfg.ListenAddr)
}

func TestMissingAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	_, err := LoadFrom(filepath.Join(t.TempDir(), "config.yaml"))
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestCorruptFile(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	path := writeConfig(t, "api_key: [unclosed\n  nonsense: {{\n")

	_, err := LoadFrom(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}
