package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func clearKeyEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"XIAOZHOU_GEMINI_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY", "XIAOZHOU_LOG_LEVEL"} {
		t.Setenv(name, "")
	}
}

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	clearKeyEnv(t)

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFromFile(t *testing.T) {
	clearKeyEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  gemini_key: file-key
model:
  temperature: 0.2
  max_output_tokens: 2048
chat:
  enable_search: false
  thinking_budget: 1024
logging:
  level: debug
`), 0644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	require.Equal(t, "file-key", cfg.API.GeminiKey)
	require.Equal(t, float32(0.2), cfg.Model.Temperature)
	require.Equal(t, int32(2048), cfg.Model.MaxOutputTokens)
	require.False(t, cfg.Chat.EnableSearch)
	require.Equal(t, int32(1024), cfg.Chat.ThinkingBudget)
	require.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromInvalidFile(t *testing.T) {
	clearKeyEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n  - not valid yaml: ["), 0644))

	_, err := LoadFrom(path)
	require.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	clearKeyEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  gemini_key: file-key\n"), 0644))

	t.Setenv("GEMINI_API_KEY", "env-key")
	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	require.Equal(t, "env-key", cfg.API.GeminiKey)
}

func TestEnvKeyPriority(t *testing.T) {
	clearKeyEnv(t)

	t.Setenv("GOOGLE_API_KEY", "google")
	t.Setenv("GEMINI_API_KEY", "gemini")
	t.Setenv("XIAOZHOU_GEMINI_KEY", "xiaozhou")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	require.Equal(t, "xiaozhou", cfg.API.GeminiKey)
}

func TestDataDirHonorsXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)

	got, err := DataDir()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "xiaozhou"), got)
}
