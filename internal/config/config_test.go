package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "")
	path := filepath.Join(t.TempDir(), "missing.yaml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.themoviedb.org/3", cfg.TMDB.BaseURL)
	assert.Equal(t, "fr-FR", cfg.TMDB.Language)
	assert.Equal(t, 15*time.Second, cfg.TMDB.Timeout)
	assert.Equal(t, StorageBolt, cfg.Storage.Driver)
	assert.Equal(t, "discover", cfg.UI.DefaultTab)
	assert.False(t, cfg.IsConfigured())
}

func TestLoadConfig_File(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
tmdb:
  api_key: abc123
  language: en-US
  timeout: 5s
storage:
  driver: sqlite
  dir: /tmp/movienight-test
ui:
  default_tab: favorites
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "abc123", cfg.TMDB.APIKey)
	assert.Equal(t, "en-US", cfg.TMDB.Language)
	assert.Equal(t, 5*time.Second, cfg.TMDB.Timeout)
	assert.Equal(t, StorageSQLite, cfg.Storage.Driver)
	assert.Equal(t, "/tmp/movienight-test", cfg.Storage.Dir)
	assert.Equal(t, "favorites", cfg.UI.DefaultTab)
	assert.Equal(t, path, cfg.File())
	assert.True(t, cfg.IsConfigured())
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "from-tmdb-env")
	t.Setenv("MOVIENIGHT_TMDB_LANGUAGE", "de-DE")
	t.Setenv("MOVIENIGHT_STORAGE_DRIVER", "memory")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "from-tmdb-env", cfg.TMDB.APIKey)
	assert.Equal(t, "de-DE", cfg.TMDB.Language)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "")
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.TMDB.APIKey = "saved-key"
	cfg.TMDB.Timeout = 20 * time.Second
	cfg.Storage.Driver = StorageSQLite
	require.NoError(t, SaveConfig(cfg, path))
	assert.Equal(t, path, cfg.File())

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "saved-key", loaded.TMDB.APIKey)
	assert.Equal(t, 20*time.Second, loaded.TMDB.Timeout)
	assert.Equal(t, StorageSQLite, loaded.Storage.Driver)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "data"), expandHome("~/data"))
	assert.Equal(t, "/abs/path", expandHome("/abs/path"))
}
