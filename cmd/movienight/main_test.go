package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command against a throwaway home directory
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("MOVIENIGHT_LOGGING_FILE", filepath.Join(home, "movienight.log"))
	t.Setenv("MOVIENIGHT_TMDB_API_KEY", "")
	t.Setenv("TMDB_API_KEY", "")

	// flags keep their values between runs in one process
	configPath, ephemeral = "", false
	addTitle, darkMode, exportFormat, exportRaw = "", "", "json", false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSearchCommand(t *testing.T) {
	out, err := execute(t, "search", "inception", "--ephemeral")
	require.NoError(t, err)
	assert.Contains(t, out, "TITLE")
	assert.Contains(t, out, "Inception")
}

func TestAddCommand_LooksUpCatalog(t *testing.T) {
	out, err := execute(t, "add", "favorites", "1", "--ephemeral")
	require.NoError(t, err)
	assert.Contains(t, out, `Added "Inception" to Favorites`)
}

func TestAddCommand_UnknownList(t *testing.T) {
	_, err := execute(t, "add", "later", "1", "--ephemeral", "--title", "Inception")
	assert.Error(t, err)
}

func TestListCommand_Empty(t *testing.T) {
	out, err := execute(t, "list", "watchlist", "--ephemeral")
	require.NoError(t, err)
	assert.Contains(t, out, "Watchlist is empty")
}

func TestImportThenList(t *testing.T) {
	file := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(file, []byte(`{
		"@MovieNight:watchlist": "[{\"id\":155,\"title\":\"The Dark Knight\"}]"
	}`), 0644))

	out, err := execute(t, "import", file, "--ephemeral")
	require.NoError(t, err)
	assert.Contains(t, out, "Watchlist  +1")
}

func TestExportCommand_Formats(t *testing.T) {
	out, err := execute(t, "export", "--ephemeral", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "darkMode: true")

	_, err = execute(t, "export", "--ephemeral", "--format", "xml")
	assert.Error(t, err)
}

func TestSettingsCommand(t *testing.T) {
	out, err := execute(t, "settings", "--ephemeral", "--dark-mode", "off")
	require.NoError(t, err)
	assert.Contains(t, out, "off")
	assert.Contains(t, out, "memory")
}
