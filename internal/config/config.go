package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// StorageDriver identifies the key-value backend
type StorageDriver string

const (
	StorageBolt   StorageDriver = "bolt"
	StorageSQLite StorageDriver = "sqlite"
	StorageMemory StorageDriver = "memory"
)

// Config holds all application configuration
type Config struct {
	TMDB    TMDBConfig    `mapstructure:"tmdb"`
	Storage StorageConfig `mapstructure:"storage"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`

	// path the config was read from (empty when defaults only)
	file string
}

// TMDBConfig holds remote catalog configuration
type TMDBConfig struct {
	APIKey       string        `mapstructure:"api_key"` // v3 key, sent as ?api_key=
	Token        string        `mapstructure:"token"`   // v4 read token, sent as Bearer
	BaseURL      string        `mapstructure:"base_url"`
	ImageBaseURL string        `mapstructure:"image_base_url"`
	Language     string        `mapstructure:"language"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// StorageConfig holds local persistence configuration
type StorageConfig struct {
	Driver StorageDriver `mapstructure:"driver"`
	Dir    string        `mapstructure:"dir"`
}

// UIConfig holds UI configuration
type UIConfig struct {
	DefaultTab string `mapstructure:"default_tab"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		TMDB: TMDBConfig{
			BaseURL:      "https://api.themoviedb.org/3",
			ImageBaseURL: "https://image.tmdb.org/t/p/w500",
			Language:     "fr-FR",
			Timeout:      15 * time.Second,
		},
		Storage: StorageConfig{
			Driver: StorageBolt,
			Dir:    defaultDataPath(),
		},
		UI: UIConfig{
			DefaultTab: "discover",
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultDataPath(), "movienight.log"),
			Level: "INFO",
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "movienight")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "movienight")
	}
}

// DefaultConfigDir returns the default config directory for the current OS
func DefaultConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "movienight")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "movienight")
	}
}

// LoadConfig loads configuration from file, .env and environment.
// An empty path searches the default config dir and the working directory.
func LoadConfig(path string) (*Config, error) {
	// .env is optional; real environment variables win over it
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env: %w", err)
	}

	cfg := DefaultConfig()
	v := newViper(cfg)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultConfigDir())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(path != "" && errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	// TMDB_API_KEY is the name the TMDB docs use; accept it unprefixed too
	if cfg.TMDB.APIKey == "" {
		cfg.TMDB.APIKey = os.Getenv("TMDB_API_KEY")
	}

	cfg.Storage.Dir = expandHome(cfg.Storage.Dir)
	cfg.Logging.File = expandHome(cfg.Logging.File)
	cfg.file = v.ConfigFileUsed()

	return cfg, nil
}

// newViper binds defaults so environment overrides work for every key,
// even ones absent from the config file.
func newViper(cfg *Config) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("MOVIENIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("tmdb.api_key", cfg.TMDB.APIKey)
	v.SetDefault("tmdb.token", cfg.TMDB.Token)
	v.SetDefault("tmdb.base_url", cfg.TMDB.BaseURL)
	v.SetDefault("tmdb.image_base_url", cfg.TMDB.ImageBaseURL)
	v.SetDefault("tmdb.language", cfg.TMDB.Language)
	v.SetDefault("tmdb.timeout", cfg.TMDB.Timeout)
	v.SetDefault("storage.driver", string(cfg.Storage.Driver))
	v.SetDefault("storage.dir", cfg.Storage.Dir)
	v.SetDefault("ui.default_tab", cfg.UI.DefaultTab)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
	return v
}

// SaveConfig writes the configuration to path, or to the default location
// when path is empty.
func SaveConfig(cfg *Config, path string) error {
	if path == "" {
		path = filepath.Join(DefaultConfigDir(), "config.yaml")
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()

	// Set fields individually to ensure correct key names (snake_case)
	v.Set("tmdb.api_key", cfg.TMDB.APIKey)
	v.Set("tmdb.token", cfg.TMDB.Token)
	v.Set("tmdb.base_url", cfg.TMDB.BaseURL)
	v.Set("tmdb.image_base_url", cfg.TMDB.ImageBaseURL)
	v.Set("tmdb.language", cfg.TMDB.Language)
	v.Set("tmdb.timeout", cfg.TMDB.Timeout.String())

	v.Set("storage.driver", string(cfg.Storage.Driver))
	v.Set("storage.dir", cfg.Storage.Dir)

	v.Set("ui.default_tab", cfg.UI.DefaultTab)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	cfg.file = path
	return nil
}

// IsConfigured returns true if TMDB credentials are set
func (c *Config) IsConfigured() bool {
	return c.TMDB.APIKey != "" || c.TMDB.Token != ""
}

// File returns the config file the configuration was loaded from, if any
func (c *Config) File() string {
	return c.file
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
