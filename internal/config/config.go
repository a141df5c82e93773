package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	API     APIConfig
	Storage StorageConfig
	Log     LogConfig
	UI      UIConfig
}

// APIConfig holds remote service settings.
type APIConfig struct {
	URL     string
	Timeout time.Duration
}

// StorageConfig holds sqlite settings.
type StorageConfig struct {
	Path string
}

// LogConfig controls the file logger. The terminal belongs to the TUI, so logs never go to stdout.
type LogConfig struct {
	Path  string
	Level string
}

// UIConfig holds presentation settings.
type UIConfig struct {
	ClockInterval time.Duration `mapstructure:"clock_interval"`
}

// Load reads configuration from file and env. Env var overrides use prefix COINFEED_.
// An explicit path (e.g. from --config) wins over COINFEED_CONFIG.
func Load(path string) (Config, error) {
	v := viper.New()

	home := os.Getenv("HOME")
	v.SetDefault("api.url", "http://localhost:5000")
	v.SetDefault("api.timeout", "10s")
	v.SetDefault("storage.path", filepath.Join(home, ".local", "share", "coinfeed", "coinfeed.db"))
	v.SetDefault("log.path", filepath.Join(home, ".local", "state", "coinfeed", "coinfeed.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("ui.clock_interval", "30s")

	v.SetConfigType("toml")

	if path == "" {
		path = os.Getenv("COINFEED_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Join(home, ".config", "coinfeed"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("COINFEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// a missing file is fine; a broken one is not
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.API.URL = strings.TrimRight(strings.TrimSpace(c.API.URL), "/")
	if c.API.URL == "" {
		return Config{}, fmt.Errorf("api.url must not be empty")
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(path string, cfg Config) error {
	if path == "" {
		path = os.Getenv("COINFEED_CONFIG")
	}
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "coinfeed", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("api.url", cfg.API.URL)
	v.Set("api.timeout", cfg.API.Timeout.String())
	v.Set("storage.path", cfg.Storage.Path)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)
	v.Set("ui.clock_interval", cfg.UI.ClockInterval.String())

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
