// ABOUTME: Configuration for myaktube: YAML file, optional .env and MYAKTUBE_* overrides.
// ABOUTME: Handles XDG config/data paths and validates the merged result.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v6"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const appName = "myaktube"

const (
	BackendKV     = "kv"
	BackendSQLite = "sqlite"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds runtime settings. File values are overridden by the environment.
type Config struct {
	// DataDir holds the database (default: $XDG_DATA_HOME/myaktube)
	DataDir string `yaml:"data_dir" env:"MYAKTUBE_DATA_DIR" validate:"required"`

	// Backend selects the storage engine: kv (badger) or sqlite
	Backend string `yaml:"backend" env:"MYAKTUBE_BACKEND" validate:"oneof=kv sqlite"`

	LogLevel string `yaml:"log_level" env:"MYAKTUBE_LOG_LEVEL" validate:"oneof=trace debug info warn warning error"`

	// LogFile enables a rotating log file instead of stderr
	LogFile string `yaml:"log_file,omitempty" env:"MYAKTUBE_LOG_FILE"`

	SyncWrites bool `yaml:"sync_writes" env:"MYAKTUBE_SYNC_WRITES"`

	// MaxUploadBytes caps a single upload; 0 disables the limit
	MaxUploadBytes int64 `yaml:"max_upload_bytes" env:"MYAKTUBE_MAX_UPLOAD_BYTES" validate:"gte=0"`

	// Player is the command launched by `play` (default: xdg-open / open)
	Player string `yaml:"player,omitempty" env:"MYAKTUBE_PLAYER"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDir:        DataDir(),
		Backend:        BackendKV,
		LogLevel:       "warn",
		SyncWrites:     true,
		MaxUploadBytes: 1023 << 20,
	}
}

// ConfigDir returns the configuration directory path.
func ConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, appName)
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DataDir returns the default data directory.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, appName)
}

// StorePath returns where the selected backend keeps its files.
func (c *Config) StorePath() string {
	if c.Backend == BackendSQLite {
		return filepath.Join(c.DataDir, "library.db")
	}
	return filepath.Join(c.DataDir, "library.badger")
}

// Load reads path (ConfigPath when empty), a .env beside it, then the environment.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}
	cfg := DefaultConfig()

	dotenv := filepath.Join(filepath.Dir(path), ".env")
	if _, err := os.Stat(dotenv); err == nil {
		if err := godotenv.Load(dotenv); err != nil {
			return nil, fmt.Errorf("load %s: %w", dotenv, err)
		}
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Save writes the config file to path (ConfigPath when empty).
func Save(cfg *Config, path string) error {
	if path == "" {
		path = ConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
