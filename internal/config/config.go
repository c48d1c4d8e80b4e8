package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configDirName  = "odg"
	configFileName = "console.yaml"
)

// Config holds all configuration for the console
type Config struct {
	// API Configuration
	API APIConfig `yaml:"api"`

	// Storage Configuration (where the session is persisted)
	Storage StorageConfig `yaml:"storage"`

	// Vendor Configuration
	Vendor VendorConfig `yaml:"vendor"`

	// Logging Configuration
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig holds the remote API configuration
type APIConfig struct {
	// BaseURL is prefixed to every request path. Empty means same-origin:
	// paths are sent relative to Origin, normally a dev reverse-proxy.
	BaseURL      string        `yaml:"base_url"`
	Origin       string        `yaml:"origin"`
	Timeout      time.Duration `yaml:"timeout"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// StorageConfig holds the persisted key-value store configuration
type StorageConfig struct {
	Driver string `yaml:"driver"` // file, keyring, sqlite
	Path   string `yaml:"path"`   // file and sqlite only
}

// VendorConfig pins the vendor used by vendor commands
type VendorConfig struct {
	ID int64 `yaml:"id"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json, console
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		API: APIConfig{
			Origin:       "http://localhost:3000",
			Timeout:      30 * time.Second,
			PollInterval: 30 * time.Second,
		},
		Storage: StorageConfig{
			Driver: "file",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// DefaultPath returns ~/.config/odg/console.yaml
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Dir returns the per-user configuration directory
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", configDirName), nil
}

// Load builds the configuration from defaults, the YAML file and the
// environment, in that order of precedence. An empty path means the default
// location, which may be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

func applyEnv(cfg *Config) error {
	// ODG_API_URL may be deliberately set to "" to force same-origin
	if v, ok := os.LookupEnv("ODG_API_URL"); ok {
		cfg.API.BaseURL = v
	}

	if v := os.Getenv("ODG_ORIGIN"); v != "" {
		cfg.API.Origin = v
	}

	if v := os.Getenv("ODG_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid ODG_TIMEOUT: %w", err)
		}
		cfg.API.Timeout = d
	}

	if v := os.Getenv("ODG_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid ODG_POLL_INTERVAL: %w", err)
		}
		cfg.API.PollInterval = d
	}

	if v := os.Getenv("ODG_VENDOR_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ODG_VENDOR_ID: %w", err)
		}
		cfg.Vendor.ID = id
	}

	if v := os.Getenv("ODG_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}

	if v := os.Getenv("ODG_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	return nil
}
