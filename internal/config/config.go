package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/arcanaland/scrybe/internal/catalog"
)

// Duration is a time.Duration that reads and writes as "15s" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// ArtConfig controls terminal card art.
type ArtConfig struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// Config represents the application configuration
type Config struct {
	APIBase       string           `toml:"api_base"`
	UserAgent     string           `toml:"user_agent"`
	Timeout       Duration         `toml:"timeout"`
	Listen        string           `toml:"listen"`
	LogLevel      string           `toml:"log_level"`
	SessionTTL    Duration         `toml:"session_ttl"`
	MaxPrintPages int              `toml:"max_print_pages"`
	Art           ArtConfig        `toml:"art"`
	Sets          []catalog.Option `toml:"sets,omitempty"`
}

// Default returns the configuration written on first run.
func Default() *Config {
	return &Config{
		APIBase:       "https://api.scryfall.com",
		UserAgent:     "scrybe/1.0",
		Timeout:       Duration{15 * time.Second},
		Listen:        ":8080",
		LogLevel:      "info",
		SessionTTL:    Duration{30 * time.Minute},
		MaxPrintPages: 1,
		Art:           ArtConfig{Width: 40, Height: 32},
	}
}

// Catalog returns the filter catalog with configured sets applied.
func (c *Config) Catalog() *catalog.Catalog {
	return catalog.Default().WithSets(c.Sets)
}

// GetXDGConfigHome returns XDG_CONFIG_HOME or default path
func GetXDGConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// GetXDGCacheHome returns XDG_CACHE_HOME or default path
func GetXDGCacheHome() string {
	if xdgCache := os.Getenv("XDG_CACHE_HOME"); xdgCache != "" {
		return xdgCache
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".cache")
}

// GetCacheDir returns the cache directory for rendered card art
func GetCacheDir() string {
	return filepath.Join(GetXDGCacheHome(), "scrybe")
}

// GetConfigFilePath returns the path to the config file
func GetConfigFilePath() string {
	return filepath.Join(GetXDGConfigHome(), "scrybe", "config.toml")
}

// LoadConfig loads the config file, creates it with defaults when missing,
// and applies environment overrides.
func LoadConfig() (*Config, error) {
	configPath := GetConfigFilePath()

	var config *Config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config, err = createDefaultConfig()
		if err != nil {
			return nil, err
		}
	} else {
		config = Default()
		if _, err := toml.DecodeFile(configPath, config); err != nil {
			return nil, fmt.Errorf("error decoding config file: %w", err)
		}
	}

	if err := applyEnv(config); err != nil {
		return nil, err
	}
	return config, nil
}

// createDefaultConfig creates a default config file
func createDefaultConfig() (*Config, error) {
	configPath := GetConfigFilePath()
	configDir := filepath.Dir(configPath)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating config directory: %w", err)
	}

	config := Default()
	if err := writeConfig(configPath, config); err != nil {
		return nil, err
	}
	return config, nil
}

// Save writes the config back to the config file.
func Save(config *Config) error {
	configPath := GetConfigFilePath()
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	return writeConfig(configPath, config)
}

func writeConfig(path string, config *Config) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}
	return nil
}

// applyEnv overrides file values with SCRYBE_* environment variables.
func applyEnv(config *Config) error {
	if v := os.Getenv("SCRYBE_API_BASE"); v != "" {
		config.APIBase = v
	}
	if v := os.Getenv("SCRYBE_LISTEN"); v != "" {
		config.Listen = v
	}
	if v := os.Getenv("SCRYBE_LOG_LEVEL"); v != "" {
		config.LogLevel = v
	}
	if v := os.Getenv("SCRYBE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SCRYBE_TIMEOUT: %w", err)
		}
		config.Timeout.Duration = d
	}
	if v := os.Getenv("SCRYBE_MAX_PRINT_PAGES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SCRYBE_MAX_PRINT_PAGES: %w", err)
		}
		config.MaxPrintPages = n
	}
	return nil
}
