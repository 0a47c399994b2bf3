package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// DefaultStorageQuota mirrors the per-origin allowance browsers give local storage
const DefaultStorageQuota int64 = 5 * 1024 * 1024

type Config struct {
	// Storage Settings
	Backend           string `yaml:"backend"`
	StorageQuotaBytes int64  `yaml:"storage_quota_bytes"`
	KeyPrefix         string `yaml:"key_prefix"`
	CacheSize         int    `yaml:"cache_size"`

	// Ingestion
	MaxWorkers      int   `yaml:"max_workers"`
	MaxPreviewBytes int64 `yaml:"max_preview_bytes"`
	WatchDebounceMS int   `yaml:"watch_debounce_ms"`

	// Browsing
	DefaultAction  string `yaml:"default_action"`
	DefaultType    string `yaml:"default_type"`
	LongDateFormat string `yaml:"long_date_format"`

	// UI Settings
	ColorTheme string `yaml:"color_theme"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// DefaultConfig returns a Config struct with default values
func DefaultConfig() *Config {
	return &Config{
		Backend:           "file",
		StorageQuotaBytes: DefaultStorageQuota,
		KeyPrefix:         "driveFiles_",
		CacheSize:         16,
		MaxWorkers:        4,
		MaxPreviewBytes:   0,
		WatchDebounceMS:   500,
		DefaultAction:     "list",
		DefaultType:       "all",
		LongDateFormat:    "January 2, 2006",
		ColorTheme:        "auto",
		LogLevel:          "warn",
		LogFormat:         "text",
	}
}

// Load reads configuration from the specified file path
func Load(path string) (*Config, error) {
	// Start with default config
	cfg := DefaultConfig()

	// Try to read the file
	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, return default config (not an error)
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults backfills missing or invalid values
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()

	if !isValidBackend(c.Backend) {
		c.Backend = defaults.Backend
	}
	if c.StorageQuotaBytes < 0 {
		c.StorageQuotaBytes = defaults.StorageQuotaBytes
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = defaults.KeyPrefix
	}
	if c.CacheSize <= 0 {
		c.CacheSize = defaults.CacheSize
	}
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = defaults.MaxWorkers
	}
	if c.MaxPreviewBytes < 0 {
		c.MaxPreviewBytes = 0
	}
	if c.WatchDebounceMS <= 0 {
		c.WatchDebounceMS = defaults.WatchDebounceMS
	}
	if !isValidDefaultAction(c.DefaultAction) {
		c.DefaultAction = defaults.DefaultAction
	}
	if c.DefaultType == "" {
		c.DefaultType = defaults.DefaultType
	}
	if c.LongDateFormat == "" {
		c.LongDateFormat = defaults.LongDateFormat
	}
	if c.ColorTheme == "" {
		c.ColorTheme = defaults.ColorTheme
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	if c.LogFormat != "json" {
		c.LogFormat = "text"
	}
}

// Save persists the current configuration to the specified file path
func (c *Config) Save(path string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func isValidBackend(backend string) bool {
	return backend == "file" || backend == "sqlite"
}

// isValidDefaultAction checks what bare `dx` may run
func isValidDefaultAction(action string) bool {
	return slices.Contains([]string{"list", "explore", "stats"}, action)
}
