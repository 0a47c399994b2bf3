package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides (DX_BACKEND, DX_LOG_LEVEL, ...)
const EnvPrefix = "DX"

// NewViper returns a viper instance reading DX_* environment variables
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// Overlay applies values set in v (flags or environment) on top of the file config
func (c *Config) Overlay(v *viper.Viper) {
	if v.IsSet("backend") {
		c.Backend = v.GetString("backend")
	}
	if v.IsSet("storage_quota_bytes") {
		c.StorageQuotaBytes = v.GetInt64("storage_quota_bytes")
	}
	if v.IsSet("key_prefix") {
		c.KeyPrefix = v.GetString("key_prefix")
	}
	if v.IsSet("cache_size") {
		c.CacheSize = v.GetInt("cache_size")
	}
	if v.IsSet("max_workers") {
		c.MaxWorkers = v.GetInt("max_workers")
	}
	if v.IsSet("max_preview_bytes") {
		c.MaxPreviewBytes = v.GetInt64("max_preview_bytes")
	}
	if v.IsSet("watch_debounce_ms") {
		c.WatchDebounceMS = v.GetInt("watch_debounce_ms")
	}
	if v.IsSet("default_action") {
		c.DefaultAction = v.GetString("default_action")
	}
	if v.IsSet("default_type") {
		c.DefaultType = v.GetString("default_type")
	}
	if v.IsSet("long_date_format") {
		c.LongDateFormat = v.GetString("long_date_format")
	}
	if v.IsSet("color_theme") {
		c.ColorTheme = v.GetString("color_theme")
	}
	if v.IsSet("log_level") {
		c.LogLevel = v.GetString("log_level")
	}
	if v.IsSet("log_format") {
		c.LogFormat = v.GetString("log_format")
	}
	c.ApplyDefaults()
}

// ParseLogLevel converts a level name to slog.Level
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelWarn, fmt.Errorf("invalid log level %q, valid: debug, info, warn, error", level)
	}
}

// SetupLogger builds the process logger and installs it as the slog default.
// Logs go to w so they never mix with command output on stdout.
func SetupLogger(c *Config, w io.Writer) *slog.Logger {
	level, _ := ParseLogLevel(c.LogLevel)
	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if c.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
