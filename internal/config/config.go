// Package config provides runtime configuration read from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"sleeptimer/internal/core/model"
)

// Environment variable names.
const (
	EnvLogLevel       = "SLEEPTIMER_LOG_LEVEL"
	EnvLogFormat      = "SLEEPTIMER_LOG_FORMAT"
	EnvTickInterval   = "SLEEPTIMER_TICK_INTERVAL"
	EnvDebounceWindow = "SLEEPTIMER_DEBOUNCE_WINDOW"
	EnvPlayer         = "SLEEPTIMER_PLAYER"
	EnvConfigDir      = "SLEEPTIMER_CONFIG_DIR"
)

// Log output formats.
const (
	FormatAuto    = "auto"
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config holds runtime settings that are not user preferences.
type Config struct {
	LogLevel       string
	LogFormat      string
	TickInterval   time.Duration
	DebounceWindow time.Duration
	PlayerTimeout  time.Duration
	// Player selects the external player by MPRIS bus name or suffix. Empty
	// defers to the stored preference.
	Player string
	// ConfigDir overrides the per-user preferences directory.
	ConfigDir string
}

// LoadDotEnv loads variables from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel:       strings.ToLower(getEnv(EnvLogLevel, "info")),
		LogFormat:      strings.ToLower(getEnv(EnvLogFormat, FormatAuto)),
		TickInterval:   getEnvDuration(EnvTickInterval, model.TickInterval),
		DebounceWindow: getEnvDuration(EnvDebounceWindow, model.DebounceWindow),
		PlayerTimeout:  model.PlayerTimeout,
		Player:         getEnv(EnvPlayer, ""),
		ConfigDir:      getEnv(EnvConfigDir, ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%s: %w", EnvLogLevel, err)
	}
	switch c.LogFormat {
	case FormatAuto, FormatConsole, FormatJSON:
	default:
		return fmt.Errorf("%s must be one of auto, console, json", EnvLogFormat)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("%s must be > 0", EnvTickInterval)
	}
	if c.DebounceWindow < 0 {
		return fmt.Errorf("%s must be >= 0", EnvDebounceWindow)
	}
	if c.PlayerTimeout <= 0 {
		return fmt.Errorf("player timeout must be > 0")
	}
	return nil
}

// SessionConfig returns controller settings starting at initialMinutes.
func (c *Config) SessionConfig(initialMinutes int) model.SessionConfig {
	return model.SessionConfig{
		InitialMinutes: initialMinutes,
		TickInterval:   c.TickInterval,
		PlayerTimeout:  c.PlayerTimeout,
	}
}

// InputConfig returns coordinator settings.
func (c *Config) InputConfig() model.InputConfig {
	return model.InputConfig{DebounceWindow: c.DebounceWindow}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}
