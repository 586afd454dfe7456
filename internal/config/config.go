package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	App      AppConfig
	Storage  StorageConfig
	Gesture  GestureConfig
	Viewport ViewportConfig
}

// AppConfig holds process-level settings.
type AppConfig struct {
	Dir         string `envconfig:"FRAMECORE_DIR"`                     // project dir; empty means the working directory
	Environment string `envconfig:"FRAMECORE_ENV" default:"production"` // development, production, test
	LogLevel    string `envconfig:"LOG_LEVEL" default:"warn"`          // debug, info, warn, error
	Session     string `envconfig:"FRAMECORE_SESSION"`                 // resume a session scope by ID
}

// Validate validates the app configuration.
func (c *AppConfig) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"production":  true,
		"test":        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s (must be one of: development, production, test)", c.Environment)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}
	return nil
}

// StorageConfig bounds the persisted state.
type StorageConfig struct {
	QuotaBytes int           `envconfig:"STORAGE_QUOTA_BYTES" default:"5242880"`
	MaxLinks   int           `envconfig:"STORAGE_MAX_LINKS" default:"10"`
	SessionTTL time.Duration `envconfig:"STORAGE_SESSION_TTL" default:"24h"`
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	if c.QuotaBytes <= 0 {
		return fmt.Errorf("storage quota must be positive")
	}
	if c.MaxLinks <= 0 {
		return fmt.Errorf("max links must be positive")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session TTL must be positive")
	}
	return nil
}

// GestureConfig holds detector tuning.
type GestureConfig struct {
	ShakeThreshold   float64       `envconfig:"SHAKE_THRESHOLD" default:"15"`
	ShakeThrottle    time.Duration `envconfig:"SHAKE_THROTTLE" default:"100ms"`
	ShakeCooldown    time.Duration `envconfig:"SHAKE_COOLDOWN" default:"2s"`
	SwipeThreshold   float64       `envconfig:"SWIPE_THRESHOLD" default:"50"`
	SwipeMinVelocity float64       `envconfig:"SWIPE_MIN_VELOCITY" default:"0.1"`
	LongPressDelay   time.Duration `envconfig:"LONGPRESS_DELAY" default:"500ms"`
}

// Validate validates the gesture configuration.
func (c *GestureConfig) Validate() error {
	if c.ShakeThreshold <= 0 {
		return fmt.Errorf("shake threshold must be positive")
	}
	if c.ShakeThrottle < 0 {
		return fmt.Errorf("shake throttle cannot be negative")
	}
	if c.ShakeCooldown < 0 {
		return fmt.Errorf("shake cooldown cannot be negative")
	}
	if c.SwipeThreshold < 0 {
		return fmt.Errorf("swipe threshold cannot be negative")
	}
	if c.SwipeMinVelocity < 0 {
		return fmt.Errorf("swipe min velocity cannot be negative")
	}
	if c.LongPressDelay <= 0 {
		return fmt.Errorf("long-press delay must be positive")
	}
	return nil
}

// ViewportConfig holds viewport monitor tuning.
type ViewportConfig struct {
	KeyboardMinInset float64 `envconfig:"KEYBOARD_MIN_INSET" default:"100"`
}

// Validate validates the viewport configuration.
func (c *ViewportConfig) Validate() error {
	if c.KeyboardMinInset < 0 {
		return fmt.Errorf("keyboard min inset cannot be negative")
	}
	return nil
}

// Load loads configuration from environment variables only.
// (.env loading happens in internal/app for development.)
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process("", &cfg.App); err != nil {
		return nil, fmt.Errorf("failed to load App config: %w", err)
	}
	if err := cfg.App.Validate(); err != nil {
		return nil, fmt.Errorf("invalid App config: %w", err)
	}

	if err := envconfig.Process("", &cfg.Storage); err != nil {
		return nil, fmt.Errorf("failed to load Storage config: %w", err)
	}
	if err := cfg.Storage.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Storage config: %w", err)
	}

	if err := envconfig.Process("", &cfg.Gesture); err != nil {
		return nil, fmt.Errorf("failed to load Gesture config: %w", err)
	}
	if err := cfg.Gesture.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Gesture config: %w", err)
	}

	if err := envconfig.Process("", &cfg.Viewport); err != nil {
		return nil, fmt.Errorf("failed to load Viewport config: %w", err)
	}
	if err := cfg.Viewport.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Viewport config: %w", err)
	}

	return cfg, nil
}
