// Package config provides configuration management for the baccarat tracker.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage" validate:"required"`
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Metrics  MetricsConfig  `mapstructure:"metrics" validate:"required"`
	Backtest BacktestConfig `mapstructure:"backtest" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// StorageConfig represents snapshot persistence configuration
type StorageConfig struct {
	SnapshotPath     string `mapstructure:"snapshot_path" validate:"required"`
	AutosaveSchedule string `mapstructure:"autosave_schedule" validate:"omitempty,cronspec"`
}

// ServerConfig represents the HTTP API configuration
type ServerConfig struct {
	Port                int     `mapstructure:"port" validate:"required,min=1,max=65535"`
	RateLimit           float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
	RateBurst           int     `mapstructure:"rate_burst" validate:"required,gt=0"`
	ReadTimeoutSeconds  int     `mapstructure:"read_timeout_seconds" validate:"required,gt=0"`
	WriteTimeoutSeconds int     `mapstructure:"write_timeout_seconds" validate:"required,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required,startswith=/"`
}

// BacktestConfig represents the replay result cache configuration
type BacktestConfig struct {
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	CacheSize       int `mapstructure:"cache_size" validate:"required,gt=0"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// ListenAddress returns the address the HTTP server binds to
func (c *Config) ListenAddress() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// ReadTimeout returns the server read timeout
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.Server.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the server write timeout
func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.Server.WriteTimeoutSeconds) * time.Second
}

// BacktestCacheTTL returns how long replay results stay cached
func (c *Config) BacktestCacheTTL() time.Duration {
	return time.Duration(c.Backtest.CacheTTLSeconds) * time.Second
}

// AutosaveEnabled reports whether a snapshot flush schedule is configured
func (c *Config) AutosaveEnabled() bool {
	return c.Storage.AutosaveSchedule != ""
}
