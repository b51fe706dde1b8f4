// internal/common/config/config.go
package config

import (
	"strings"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Scoring ScoringConfig `mapstructure:"scoring"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Session SessionConfig `mapstructure:"session"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ScoringConfig points the client at the external scoring service.
type ScoringConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	PathPrefix string `mapstructure:"path_prefix"` // "/" selects the un-prefixed routes
	Timeout    int    `mapstructure:"timeout"`     // milliseconds
}

// Prefix returns the normalized route prefix ("" or "/api" style).
func (s ScoringConfig) Prefix() string {
	p := strings.TrimRight(strings.TrimSpace(s.PathPrefix), "/")
	if p != "" && !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// URL returns the trimmed base URL.
func (s ScoringConfig) URL() string {
	return strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
}

type CacheConfig struct {
	Redis          RedisConfig `mapstructure:"redis"`
	TranslationTTL int         `mapstructure:"translation_ttl"` // milliseconds
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Enabled reports whether a Redis address was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.Address) != ""
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

type SessionConfig struct {
	DefaultLanguage string `mapstructure:"default_language"`
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
