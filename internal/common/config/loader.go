// internal/common/config/loader.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

)

func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	// SCORING_BASE_URL overrides scoring.base_url and so on
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideEmptyConfig(&cfg)
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// AutomaticEnv only applies to keys viper already knows about.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"scoring.base_url",
		"scoring.path_prefix",
		"scoring.timeout",
		"cache.redis.address",
		"cache.redis.password",
		"cache.redis.db",
		"cache.translation_ttl",
		"logging.level",
		"logging.format",
		"logging.output",
		"metrics.enabled",
		"metrics.address",
		"session.default_language",
	} {
		_ = v.BindEnv(key)
	}
}

func loadEnvFile() string {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// Legacy variable names still set by older deployment scripts.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Scoring.BaseURL == "" {
		if val := os.Getenv("LOAN_API_URL"); val != "" {
			cfg.Scoring.BaseURL = val
		}
	}
	if cfg.Cache.Redis.Address == "" {
		if val := os.Getenv("REDIS_ADDRESS"); val != "" {
			cfg.Cache.Redis.Address = val
		}
	}
	if cfg.Cache.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Cache.Redis.Password = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "loanctl"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Scoring.PathPrefix == "" {
		cfg.Scoring.PathPrefix = "/api"
	}
	if cfg.Scoring.Timeout == 0 {
		cfg.Scoring.Timeout = 30000
	}

	if cfg.Cache.TranslationTTL == 0 {
		cfg.Cache.TranslationTTL = 24 * 60 * 60 * 1000
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}

	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = ":9102"
	}

	if cfg.Session.DefaultLanguage == "" {
		cfg.Session.DefaultLanguage = "en"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Scoring.BaseURL == "" {
		return fmt.Errorf("scoring.base_url is required")
	}

	u, err := url.Parse(cfg.Scoring.URL())
	if err != nil {
		return fmt.Errorf("scoring.base_url is not a valid URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("scoring.base_url must be an absolute http(s) URL, got %q", cfg.Scoring.BaseURL)
	}

	if cfg.Scoring.Timeout < 0 {
		return fmt.Errorf("scoring.timeout must not be negative")
	}

	return nil
}
