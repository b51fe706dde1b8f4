// internal/loan/submit-application/config.go
package submitapplication

import (
	"loan-approval-client/internal/common/config"
	"loan-approval-client/internal/models"
)

type Config struct {
	DefaultLanguage string
	// BaseURL is quoted in the guidance shown when the service is unreachable.
	BaseURL string
}

func LoadConfig(appCfg *config.Config) *Config {
	cfg := &Config{DefaultLanguage: models.DefaultLanguage}
	if appCfg == nil {
		return cfg
	}
	if appCfg.Session.DefaultLanguage != "" {
		cfg.DefaultLanguage = appCfg.Session.DefaultLanguage
	}
	cfg.BaseURL = appCfg.Scoring.URL()
	return cfg
}
