package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/hashicorp/go-multierror"
	pkgconfig "github.com/lewisedginton/shopping_chat_client/pkg/config"
	"github.com/lewisedginton/shopping_chat_client/pkg/logger"
)

// AppConfig holds all chat client configuration
type AppConfig struct {
	pkgconfig.CommonConfig `yaml:",inline"`

	// Backends
	ChatAPIURL     string `env:"CHAT_API_URL" yaml:"chat_api_url" default:"http://localhost:5001"`
	CommerceAPIURL string `env:"COMMERCE_API_URL" yaml:"commerce_api_url" default:"http://localhost:5000"`

	// Profile names the key/value namespace that holds session and login state
	Profile string `env:"CHAT_PROFILE" yaml:"profile" default:"default"`

	// HistoryFile is the readline history file; empty disables history
	HistoryFile string `env:"CHAT_HISTORY_FILE" yaml:"history_file"`

	HTTP       pkgconfig.HTTPClientConfig `yaml:"http"`
	Metrics    pkgconfig.MetricsConfig    `yaml:"metrics"`
	Storage    StorageConfig              `yaml:"storage"`
	Login      LoginConfig                `yaml:"login"`
	Monitoring MonitoringConfig           `yaml:"monitoring"`
}

// LoginConfig holds the demo credentials prefilled into the login form
type LoginConfig struct {
	PrefillUsername string `env:"LOGIN_PREFILL_USERNAME" yaml:"prefill_username" default:"testuser"`
	PrefillPassword string `env:"LOGIN_PREFILL_PASSWORD" yaml:"prefill_password" default:"password"`
}

func validateBaseURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", name, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host, got %q", name, raw)
	}
	return nil
}

// Validate validates the configuration and returns every problem found
func (c *AppConfig) Validate() error {
	var result error

	if err := c.CommonConfig.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.HTTP.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.Metrics.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.Storage.Validate(); err != nil {
		result = multierror.Append(result, err)
	}

	if err := validateBaseURL("chat_api_url", c.ChatAPIURL); err != nil {
		result = multierror.Append(result, err)
	}
	if err := validateBaseURL("commerce_api_url", c.CommerceAPIURL); err != nil {
		result = multierror.Append(result, err)
	}

	if p := strings.TrimSpace(c.Profile); p == "" || p == "." || p == ".." || strings.ContainsAny(c.Profile, `/\:`) {
		result = multierror.Append(result, fmt.Errorf("profile must be a plain name, got %q", c.Profile))
	}

	if c.Monitoring.HealthCheckTimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("health_check_timeout must be greater than 0"))
	}

	return result
}

// GetLogLevel returns the parsed logger level
func (c *AppConfig) GetLogLevel() logger.Level {
	return logger.ParseLevel(c.LogLevel)
}

// LogConfig logs the current configuration (without sensitive data)
func (c *AppConfig) LogConfig(log logger.Logger) {
	log.Info("Application configuration loaded",
		logger.StringField("chat_api_url", c.ChatAPIURL),
		logger.StringField("commerce_api_url", c.CommerceAPIURL),
		logger.StringField("profile", c.Profile),
		logger.StringField("storage_backend", c.Storage.Backend),
		logger.IntField("http_timeout_seconds", c.HTTP.TimeoutSeconds),
		logger.StringField("log_level", c.LogLevel),
		logger.BoolField("metrics_exposed", c.Metrics.ExposeMetrics),
		logger.BoolField("redis_password_set", c.Storage.RedisPassword != ""),
	)
}
