package config

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
)

// HTTPClientConfig holds settings for outgoing HTTP calls
type HTTPClientConfig struct {
	// TimeoutSeconds bounds a whole request including reading the body. Zero disables the
	// timeout, in which case a hung backend leaves that one message pending forever.
	TimeoutSeconds int `env:"HTTP_TIMEOUT_SECONDS" yaml:"timeout_seconds" default:"30"`

	// UserAgent is sent on every request
	UserAgent string `env:"HTTP_USER_AGENT" yaml:"user_agent" default:"shopping-chat-client"`
}

// Validate rejects negative timeouts
func (h HTTPClientConfig) Validate() error {
	var result error
	if h.TimeoutSeconds < 0 {
		result = multierror.Append(result, fmt.Errorf("http timeout must not be negative, got %d", h.TimeoutSeconds))
	}
	return result
}

// Timeout returns TimeoutSeconds as a time.Duration
func (h HTTPClientConfig) Timeout() time.Duration {
	return time.Duration(h.TimeoutSeconds) * time.Second
}
