// Package httpmiddleware assembles the chi middleware stack for the client's local
// metrics and health listener.
package httpmiddleware

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lewisedginton/shopping_chat_client/pkg/logger"
	"github.com/unrolled/secure"
)

// HeartbeatPath answers 200 "." without touching any handler.
const HeartbeatPath = "/ping"

// Config selects which middleware ApplyToRouter installs.
type Config struct {
	Logger   logger.Logger   // Required for logging middleware
	CORS     *CORSConfig     // CORS configuration
	Security *secure.Options // Security headers configuration
	Timeout  time.Duration   // Request timeout duration

	EnableCorrelationID bool
	EnableLogging       bool // requires Logger
	EnableRecovery      bool
	EnableCORS          bool
	EnableSecurity      bool
	EnableHeartbeat     bool
	EnableTimeout       bool
}

// DefaultConfig returns the stack used for the metrics listener.
// Logging is disabled by default - set Logger and EnableLogging=true to enable.
func DefaultConfig() Config {
	corsConfig := DefaultCORSConfig()
	return Config{
		CORS: &corsConfig,
		Security: &secure.Options{
			ContentTypeNosniff: true,
			FrameDeny:          true,
			ReferrerPolicy:     "no-referrer",
		},
		Timeout: 10 * time.Second,

		EnableCorrelationID: true,
		EnableRecovery:      true,
		EnableCORS:          true,
		EnableSecurity:      true,
		EnableHeartbeat:     true,
		EnableTimeout:       true,
	}
}

// WithLogger is DefaultConfig with request logging to log.
func WithLogger(log logger.Logger) Config {
	config := DefaultConfig()
	config.Logger = log
	config.EnableLogging = true
	return config
}

// ApplyToRouter installs the configured middleware, outermost first:
// correlation ID, security headers, logging, recovery, CORS, timeout, heartbeat.
func ApplyToRouter(router chi.Router, config Config) {
	if config.EnableCorrelationID {
		router.Use(CorrelationID())
	}
	if config.EnableSecurity {
		router.Use(Security(config.Security))
	}
	if config.EnableLogging && config.Logger != nil {
		router.Use(NewHTTPLogger(config.Logger).Middleware)
	}
	if config.EnableRecovery {
		router.Use(middleware.Recoverer)
	}
	if config.EnableCORS && config.CORS != nil {
		router.Use(CORS(*config.CORS))
	}
	if config.EnableTimeout && config.Timeout > 0 {
		router.Use(middleware.Timeout(config.Timeout))
	}
	if config.EnableHeartbeat {
		router.Use(middleware.Heartbeat(HeartbeatPath))
	}
}
