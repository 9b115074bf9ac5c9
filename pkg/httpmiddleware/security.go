package httpmiddleware

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/unrolled/secure"
)

// CORSConfig represents CORS configuration options
type CORSConfig struct {
	AllowedMethods []string
	AllowedHeaders []string
	AllowedOrigins []string
	MaxAge         int
}

// DefaultCORSConfig allows read-only access from local dashboards.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Origin", "Accept"},
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		MaxAge:         300,
	}
}

// CORS middleware configures Cross-Origin Resource Sharing
func CORS(config CORSConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedMethods: config.AllowedMethods,
		AllowedHeaders: config.AllowedHeaders,
		AllowedOrigins: config.AllowedOrigins,
		MaxAge:         config.MaxAge,
	})
}

// Security middleware adds security headers
func Security(opts *secure.Options) func(http.Handler) http.Handler {
	if opts == nil {
		return secure.New().Handler
	}
	return secure.New(*opts).Handler
}
