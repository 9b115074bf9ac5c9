package httpmiddleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/lewisedginton/shopping_chat_client/pkg/logger"
)

// HTTPLogger logs one line per served request. Scrapes are frequent, so it logs at debug.
type HTTPLogger struct {
	logger logger.Logger
}

// NewHTTPLogger creates a new HTTP logger middleware
func NewHTTPLogger(log logger.Logger) *HTTPLogger {
	return &HTTPLogger{logger: log}
}

// Middleware returns the HTTP logging middleware
func (h *HTTPLogger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		h.logger.Debug("HTTP request served",
			logger.StringField("client_ip", r.RemoteAddr),
			logger.HTTPMethodField(r.Method),
			logger.StringField("http_path", r.URL.Path),
			logger.CorrelationIDField(r.Header.Get(logger.CorrelationIDHeader)),
			logger.HTTPStatusField(ww.Status()),
			logger.IntField("response_bytes", ww.BytesWritten()),
			logger.DurationField("duration", time.Since(start)))
	})
}
