package logger

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Transport is an http.RoundTripper that stamps a correlation ID on every outgoing
// request and logs the request and its outcome.
type Transport struct {
	Base http.RoundTripper
	Log  Logger
}

// NewTransport wraps base (http.DefaultTransport when nil) with request logging.
func NewTransport(base http.RoundTripper, log Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{Base: base, Log: log}
}

// EnsureCorrelationID ensures context has a correlation ID, generating one if needed
func EnsureCorrelationID(ctx context.Context) (context.Context, string) {
	if correlationID := GetCorrelationIDFromContext(ctx); correlationID != "" {
		return ctx, correlationID
	}

	correlationID := uuid.New().String()
	return WithCorrelationIDContext(ctx, correlationID), correlationID
}

// RoundTrip implements http.RoundTripper
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	ctx, correlationID := EnsureCorrelationID(req.Context())

	// RoundTrippers must not mutate the caller's request
	out := req.Clone(ctx)
	out.Header.Set(CorrelationIDHeader, correlationID)

	requestLogger := t.Log.WithFields(
		HTTPMethodField(out.Method),
		HTTPURLField(out.URL.String()),
		CorrelationIDField(correlationID),
	)
	requestLogger.Debug("HTTP request sent")

	resp, err := t.Base.RoundTrip(out)
	duration := time.Since(start)
	if err != nil {
		requestLogger.Warn("HTTP request failed",
			ErrorField(err),
			DurationField("duration", duration))
		return nil, err
	}

	requestLogger.Debug("HTTP response received",
		HTTPStatusField(resp.StatusCode),
		DurationField("duration", duration))
	return resp, nil
}
