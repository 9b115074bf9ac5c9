// Package checkers holds health.Check implementations for the chat client's backends.
package checkers

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// HTTPChecker reports whether an HTTP backend answers at all. The chat and commerce
// backends have no health endpoint, so any response below 500 counts as reachable.
type HTTPChecker struct {
	url    string
	client *http.Client
	name   string
}

// NewHTTPChecker creates a checker that GETs url with client.
// If name is empty, defaults to the URL.
func NewHTTPChecker(name, url string, client *http.Client) *HTTPChecker {
	if name == "" {
		name = url
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPChecker{
		url:    url,
		name:   name,
		client: client,
	}
}

// Name returns the name of this health check.
func (h *HTTPChecker) Name() string {
	return h.name
}

// Check performs an HTTP GET request to the configured URL.
// Returns an error if the request fails or returns a 5xx status code.
func (h *HTTPChecker) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("unhealthy status code: %d", resp.StatusCode)
	}
	return nil
}
