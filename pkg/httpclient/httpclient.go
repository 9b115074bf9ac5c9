// Package httpclient builds the HTTP client shared by the backend API clients and
// provides a small JSON request helper on top of it.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/lewisedginton/shopping_chat_client/pkg/config"
	"github.com/lewisedginton/shopping_chat_client/pkg/logger"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// userAgentTransport sets User-Agent on requests that don't carry one.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.userAgent == "" || req.Header.Get("User-Agent") != "" {
		return t.base.RoundTrip(req)
	}
	out := req.Clone(req.Context())
	out.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(out)
}

// New returns an *http.Client with the configured timeout, user agent and request logging.
func New(cfg config.HTTPClientConfig, log logger.Logger) *http.Client {
	return &http.Client{
		Timeout: cfg.Timeout(),
		Transport: &userAgentTransport{
			base:      logger.NewTransport(nil, log),
			userAgent: cfg.UserAgent,
		},
	}
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the body into out.
func (r *Response) Decode(out any) error {
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// DoJSON sends body (nil for none) as JSON and reads the whole response.
// Only transport and encoding problems are errors; any HTTP status is returned to the caller.
func DoJSON(ctx context.Context, client *http.Client, method, url string, body any) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reqBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(reqBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}
