// Package chatapi is the client for the chat gateway's HTTP API.
package chatapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lewisedginton/shopping_chat_client/pkg/httpclient"
	"github.com/lewisedginton/shopping_chat_client/pkg/logger"
	"github.com/lewisedginton/shopping_chat_client/pkg/metrics"
)

// Client talks to the chat gateway.
type Client struct {
	baseURL string
	client  *http.Client
	metrics *metrics.Metrics
	log     logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithMetrics records request outcomes and durations.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient creates a client for the gateway at baseURL, e.g. http://localhost:5001.
func NewClient(baseURL string, httpClient *http.Client, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
		log:     logger.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the gateway base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Chat sends one query and returns the gateway's reply.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	start := time.Now()

	resp, err := httpclient.DoJSON(ctx, c.client, http.MethodPost, c.baseURL+"/chat", req)
	if err != nil {
		c.metrics.ObserveChat(metrics.OutcomeTransportError, time.Since(start))
		return nil, fmt.Errorf("chat request: %w", err)
	}
	if !resp.OK() {
		c.metrics.ObserveChat(metrics.OutcomeStatusError, time.Since(start))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}

	var reply chatReply
	if err := resp.Decode(&reply); err != nil {
		c.metrics.ObserveChat(metrics.OutcomeDecodeError, time.Since(start))
		return nil, fmt.Errorf("chat response: %w", err)
	}
	if reply.Text == nil {
		c.metrics.ObserveChat(metrics.OutcomeDecodeError, time.Since(start))
		return nil, fmt.Errorf("chat response: %w", ErrMissingText)
	}
	out := reply.ChatResponse
	out.Text = *reply.Text

	c.metrics.ObserveChat(metrics.OutcomeOK, time.Since(start))
	c.log.Debug("Chat reply received",
		logger.SessionIDField(out.SessionID.String()),
		logger.IntField("products", len(out.Products)))
	return &out, nil
}

// Session fetches the stored history of a session. A 404 yields ErrSessionNotFound.
func (c *Client) Session(ctx context.Context, sessionID string) (*SessionInfo, error) {
	start := time.Now()
	defer func() { c.metrics.ObserveHistory(time.Since(start)) }()

	resp, err := httpclient.DoJSON(ctx, c.client, http.MethodGet, c.baseURL+"/session/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return nil, fmt.Errorf("session request: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrSessionNotFound)
	}
	if !resp.OK() {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}

	var out SessionInfo
	if err := resp.Decode(&out); err != nil {
		return nil, fmt.Errorf("session response: %w", err)
	}
	return &out, nil
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
