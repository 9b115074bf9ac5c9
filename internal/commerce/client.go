// Package commerce is the client for the commerce backend's login endpoint.
package commerce

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lewisedginton/shopping_chat_client/internal/chatapi"
	"github.com/lewisedginton/shopping_chat_client/pkg/httpclient"
	"github.com/lewisedginton/shopping_chat_client/pkg/logger"
	"github.com/lewisedginton/shopping_chat_client/pkg/metrics"
)

// LoginError is a non-2xx reply from POST /login. Message is the server's error text, if any.
type LoginError struct {
	StatusCode int
	Message    string
}

func (e *LoginError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("login rejected with status %d", e.StatusCode)
	}
	return fmt.Sprintf("login rejected with status %d: %s", e.StatusCode, e.Message)
}

// LoginResult is the success body of POST /login. Token is a mock session token.
type LoginResult struct {
	UserID  chatapi.ID `json:"user_id"`
	Token   chatapi.ID `json:"session_id"`
	Message string     `json:"message"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Client talks to the commerce backend.
type Client struct {
	baseURL string
	client  *http.Client
	metrics *metrics.Metrics
	log     logger.Logger
}

// NewClient creates a client for the backend at baseURL, e.g. http://localhost:5000.
// m may be nil.
func NewClient(baseURL string, httpClient *http.Client, m *metrics.Metrics, log logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
		metrics: m,
		log:     log,
	}
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login posts credentials. A rejection is returned as *LoginError; anything else is a
// transport or decoding failure.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	start := time.Now()

	resp, err := httpclient.DoJSON(ctx, c.client, http.MethodPost, c.baseURL+"/login",
		loginRequest{Username: username, Password: password})
	if err != nil {
		c.metrics.ObserveLogin(metrics.OutcomeTransportError, time.Since(start))
		return nil, fmt.Errorf("login request: %w", err)
	}

	if !resp.OK() {
		c.metrics.ObserveLogin(metrics.OutcomeRejected, time.Since(start))
		var body errorBody
		// a non-JSON error page still counts as a rejection
		_ = resp.Decode(&body)
		return nil, &LoginError{StatusCode: resp.StatusCode, Message: body.Error}
	}

	var out LoginResult
	if err := resp.Decode(&out); err != nil {
		c.metrics.ObserveLogin(metrics.OutcomeDecodeError, time.Since(start))
		return nil, fmt.Errorf("login response: %w", err)
	}

	c.metrics.ObserveLogin(metrics.OutcomeOK, time.Since(start))
	c.log.Debug("Login accepted",
		logger.StringField("username", username),
		logger.StringField("user_id", out.UserID.String()))
	return &out, nil
}
