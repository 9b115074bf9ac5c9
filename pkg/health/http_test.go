package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler(t *testing.T) {
	t.Run("healthy response", func(t *testing.T) {
		h := New()
		h.Add(&mockCheck{name: "chat-api"})

		w := httptest.NewRecorder()
		h.Handler()(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response Response
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "healthy", response.Status)
		assert.Equal(t, "ok", response.Checks["chat-api"].Status)
	})

	t.Run("unhealthy response", func(t *testing.T) {
		h := New()
		h.Add(&mockCheck{name: "chat-api", err: errors.New("service unavailable")})

		w := httptest.NewRecorder()
		h.Handler()(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var response Response
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "unhealthy", response.Status)
		assert.NotEmpty(t, response.Message)
		assert.Equal(t, "error", response.Checks["chat-api"].Status)
		assert.Equal(t, "service unavailable", response.Checks["chat-api"].Error)
	})
}

func TestNewResponse(t *testing.T) {
	report := &Report{Checks: []CheckResult{{Name: "redis", Error: "refused"}}}
	resp := NewResponse(report, errors.New("checks failed: [redis]"))

	assert.Equal(t, "unhealthy", resp.Status)
	assert.Equal(t, "checks failed: [redis]", resp.Message)
	assert.Equal(t, CheckStatus{Status: "error", Error: "refused", Latency: "0s"}, resp.Checks["redis"])
}
