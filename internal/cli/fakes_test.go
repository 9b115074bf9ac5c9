package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/lewisedginton/shopping_chat_client/pkg/logger"
)

type backends struct {
	mu      sync.Mutex
	queries []string
	chat    *httptest.Server
	shop    *httptest.Server
}

func (b *backends) Queries() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.queries...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newBackends(t *testing.T) *backends {
	b := &backends{}

	chat := chi.NewRouter()
	chat.Post("/chat", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		q, _ := body["query"].(string)
		b.mu.Lock()
		b.queries = append(b.queries, q)
		b.mu.Unlock()

		sid, _ := body["session_id"].(string)
		switch {
		case q == "reset_conversation" && sid == "":
			sid = "new-1"
		case sid == "":
			sid = "abc123"
		}

		resp := map[string]any{"text": "ok", "session_id": sid}
		if q == "find shoes" {
			resp["text"] = "Here are some **shoes**"
			resp["products"] = []map[string]any{
				{"id": "p1", "name": "Shoe", "description": "Comfortable running shoe", "price": 49.99},
			}
		}
		writeJSON(w, http.StatusOK, resp)
	})
	chat.Get("/session/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") != "abc123" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Session not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"session_id": "abc123",
			"chat_history": []map[string]string{
				{"sender": "user", "message": "find shoes", "timestamp": "2024-01-01T10:00:00"},
				{"sender": "chatbot", "message": "Here are some shoes", "timestamp": "2024-01-01T10:00:01"},
			},
		})
	})
	b.chat = httptest.NewServer(chat)
	t.Cleanup(b.chat.Close)

	shop := chi.NewRouter()
	shop.Post("/login", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		if in["username"] == "testuser" && in["password"] == "password" {
			writeJSON(w, http.StatusOK, map[string]any{"user_id": 1, "session_id": "tok-1"})
			return
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
	})
	b.shop = httptest.NewServer(shop)
	t.Cleanup(b.shop.Close)

	return b
}

// setEnv points the configuration at the fake backends and a private profile directory.
func setEnv(t *testing.T, b *backends) {
	t.Helper()
	t.Setenv("CHAT_API_URL", b.chat.URL)
	t.Setenv("COMMERCE_API_URL", b.shop.URL)
	t.Setenv("STORAGE_BACKEND", "local")
	t.Setenv("STORAGE_LOCAL_DIR", t.TempDir())
	t.Setenv("CHAT_PROFILE", "test")
	t.Setenv("METRICS_EXPOSE", "false")
}

// runApp runs one command line against an app built like the binary's.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := &cli.App{
		Name:   "shopping-chat",
		Writer: &out,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config-file"},
			&cli.StringFlag{Name: "profile"},
			&cli.BoolFlag{Name: "no-color", Value: true},
		},
		Before: func(ctx *cli.Context) error {
			ctx.App.Metadata = map[string]interface{}{"logger": logger.NewNopLogger()}
			return nil
		},
		Commands: []*cli.Command{
			SendCommand(),
			LoginCommand(),
			LogoutCommand(),
			ResetCommand(),
			StatusCommand(),
			HistoryCommand(),
			PingCommand(),
			ConfigCommand(),
		},
	}
	err := app.RunContext(context.Background(), append([]string{"shopping-chat"}, args...))
	return out.String(), err
}
