package widget

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/lewisedginton/shopping_chat_client/internal/chatapi"
	"github.com/lewisedginton/shopping_chat_client/internal/commerce"
	"github.com/lewisedginton/shopping_chat_client/internal/profile"
	"github.com/lewisedginton/shopping_chat_client/internal/transcript"
	"github.com/lewisedginton/shopping_chat_client/pkg/config"
	"github.com/lewisedginton/shopping_chat_client/pkg/httpclient"
	"github.com/lewisedginton/shopping_chat_client/pkg/logger"
	"github.com/stretchr/testify/require"
)

// viewOp is one recorded View call.
type viewOp struct {
	Kind  string
	Entry transcript.Entry
	Text  string
}

type recordingView struct {
	mu        sync.Mutex
	ops       []viewOp
	entries   []transcript.Entry
	status    Status
	formOpen  bool
	prefill   [2]string
	loginMsg  string
	inputCuts int
}

func (v *recordingView) record(op viewOp) {
	v.ops = append(v.ops, op)
}

func (v *recordingView) ShowEntry(e transcript.Entry) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.entries = append(v.entries, e)
	v.record(viewOp{Kind: "entry", Entry: e, Text: e.Text})
}

func (v *recordingView) ClearTranscript() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.entries = nil
	v.record(viewOp{Kind: "clear"})
}

func (v *recordingView) ClearInput() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.inputCuts++
}

func (v *recordingView) SetLoginStatus(s Status) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.status = s
	v.record(viewOp{Kind: "status", Text: s.Label})
}

func (v *recordingView) ShowLoginForm(username, password string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.formOpen = true
	v.prefill = [2]string{username, password}
}

func (v *recordingView) HideLoginForm() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.formOpen = false
}

func (v *recordingView) SetLoginMessage(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.loginMsg = msg
}

func (v *recordingView) Entries() []transcript.Entry {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]transcript.Entry, len(v.entries))
	copy(out, v.entries)
	return out
}

func (v *recordingView) Texts() []string {
	var out []string
	for _, e := range v.Entries() {
		out = append(out, e.Text)
	}
	return out
}

func (v *recordingView) Ops() []viewOp {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]viewOp, len(v.ops))
	copy(out, v.ops)
	return out
}

func (v *recordingView) Status() Status {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

func (v *recordingView) LoginMessage() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loginMsg
}

func (v *recordingView) InputCuts() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.inputCuts
}

func (v *recordingView) FormOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.formOpen
}

// fakeGateway is a chat gateway whose reply depends on the query.
type fakeGateway struct {
	t       *testing.T
	mu      sync.Mutex
	bodies  []map[string]any
	release chan struct{}
	started chan struct{}
	srv     *httptest.Server
}

func newFakeGateway(t *testing.T) *fakeGateway {
	g := &fakeGateway{
		t:       t,
		release: make(chan struct{}),
		started: make(chan struct{}, 1),
	}

	r := chi.NewRouter()
	r.Post("/chat", g.chat)
	r.Get("/session/{id}", g.session)
	g.srv = httptest.NewServer(r)
	t.Cleanup(g.srv.Close)
	return g
}

func (g *fakeGateway) Bodies() []map[string]any {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]map[string]any, len(g.bodies))
	copy(out, g.bodies)
	return out
}

func (g *fakeGateway) Queries() []string {
	var out []string
	for _, b := range g.Bodies() {
		q, _ := b["query"].(string)
		out = append(out, q)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (g *fakeGateway) chat(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	require.NoError(g.t, json.NewDecoder(r.Body).Decode(&body))

	g.mu.Lock()
	g.bodies = append(g.bodies, body)
	g.mu.Unlock()

	sid, _ := body["session_id"].(string)
	if sid == "" {
		sid = "abc123"
	}

	switch body["query"] {
	case "find shoes":
		writeJSON(w, http.StatusOK, map[string]any{
			"text": "Here are some shoes",
			"products": []map[string]any{
				{"id": "p1", "name": "Shoe", "description": "...", "price": 49.99},
			},
			"session_id": sid,
			"user_id":    "guest",
		})
	case "other session":
		writeJSON(w, http.StatusOK, map[string]any{"text": "hi", "session_id": "zzz999"})
	case "block":
		g.started <- struct{}{}
		<-g.release
		writeJSON(w, http.StatusOK, map[string]any{"text": "unblocked", "session_id": sid})
	case "fail":
		http.Error(w, "boom", http.StatusInternalServerError)
	case "no text":
		writeJSON(w, http.StatusOK, map[string]any{"session_id": sid})
	case QueryReset:
		if body["session_id"] == nil {
			sid = "new-1"
		}
		writeJSON(w, http.StatusOK, map[string]any{"text": "Starting fresh", "session_id": sid})
	default:
		writeJSON(w, http.StatusOK, map[string]any{"text": "ok", "session_id": sid})
	}
}

func (g *fakeGateway) session(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "id") != "abc123" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Session not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": "abc123",
		"user_id":    "guest",
		"chat_history": []map[string]string{
			{"sender": "user", "message": "find shoes", "timestamp": "2024-01-01T10:00:00.123456"},
			{"sender": "chatbot", "message": "Here are some shoes", "timestamp": "2024-01-01T10:00:01.654321"},
		},
	})
}

func newFakeCommerce(t *testing.T) *httptest.Server {
	r := chi.NewRouter()
	r.Post("/login", func(w http.ResponseWriter, req *http.Request) {
		var in map[string]string
		require.NoError(t, json.NewDecoder(req.Body).Decode(&in))
		switch {
		case in["username"] == "testuser" && in["password"] == "password":
			writeJSON(w, http.StatusOK, map[string]any{"message": "Login successful", "user_id": 1, "session_id": "tok-1"})
		case in["username"] == "silent":
			writeJSON(w, http.StatusForbidden, map[string]any{})
		default:
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		}
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

type harness struct {
	ctrl     *Controller
	view     *recordingView
	store    *profile.MemoryStore
	gateway  *fakeGateway
	commerce *httptest.Server
}

type harnessOption func(*harnessConfig)

type harnessConfig struct {
	chatURL     string
	commerceURL string
	seed        map[string]string
}

func withChatURL(u string) harnessOption {
	return func(c *harnessConfig) { c.chatURL = u }
}

func withCommerceURL(u string) harnessOption {
	return func(c *harnessConfig) { c.commerceURL = u }
}

func withSeed(kv map[string]string) harnessOption {
	return func(c *harnessConfig) { c.seed = kv }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	h := &harness{
		view:     &recordingView{},
		store:    profile.NewMemoryStore(),
		gateway:  newFakeGateway(t),
		commerce: newFakeCommerce(t),
	}
	cfg := harnessConfig{chatURL: h.gateway.srv.URL, commerceURL: h.commerce.URL}
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx := context.Background()
	for k, v := range cfg.seed {
		require.NoError(t, h.store.Set(ctx, k, v))
	}

	log := logger.NewNopLogger()
	httpClient := httpclient.New(config.HTTPClientConfig{TimeoutSeconds: 5}, log)

	ctrl, err := New(ctx, Deps{
		Chat:            chatapi.NewClient(cfg.chatURL, httpClient),
		Commerce:        commerce.NewClient(cfg.commerceURL, httpClient, nil, log),
		Store:           h.store,
		View:            h.view,
		Log:             log,
		PrefillUsername: "testuser",
		PrefillPassword: "password",
	})
	require.NoError(t, err)
	h.ctrl = ctrl
	t.Cleanup(ctrl.Wait)
	return h
}

func (h *harness) stored(t *testing.T, key string) (string, bool) {
	t.Helper()
	v, ok, err := h.store.Get(context.Background(), key)
	require.NoError(t, err)
	return v, ok
}
