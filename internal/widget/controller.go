// Package widget is the chat session controller: it owns the session context and the
// transcript, talks to the chat and commerce backends and drives a View.
package widget

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/lewisedginton/shopping_chat_client/internal/chatapi"
	"github.com/lewisedginton/shopping_chat_client/internal/commerce"
	"github.com/lewisedginton/shopping_chat_client/internal/profile"
	"github.com/lewisedginton/shopping_chat_client/internal/transcript"
	"github.com/lewisedginton/shopping_chat_client/pkg/logger"
	"github.com/lewisedginton/shopping_chat_client/pkg/metrics"
)

// User-facing messages.
const (
	MsgChatUnavailable  = "Sorry, I am having trouble connecting to my brain right now. Please try again later."
	MsgLoginFailed      = "Login failed. Please check your credentials."
	MsgLoginUnreachable = "Could not connect to login service."
	MsgLoggedOut        = "You have been logged out."
	MsgReset            = "Conversation has been reset. How can I help you start fresh?"

	// QueryReset asks the gateway to drop its server-side conversation state.
	QueryReset = "reset_conversation"
	// QueryLoggedIn tells the gateway a login happened.
	QueryLoggedIn = "user logged in"

	// ExtraProductID is the extra key carried by add-to-cart sends.
	ExtraProductID = "productId"
)

// WelcomeMessage is shown after a successful login.
func WelcomeMessage(username string) string {
	return fmt.Sprintf("Hello %s! You are now logged in. How can I help you today?", username)
}

// ChatAPI is the subset of the chat gateway client the controller uses.
type ChatAPI interface {
	Chat(ctx context.Context, req chatapi.ChatRequest) (*chatapi.ChatResponse, error)
	Session(ctx context.Context, sessionID string) (*chatapi.SessionInfo, error)
}

// LoginAPI is the subset of the commerce client the controller uses.
type LoginAPI interface {
	Login(ctx context.Context, username, password string) (*commerce.LoginResult, error)
}

// Deps are the controller's collaborators. Metrics and Now are optional.
type Deps struct {
	Chat     ChatAPI
	Commerce LoginAPI
	Store    profile.Store
	View     View
	Log      logger.Logger
	Metrics  *metrics.Metrics
	Now      func() time.Time

	PrefillUsername string
	PrefillPassword string
}

// Controller implements the chat session operations. All methods are safe for concurrent
// use; each UI action may run on its own goroutine.
type Controller struct {
	chat     ChatAPI
	commerce LoginAPI
	store    profile.Store
	view     View
	log      logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time

	prefillUsername string
	prefillPassword string

	// mu guards everything below and serializes View calls and store writes.
	mu         sync.Mutex
	session    Session
	transcript *transcript.Transcript
	loginOpen  bool

	background sync.WaitGroup
}

// New loads the persisted session and shows the initial login status.
func New(ctx context.Context, deps Deps) (*Controller, error) {
	if deps.Chat == nil || deps.Commerce == nil || deps.Store == nil || deps.View == nil {
		return nil, errors.New("widget: chat, commerce, store and view are required")
	}

	c := &Controller{
		chat:            deps.Chat,
		commerce:        deps.Commerce,
		store:           deps.Store,
		view:            deps.View,
		log:             deps.Log,
		metrics:         deps.Metrics,
		now:             deps.Now,
		prefillUsername: deps.PrefillUsername,
		prefillPassword: deps.PrefillPassword,
		transcript:      transcript.New(),
	}
	if c.log == nil {
		c.log = logger.NewNopLogger()
	}
	if c.now == nil {
		c.now = time.Now
	}

	c.session = c.loadSession(ctx)
	c.log.Debug("Session loaded",
		logger.SessionIDField(c.session.SessionID),
		logger.BoolField("logged_in", c.session.UserID != "" && c.session.Username != ""))

	c.UpdateLoginStatus()
	return c, nil
}

func (c *Controller) loadSession(ctx context.Context) Session {
	var s Session
	for key, dst := range map[string]*string{
		profile.KeySessionID:    &s.SessionID,
		profile.KeyUserID:       &s.UserID,
		profile.KeyUsername:     &s.Username,
		profile.KeySessionToken: &s.Token,
	} {
		v, ok, err := c.store.Get(ctx, key)
		if err != nil {
			c.log.Warn("Failed to read profile key", logger.StringField("key", key), logger.ErrorField(err))
			continue
		}
		if ok {
			*dst = v
		}
	}
	return s
}

// setLocked persists one key. Failures are logged; memory stays authoritative.
func (c *Controller) setLocked(ctx context.Context, key, value string) {
	if err := c.store.Set(ctx, key, value); err != nil {
		c.log.Warn("Failed to persist profile key", logger.StringField("key", key), logger.ErrorField(err))
	}
}

func (c *Controller) removeLocked(ctx context.Context, keys ...string) {
	if err := c.store.Remove(ctx, keys...); err != nil {
		c.log.Warn("Failed to remove profile keys", logger.Field("keys", keys), logger.ErrorField(err))
	}
}

func (c *Controller) appendLocked(sender transcript.Sender, text string, products []chatapi.Product, at time.Time) transcript.Entry {
	e := c.transcript.Append(sender, text, products, at)
	c.view.ShowEntry(e)
	c.metrics.IncTranscript(string(sender))
	return e
}

// goBackground runs fn as a tracked background task. Its context keeps the caller's values but not
// its cancellation, so the task outlives the action that started it.
func (c *Controller) goBackground(ctx context.Context, name string, fn func(ctx context.Context)) {
	bctx := context.WithoutCancel(ctx)
	c.background.Add(1)
	go func() {
		defer c.background.Done()
		c.log.Debug("Background task started", logger.StringField("task", name))
		fn(bctx)
	}()
}

// Wait blocks until every background task has finished.
func (c *Controller) Wait() {
	c.background.Wait()
}

func hasProductID(extra map[string]any) bool {
	v, ok := extra[ExtraProductID]
	if !ok || v == nil {
		return false
	}
	if s, isString := v.(string); isString {
		return s != ""
	}
	return true
}

// SendMessage shows the user's message, sends it to the chat gateway and shows the reply.
// An empty query is ignored unless extra carries a product id.
func (c *Controller) SendMessage(ctx context.Context, query string, extra map[string]any) {
	if strings.TrimSpace(query) == "" && !hasProductID(extra) {
		return
	}

	c.mu.Lock()
	c.appendLocked(transcript.SenderUser, query, nil, c.now())
	c.view.ClearInput()
	req := chatapi.ChatRequest{
		Query:            query,
		SessionID:        c.session.SessionID,
		UserID:           c.session.UserID,
		LoggedInUserID:   c.session.UserID,
		LoggedInUsername: c.session.Username,
		Extra:            extra,
	}
	c.mu.Unlock()

	log := c.log.WithFields(logger.SessionIDField(req.SessionID))
	resp, err := c.chat.Chat(ctx, req)
	if err != nil {
		log.Error("Error sending message to chatbot", logger.ErrorField(err))
		c.mu.Lock()
		c.appendLocked(transcript.SenderChatbot, MsgChatUnavailable, nil, c.now())
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if sid := resp.SessionID.String(); sid != "" && c.session.SessionID == "" {
		c.session.SessionID = sid
		c.setLocked(ctx, profile.KeySessionID, sid)
		log.Info("Adopted chat session", logger.StringField("new_session_id", sid))
	}
	if uid := resp.UserID.String(); uid != "" && c.session.UserID == "" {
		c.session.UserID = uid
		c.setLocked(ctx, profile.KeyUserID, uid)
	}
	c.appendLocked(transcript.SenderChatbot, resp.Text, resp.Products, c.now())
}

// AppendMessage adds one entry with optional product cards to the transcript.
func (c *Controller) AppendMessage(sender transcript.Sender, text string, products []chatapi.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.appendLocked(sender, text, products, c.now())
}

// AddToCart sends the add-to-cart query for product card n.
func (c *Controller) AddToCart(ctx context.Context, n int) error {
	c.mu.Lock()
	p, ok := c.transcript.Card(n)
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("no product card %d", n)
	}

	c.SendMessage(ctx, fmt.Sprintf("add %s to cart", p.Name), map[string]any{ExtraProductID: p.ID.String()})
	return nil
}

// HandleLogin logs in against the commerce backend. Failures are shown in the login form.
func (c *Controller) HandleLogin(ctx context.Context, username, password string) {
	c.mu.Lock()
	c.view.SetLoginMessage("")
	c.mu.Unlock()

	res, err := c.commerce.Login(ctx, username, password)
	if err != nil {
		msg := MsgLoginUnreachable
		var le *commerce.LoginError
		if errors.As(err, &le) {
			msg = MsgLoginFailed
			if le.Message != "" {
				msg = le.Message
			}
			c.log.Info("Login rejected", logger.StringField("username", username), logger.HTTPStatusField(le.StatusCode))
		} else {
			c.log.Error("Login API error", logger.ErrorField(err))
		}

		c.mu.Lock()
		c.view.SetLoginMessage(msg)
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	c.session.UserID = res.UserID.String()
	c.session.Username = username
	c.session.Token = res.Token.String()
	c.setLocked(ctx, profile.KeyUserID, c.session.UserID)
	c.setLocked(ctx, profile.KeyUsername, c.session.Username)
	c.setLocked(ctx, profile.KeySessionToken, c.session.Token)

	c.updateLoginStatusLocked()
	c.loginOpen = false
	c.view.HideLoginForm()
	c.appendLocked(transcript.SenderChatbot, WelcomeMessage(username), nil, c.now())

	notify := chatapi.ChatRequest{
		Query:            QueryLoggedIn,
		SessionID:        c.session.SessionID,
		UserID:           c.session.UserID,
		LoggedInUserID:   c.session.UserID,
		LoggedInUsername: c.session.Username,
	}
	c.mu.Unlock()

	c.log.Info("Logged in", logger.StringField("username", username), logger.StringField("user_id", notify.UserID))

	// The gateway only needs to hear about the login; its reply is not shown.
	c.goBackground(ctx, "login-notify", func(ctx context.Context) {
		if _, err := c.chat.Chat(ctx, notify); err != nil {
			c.log.Warn("Failed to notify chat gateway of login", logger.ErrorField(err))
		}
	})
}

// HandleLogout forgets the login identity locally. There is no network call.
func (c *Controller) HandleLogout(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.session.UserID = ""
	c.session.Username = ""
	c.session.Token = ""
	c.removeLocked(ctx, profile.KeyUserID, profile.KeyUsername, profile.KeySessionToken)

	c.updateLoginStatusLocked()
	c.appendLocked(transcript.SenderChatbot, MsgLoggedOut, nil, c.now())
	c.log.Info("Logged out")
}

func (c *Controller) updateLoginStatusLocked() Status {
	s := StatusFor(c.session.LoginState())
	c.view.SetLoginStatus(s)
	return s
}

// UpdateLoginStatus pushes the status for the current login state to the view.
func (c *Controller) UpdateLoginStatus() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updateLoginStatusLocked()
}

// ToggleLogin logs out when logged in, otherwise opens the prefilled login form.
// It reports whether the form was opened.
func (c *Controller) ToggleLogin(ctx context.Context) bool {
	c.mu.Lock()
	if _, in := c.session.LoginState().(LoggedIn); in {
		c.mu.Unlock()
		c.HandleLogout(ctx)
		return false
	}
	defer c.mu.Unlock()

	c.loginOpen = true
	c.view.SetLoginMessage("")
	c.view.ShowLoginForm(c.prefillUsername, c.prefillPassword)
	return true
}

// CloseLoginForm hides the login form.
func (c *Controller) CloseLoginForm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loginOpen = false
	c.view.HideLoginForm()
}

// LoginFormOpen reports whether the login form is showing.
func (c *Controller) LoginFormOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loginOpen
}

// Reset forgets the chat session and clears the transcript, then asks the gateway in the
// background to reset its side too.
func (c *Controller) Reset(ctx context.Context) {
	c.mu.Lock()
	c.removeLocked(ctx, profile.KeySessionID)
	previous := c.session.SessionID
	c.session.SessionID = ""
	c.transcript.Clear()
	c.view.ClearTranscript()
	c.appendLocked(transcript.SenderChatbot, MsgReset, nil, c.now())
	c.mu.Unlock()

	c.log.Info("Conversation reset", logger.StringField("previous_session_id", previous))

	c.goBackground(ctx, "reset", func(ctx context.Context) {
		c.SendMessage(ctx, QueryReset, nil)
	})
}

// historyTimeLayouts are the timestamp forms the gateway uses in chat_history.
var historyTimeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"}

func parseHistoryTime(s string) (time.Time, bool) {
	for _, layout := range historyTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// RestoreHistory replays the gateway's stored history for the held session, if any.
// It returns the number of entries restored; failures are logged and restore nothing.
func (c *Controller) RestoreHistory(ctx context.Context) int {
	c.mu.Lock()
	sid := c.session.SessionID
	c.mu.Unlock()
	if sid == "" {
		return 0
	}

	info, err := c.chat.Session(ctx, sid)
	if err != nil {
		if errors.Is(err, chatapi.ErrSessionNotFound) {
			c.log.Info("Stored session unknown to gateway", logger.SessionIDField(sid))
		} else {
			c.log.Warn("Failed to restore history", logger.SessionIDField(sid), logger.ErrorField(err))
		}
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session.SessionID != sid {
		// reset while the request was in flight
		return 0
	}

	for _, h := range info.ChatHistory {
		sender := transcript.SenderChatbot
		if h.Sender == string(transcript.SenderUser) {
			sender = transcript.SenderUser
		}
		at, ok := parseHistoryTime(h.Timestamp)
		if !ok {
			at = c.now()
		}
		c.appendLocked(sender, h.Message, nil, at)
	}
	return len(info.ChatHistory)
}

// Session returns a snapshot of the session context.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// LoginState returns the current login state.
func (c *Controller) LoginState() LoginState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.LoginState()
}

// Entries returns a snapshot of the transcript.
func (c *Controller) Entries() []transcript.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript.Entries()
}
