package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/ergochat/readline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/lewisedginton/shopping_chat_client/internal/config"
	"github.com/lewisedginton/shopping_chat_client/internal/widget"
	"github.com/lewisedginton/shopping_chat_client/pkg/config"
	"github.com/lewisedginton/shopping_chat_client/pkg/logger"
)

// scriptReader replays lines. settle runs before each line so that actions started by the
// previous line have finished.
type scriptReader struct {
	lines   []string
	prompts []string
	settle  func()
}

func (s *scriptReader) SetPrompt(p string) {
	s.prompts = append(s.prompts, p)
}

func (s *scriptReader) Readline() (string, error) {
	if s.settle != nil {
		s.settle()
	}
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func newTestSession(t *testing.T) (*chatSession, *backends, *bytes.Buffer) {
	t.Helper()
	b := newBackends(t)
	setEnv(t, b)

	cfg := &appconfig.AppConfig{}
	require.NoError(t, config.GetConfigFromEnvVars(cfg))

	var out bytes.Buffer
	s, err := openSession(context.Background(), cfg, logger.NewNopLogger(), NewTerminalView(&out, false))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s, b, &out
}

func runScript(t *testing.T, s *chatSession, secret string, lines ...string) *scriptReader {
	t.Helper()
	in := &scriptReader{lines: lines}
	readSecret := func(string) (string, error) { return secret, nil }
	repl := NewREPL(s.ctrl, s.view, in, readSecret, logger.NewNopLogger())
	in.settle = func() {
		repl.wg.Wait()
		s.ctrl.Wait()
	}
	require.NoError(t, repl.Run(context.Background()))
	s.ctrl.Wait()
	return in
}

func TestREPLChatAndCart(t *testing.T) {
	s, b, out := newTestSession(t)

	runScript(t, s, "", "find shoes", "/cart 1", "/cart 7", "/cart x", "   ")

	assert.Equal(t, []string{"find shoes", "add Shoe to cart"}, b.Queries())
	text := out.String()
	assert.Contains(t, text, "Here are some shoes")
	assert.Contains(t, text, "There is no product card 7.")
	assert.Contains(t, text, "Usage: /cart <card number>")
}

func TestREPLLoginWithPrefill(t *testing.T) {
	s, b, out := newTestSession(t)

	in := runScript(t, s, "", "/login", "", "/status")

	assert.Equal(t, widget.LoggedIn{UserID: "1", Username: "testuser"}, s.ctrl.LoginState())
	assert.Contains(t, in.prompts, "username [testuser]: ")
	assert.Contains(t, b.Queries(), "user logged in")
	text := out.String()
	assert.Contains(t, text, "● Logged In as testuser  [/logout]")
	assert.Contains(t, text, "Logged In as testuser, session (none yet)")
	assert.False(t, s.view.FormOpen())
}

func TestREPLLoginRejected(t *testing.T) {
	s, _, out := newTestSession(t)

	runScript(t, s, "wrong", "/login", "mallory")

	assert.Equal(t, widget.LoggedOut{}, s.ctrl.LoginState())
	text := out.String()
	assert.Contains(t, text, "Invalid credentials")
	assert.Contains(t, text, "Type /login to try again.")
	assert.False(t, s.ctrl.LoginFormOpen())
}

func TestREPLLoginTogglesToLogout(t *testing.T) {
	s, _, out := newTestSession(t)

	runScript(t, s, "", "/logout", "/login", "", "/login")

	assert.Equal(t, widget.LoggedOut{}, s.ctrl.LoginState())
	text := out.String()
	assert.Contains(t, text, "Not logged in.")
	assert.Contains(t, text, "You have been logged out.")
}

func TestREPLResetHelpAndQuit(t *testing.T) {
	s, b, out := newTestSession(t)

	runScript(t, s, "", "hello", "/reset", "/help", "/bogus", "/quit", "never sent")

	assert.Equal(t, []string{"hello", "reset_conversation"}, b.Queries())
	assert.Equal(t, "new-1", s.ctrl.Session().SessionID)
	text := out.String()
	assert.Contains(t, text, "----")
	assert.Contains(t, text, "/cart <n>")
	assert.Contains(t, text, "Unknown command /bogus.")
}

func TestREPLHistory(t *testing.T) {
	s, _, out := newTestSession(t)

	runScript(t, s, "", "hello", "/history")
	assert.Equal(t, 2, strings.Count(out.String(), "👤 hello"))
}

type interruptReader struct{ n int }

func (r *interruptReader) SetPrompt(string) {}

func (r *interruptReader) Readline() (string, error) {
	r.n++
	if r.n == 1 {
		return "half typed", readline.ErrInterrupt
	}
	return "", readline.ErrInterrupt
}

func TestREPLInterrupt(t *testing.T) {
	s, b, _ := newTestSession(t)

	in := &interruptReader{}
	repl := NewREPL(s.ctrl, s.view, in, nil, logger.NewNopLogger())
	require.NoError(t, repl.Run(context.Background()))
	assert.Equal(t, 2, in.n, "ctrl-c on a typed line only clears it")
	assert.Empty(t, b.Queries())
}

// secretReader records whether the password went through the no-echo path.
type secretReader struct {
	scriptReader
	secrets []string
}

func (s *secretReader) ReadPassword(p string) ([]byte, error) {
	s.prompts = append(s.prompts, p)
	if len(s.secrets) == 0 {
		return nil, io.EOF
	}
	v := s.secrets[0]
	s.secrets = s.secrets[1:]
	return []byte(v), nil
}

func TestReadPasswordUsesLineEditor(t *testing.T) {
	in := &secretReader{scriptReader: scriptReader{lines: []string{"visible"}}, secrets: []string{"hidden"}}

	got, err := readPassword(in, true)("password: ")
	require.NoError(t, err)
	assert.Equal(t, "hidden", got)
	assert.Equal(t, []string{"visible"}, in.lines, "the plain reader is untouched")

	_, err = readPassword(in, true)("password: ")
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadPasswordFallsBackWithoutTerminal(t *testing.T) {
	in := &secretReader{scriptReader: scriptReader{lines: []string{"visible"}}, secrets: []string{"hidden"}}

	got, err := readPassword(in, false)("password: ")
	require.NoError(t, err)
	assert.Equal(t, "visible", got)
	assert.Equal(t, []string{"password: ", prompt}, in.prompts)
	assert.Equal(t, []string{"hidden"}, in.secrets)
}
