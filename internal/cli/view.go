package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/lewisedginton/shopping_chat_client/internal/transcript"
	"github.com/lewisedginton/shopping_chat_client/internal/widget"
)

const (
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiReset = "\x1b[0m"
)

// TerminalView renders the chat widget as lines of text. The login form has no screen
// area of its own; the REPL prompts for it and reads the prefill from here.
type TerminalView struct {
	mu       sync.Mutex
	out      io.Writer
	renderer *transcript.Renderer
	color    bool

	status   widget.Status
	formOpen bool
	prefill  [2]string
	loginMsg string
	quiet    bool
}

// NewTerminalView writes to out. color enables ANSI styling.
func NewTerminalView(out io.Writer, color bool) *TerminalView {
	return &TerminalView{
		out:      out,
		renderer: transcript.NewRenderer(out, color),
		color:    color,
	}
}

// SetQuiet suppresses status lines; one-shot commands print what they need themselves.
func (v *TerminalView) SetQuiet(quiet bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.quiet = quiet
}

func (v *TerminalView) paint(code, s string) string {
	if !v.color {
		return s
	}
	return code + s + ansiReset
}

// ShowEntry prints one transcript entry with its product cards.
func (v *TerminalView) ShowEntry(e transcript.Entry) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.renderer.Render(e)
}

// ClearTranscript clears the screen.
func (v *TerminalView) ClearTranscript() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.renderer.Clear()
}

// ClearInput is a no-op: readline hands over the line and starts a fresh one.
func (v *TerminalView) ClearInput() {}

// SetLoginStatus prints the status line.
func (v *TerminalView) SetLoginStatus(s widget.Status) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.status = s
	if v.quiet {
		return
	}
	code := ansiRed
	if s.Class == "logout-btn" {
		code = ansiGreen
	}
	_, _ = fmt.Fprintf(v.out, "%s  [/%s]\n", v.paint(code, "● "+s.Label), strings.ToLower(s.Button))
}

// ShowLoginForm records the prefill for the REPL's login prompts.
func (v *TerminalView) ShowLoginForm(username, password string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.formOpen = true
	v.prefill = [2]string{username, password}
}

// HideLoginForm closes the login form.
func (v *TerminalView) HideLoginForm() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.formOpen = false
}

// SetLoginMessage prints a login error. Empty clears it.
func (v *TerminalView) SetLoginMessage(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.loginMsg = msg
	if msg != "" {
		_, _ = fmt.Fprintln(v.out, v.paint(ansiRed, "  "+msg))
	}
}

// Status returns the last status pushed by the controller.
func (v *TerminalView) Status() widget.Status {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

// LoginMessage returns the current login form message.
func (v *TerminalView) LoginMessage() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loginMsg
}

// Prefill returns the login form's username and password prefill.
func (v *TerminalView) Prefill() (string, string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.prefill[0], v.prefill[1]
}

// FormOpen reports whether the login form is open.
func (v *TerminalView) FormOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.formOpen
}

// PrintEntries re-prints entries, used by /history.
func (v *TerminalView) PrintEntries(entries []transcript.Entry) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, e := range entries {
		v.renderer.Render(e)
	}
}

// Println prints a plain informational line.
func (v *TerminalView) Println(a ...any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, _ = fmt.Fprintln(v.out, a...)
}
