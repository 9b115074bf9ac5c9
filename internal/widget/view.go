package widget

import "github.com/lewisedginton/shopping_chat_client/internal/transcript"

// View is the display surface driven by the Controller. The Controller serializes all
// calls, so implementations need no locking of their own.
type View interface {
	// ShowEntry appends a rendered entry and scrolls to it.
	ShowEntry(e transcript.Entry)
	// ClearTranscript removes every rendered entry.
	ClearTranscript()
	// ClearInput empties the message input.
	ClearInput()
	// SetLoginStatus updates the status label and the login/logout button.
	SetLoginStatus(s Status)
	// ShowLoginForm opens the login form with the given prefill.
	ShowLoginForm(username, password string)
	// HideLoginForm closes the login form.
	HideLoginForm()
	// SetLoginMessage shows a message inside the login form. Empty clears it.
	SetLoginMessage(msg string)
}
