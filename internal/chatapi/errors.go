package chatapi

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when the gateway no longer knows a session id.
var ErrSessionNotFound = errors.New("session not found")

// ErrMissingText is returned when a 2xx chat reply carries no text.
var ErrMissingText = errors.New("reply has no text")

// StatusError is a non-2xx reply from the chat gateway.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("chat gateway returned status %d: %s", e.StatusCode, e.Body)
}
