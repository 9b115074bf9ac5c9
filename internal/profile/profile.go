// Package profile persists the small per-user key/value state the chat client keeps between
// runs: the chat session id and the mock login identity.
package profile

import (
	"context"
)

// Persisted keys. The names match the ones the chat gateway's browser widget uses.
const (
	KeySessionID    = "chatbotSessionId"
	KeyUserID       = "loggedInUserId"
	KeyUsername     = "loggedInUsername"
	KeySessionToken = "sessionToken"
)

// Store is a string key/value store scoped to one profile.
type Store interface {
	// Get returns the value and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key.
	Set(ctx context.Context, key, value string) error
	// Remove deletes keys. Missing keys are ignored.
	Remove(ctx context.Context, keys ...string) error
	// Close releases backend resources.
	Close() error
}
