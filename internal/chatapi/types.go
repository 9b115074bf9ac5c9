package chatapi

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID is an identifier the backends send either as a JSON string or a JSON number.
type ID string

// UnmarshalJSON accepts "p1", 12 and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Product is a product suggested by the chat backend.
type Product struct {
	ID          ID       `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	ImageURL    *string  `json:"image_url"`
}

// ChatRequest is the body of POST /chat. Empty identifiers are sent as null.
type ChatRequest struct {
	Query            string
	SessionID        string
	UserID           string
	LoggedInUserID   string
	LoggedInUsername string

	// Extra is merged into the top level of the body. It cannot replace the fields above.
	Extra map[string]any
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// MarshalJSON flattens Extra next to the core fields.
func (r ChatRequest) MarshalJSON() ([]byte, error) {
	body := make(map[string]any, len(r.Extra)+5)
	for k, v := range r.Extra {
		body[k] = v
	}
	body["query"] = r.Query
	body["session_id"] = nullable(r.SessionID)
	body["user_id"] = nullable(r.UserID)
	body["logged_in_user_id"] = nullable(r.LoggedInUserID)
	body["logged_in_username"] = nullable(r.LoggedInUsername)
	return json.Marshal(body)
}

// ChatResponse is the body returned by POST /chat.
type ChatResponse struct {
	Text      string    `json:"text"`
	Products  []Product `json:"products"`
	SessionID ID        `json:"session_id"`
	UserID    ID        `json:"user_id"`
}

// chatReply decodes a ChatResponse while telling an absent or null text from an empty one.
type chatReply struct {
	ChatResponse
	Text *string `json:"text"`
}

// HistoryEntry is one stored turn of a server-side session.
type HistoryEntry struct {
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// SessionInfo is the body returned by GET /session/{id}.
type SessionInfo struct {
	SessionID   ID             `json:"session_id"`
	UserID      ID             `json:"user_id"`
	ChatHistory []HistoryEntry `json:"chat_history"`
	Context     map[string]any `json:"context"`
	StartTime   string         `json:"start_time"`
}
