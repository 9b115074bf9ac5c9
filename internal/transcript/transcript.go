// Package transcript holds the ordered chat turns shown to the user and renders them for a terminal.
package transcript

import (
	"time"

	"github.com/lewisedginton/shopping_chat_client/internal/chatapi"
	"github.com/lewisedginton/shopping_chat_client/pkg/prefixed_uuid"
)

// Sender identifies who authored an entry.
type Sender string

const (
	SenderUser    Sender = "user"
	SenderChatbot Sender = "chatbot"
)

// Card is a product shown under an entry. Number is unique within the transcript and is
// what the user types to add the product to the cart.
type Card struct {
	Number  int
	Product chatapi.Product
}

// Entry is one rendered turn.
type Entry struct {
	ID        prefixed_uuid.PrefixedUUID
	Sender    Sender
	Text      string
	Cards     []Card
	Timestamp time.Time
}

// Transcript is an ordered list of entries. It is not safe for concurrent use.
type Transcript struct {
	entries  []Entry
	lastCard int
}

func New() *Transcript {
	return &Transcript{}
}

// Append adds an entry and numbers its product cards.
func (t *Transcript) Append(sender Sender, text string, products []chatapi.Product, at time.Time) Entry {
	e := Entry{
		ID:        prefixed_uuid.New("msg"),
		Sender:    sender,
		Text:      text,
		Timestamp: at,
	}
	for _, p := range products {
		t.lastCard++
		e.Cards = append(e.Cards, Card{Number: t.lastCard, Product: p})
	}
	t.entries = append(t.entries, e)
	return e
}

// Clear empties the transcript and restarts card numbering.
func (t *Transcript) Clear() {
	t.entries = nil
	t.lastCard = 0
}

// Entries returns a copy of the entries in order.
func (t *Transcript) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	return len(t.entries)
}

// Card finds a product card by its number.
func (t *Transcript) Card(n int) (chatapi.Product, bool) {
	for _, e := range t.entries {
		for _, c := range e.Cards {
			if c.Number == n {
				return c.Product, true
			}
		}
	}
	return chatapi.Product{}, false
}
