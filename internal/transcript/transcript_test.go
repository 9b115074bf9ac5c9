package transcript

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/lewisedginton/shopping_chat_client/internal/chatapi"
	"github.com/lewisedginton/shopping_chat_client/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2024, 1, 1, 14, 5, 0, 0, time.UTC)

func shoe() chatapi.Product {
	return chatapi.Product{ID: "p1", Name: "Shoe", Description: "...", Price: utils.ToPtr(49.99)}
}

func TestAppendNumbersCardsAcrossEntries(t *testing.T) {
	tr := New()

	tr.Append(SenderUser, "find shoes", nil, at)
	first := tr.Append(SenderChatbot, "Here are some shoes", []chatapi.Product{shoe(), {ID: "p2", Name: "Boot"}}, at)
	second := tr.Append(SenderChatbot, "And a sock", []chatapi.Product{{ID: "9", Name: "Sock"}}, at)

	require.Len(t, first.Cards, 2)
	assert.Equal(t, 1, first.Cards[0].Number)
	assert.Equal(t, 2, first.Cards[1].Number)
	assert.Equal(t, 3, second.Cards[0].Number)
	assert.Equal(t, 3, tr.Len())
	assert.NotEqual(t, first.ID, second.ID)

	p, ok := tr.Card(3)
	require.True(t, ok)
	assert.Equal(t, "Sock", p.Name)

	_, ok = tr.Card(4)
	assert.False(t, ok)
}

func TestClear(t *testing.T) {
	tr := New()
	tr.Append(SenderChatbot, "x", []chatapi.Product{shoe()}, at)
	tr.Clear()

	assert.Equal(t, 0, tr.Len())
	_, ok := tr.Card(1)
	assert.False(t, ok)

	e := tr.Append(SenderChatbot, "y", []chatapi.Product{shoe()}, at)
	assert.Equal(t, 1, e.Cards[0].Number)
}

func TestEntriesIsACopy(t *testing.T) {
	tr := New()
	tr.Append(SenderUser, "hi", nil, at)

	entries := tr.Entries()
	entries[0].Text = "changed"
	assert.Equal(t, "hi", tr.Entries()[0].Text)
}

func TestFormatText(t *testing.T) {
	assert.Equal(t, "a \x1b[1mbold\x1b[0m and \x1b[1mmore\x1b[0m", FormatText("a **bold** and **more**", true))
	assert.Equal(t, "a bold", FormatText("a **bold**", false))
	assert.Equal(t, "<b>raw</b> **", FormatText("<b>raw</b> **", true))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "Price: $49.99", FormatPrice(utils.ToPtr(49.99)))
	assert.Equal(t, "Price: $5.00", FormatPrice(utils.ToPtr(5.0)))
	assert.Equal(t, "Price: $N/A", FormatPrice(nil))
	assert.Equal(t, "Price: $N/A", FormatPrice(utils.ToPtr(0.0)))
}

func TestTruncateDescription(t *testing.T) {
	long := strings.Repeat("a", 100)
	assert.Equal(t, strings.Repeat("a", 70)+"...", TruncateDescription(long))
	assert.Equal(t, "short...", TruncateDescription("short"))
	assert.Equal(t, strings.Repeat("é", 70)+"...", TruncateDescription(strings.Repeat("é", 80)))
}

func TestImageURL(t *testing.T) {
	assert.Equal(t, PlaceholderImage, ImageURL(nil))
	assert.Equal(t, PlaceholderImage, ImageURL(utils.ToPtr("")))
	assert.Equal(t, "https://img/1.png", ImageURL(utils.ToPtr("https://img/1.png")))
}

func TestRenderer(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, false)

	tr := New()
	r.Render(tr.Append(SenderChatbot, "Here are some **shoes**", []chatapi.Product{shoe()}, at))

	out := buf.String()
	assert.Contains(t, out, "14:05 🤖 Here are some shoes")
	assert.Contains(t, out, "[1] Shoe")
	assert.Contains(t, out, "Price: $49.99")
	assert.Contains(t, out, PlaceholderImage)
	assert.Contains(t, out, "/cart 1")
	assert.NotContains(t, out, "\x1b[")

	buf.Reset()
	r.Render(tr.Append(SenderUser, "thanks", nil, at))
	assert.Equal(t, "14:05 👤 thanks\n", buf.String())
}

func TestEntriesSnapshot(t *testing.T) {
	tr := New()
	tr.Append(SenderUser, "find shoes", nil, at)
	tr.Append(SenderChatbot, "Here are some shoes", []chatapi.Product{shoe()}, at)

	want := []Entry{
		{Sender: SenderUser, Text: "find shoes", Timestamp: at},
		{Sender: SenderChatbot, Text: "Here are some shoes", Cards: []Card{{Number: 1, Product: shoe()}}, Timestamp: at},
	}
	opts := []cmp.Option{
		cmpopts.IgnoreFields(Entry{}, "ID"),
		cmpopts.EquateEmpty(),
	}
	if diff := cmp.Diff(want, tr.Entries(), opts...); diff != "" {
		t.Errorf("Entries() mismatch (-want +got):\n%s", diff)
	}
}
